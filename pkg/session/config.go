package session

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/flexdock/pkg/content"
	ferrors "github.com/matzehuels/flexdock/pkg/errors"
	"github.com/matzehuels/flexdock/pkg/layout"
	"github.com/matzehuels/flexdock/pkg/stash"
)

// DefaultDebounce is the delay between a structural edit and the recompute
// it triggers.
const DefaultDebounce = 100 * time.Millisecond

// Scheduler runs f once after d on its own goroutine.
type Scheduler interface {
	AfterFunc(d time.Duration, f func())
}

type timerScheduler struct{}

func (timerScheduler) AfterFunc(d time.Duration, f func()) { time.AfterFunc(d, f) }

// Config configures a [Session].
type Config struct {
	// Template is the canonical layout. Required; the session never modifies
	// it.
	Template *layout.Tree
	// Direction is how the layout is narrowed (default merge).
	Direction stash.Direction
	// Debounce delays edit recomputes (default [DefaultDebounce]).
	Debounce time.Duration
	Logger   *log.Logger
	// Scheduler runs debounced recomputes (default time.AfterFunc).
	Scheduler Scheduler
	// Resolver maps tab components to content (default [content.Default]).
	Resolver *content.Registry
}

// SetDefaults fills unset fields.
func (c *Config) SetDefaults() {
	if c.Direction == "" {
		c.Direction = stash.DirectionMerge
	}
	if c.Debounce <= 0 {
		c.Debounce = DefaultDebounce
	}
	if c.Logger == nil {
		c.Logger = log.Default()
	}
	if c.Scheduler == nil {
		c.Scheduler = timerScheduler{}
	}
	if c.Resolver == nil {
		c.Resolver = content.Default()
	}
}

// Validate checks required fields.
func (c *Config) Validate() error {
	if c.Template == nil {
		return ferrors.New(ferrors.ErrCodeInvalidTemplate, "session needs a template")
	}
	if len(c.Template.Groups()) == 0 {
		return ferrors.New(ferrors.ErrCodeInvalidTemplate, "template has no panel groups")
	}
	if _, err := stash.ParseDirection(string(c.Direction)); err != nil {
		return err
	}
	return nil
}
