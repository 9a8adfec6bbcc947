package session

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/flexdock/pkg/analysis"
	"github.com/matzehuels/flexdock/pkg/content"
	ferrors "github.com/matzehuels/flexdock/pkg/errors"
	"github.com/matzehuels/flexdock/pkg/layout"
	"github.com/matzehuels/flexdock/pkg/observability"
	"github.com/matzehuels/flexdock/pkg/stash"
)

// Recompute triggers reported to [observability.SessionHooks].
const (
	TriggerEdit     = "edit"
	TriggerModel    = "model"
	TriggerTemplate = "template"
	TriggerResize   = "resize"
)

// Overflow tells the shell which dimensions still do not fit after the best
// effort reaction. An overflowing dimension falls back to absolute sizing at
// the layout's needed size, with scrolling.
type Overflow struct {
	Width  bool `json:"width"`
	Height bool `json:"height"`
}

// State is a consistent copy of the session's view of the world.
type State struct {
	Current   analysis.Snapshot
	Depth     int
	Widths    []int
	MaxPanels int
	Direction stash.Direction
	Width     int
	Height    int
	Overflow  Overflow
}

// Session reacts to viewport changes and layout edits by driving a
// [stash.Stash]. All methods are safe for concurrent use; reactions run
// serially under one lock.
type Session struct {
	mu     sync.Mutex
	cfg    Config
	stash  *stash.Stash
	logger *log.Logger

	started   bool
	closed    bool
	width     int
	height    int
	maxPanels int
	overflow  Overflow

	gen     uint64
	pending bool

	// self is set while the session mutates the watched tree itself, so the
	// mutation listener does not schedule an edit recompute for it.
	self    atomic.Bool
	unwatch func()

	subs    map[int]func(analysis.Snapshot)
	nextSub int
}

// New creates a session. It does nothing until [Session.Start].
func New(cfg Config) (*Session, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Session{
		cfg:    cfg,
		stash:  stash.New(cfg.Logger),
		logger: cfg.Logger,
		subs:   make(map[int]func(analysis.Snapshot)),
	}, nil
}

// Start loads the template at the largest panel budget that fits width.
func (s *Session) Start(ctx context.Context, width, height int) error {
	if err := ferrors.ValidateViewport(width, height); err != nil {
		return err
	}
	s.mu.Lock()
	budget, err := stash.FitTemplate(s.cfg.Template, width)
	if err == nil {
		err = s.load(ctx, s.cfg.Template, budget)
	}
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.started = true
	s.width, s.height = width, height
	s.updateOverflow(ctx)
	snap, subs := s.publish()
	s.mu.Unlock()

	s.logger.Info("session started", "width", width, "height", height, "max_panels", budget)
	notify(subs, snap)
	return nil
}

// Resize reacts to a new viewport size. A width below what the current
// layout needs downsizes; a width that admits the layout below the top of
// the stash upgrades, level by level while the next level fits too. Height
// only drives the overflow flag.
func (s *Session) Resize(ctx context.Context, width, height int) (Overflow, error) {
	if err := ferrors.ValidateViewport(width, height); err != nil {
		return Overflow{}, err
	}
	observability.Session().OnResize(ctx, width, height)

	s.mu.Lock()
	if err := s.ready(); err != nil {
		s.mu.Unlock()
		return Overflow{}, err
	}
	start := time.Now()
	s.width, s.height = width, height
	before := s.stash.Depth()
	err := s.react(ctx)
	observability.Session().OnRecompute(ctx, TriggerResize, time.Since(start), err)
	if err != nil {
		s.mu.Unlock()
		return Overflow{}, err
	}
	changed := s.stash.Depth() != before
	if changed {
		s.watch()
	}
	ov := s.updateOverflow(ctx)
	var (
		snap analysis.Snapshot
		subs []func(analysis.Snapshot)
	)
	if changed {
		snap, subs = s.publish()
	}
	s.mu.Unlock()

	notify(subs, snap)
	return ov, nil
}

func (s *Session) react(ctx context.Context) error {
	cur, _ := s.stash.Current()
	if !cur.Fits(s.width) {
		_, err := s.stash.Downsize(ctx, s.width, s.cfg.Direction)
		return err
	}
	for {
		ok, err := s.stash.Upgrade(ctx, s.width)
		if err != nil || !ok {
			return err
		}
	}
}

// NotifyEdit schedules a recompute with write-back after the debounce
// delay. A recompute still pending from an earlier edit is superseded: it
// still fires but does nothing.
func (s *Session) NotifyEdit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scheduleEdit()
}

func (s *Session) scheduleEdit() {
	if s.closed || !s.started {
		return
	}
	if s.pending {
		observability.Session().OnEditSuperseded(context.Background())
	}
	s.gen++
	s.pending = true
	gen := s.gen
	s.cfg.Scheduler.AfterFunc(s.cfg.Debounce, func() { s.runEdit(gen) })
}

func (s *Session) runEdit(gen uint64) {
	s.mu.Lock()
	if s.closed || gen != s.gen {
		s.mu.Unlock()
		return
	}
	s.pending = false
	snap, subs, err := s.recompute(context.Background(), TriggerEdit, true)
	s.mu.Unlock()

	if err != nil {
		s.logger.Error("edit recompute failed", "err", err, "fatal", ferrors.IsFatal(err))
		return
	}
	notify(subs, snap)
}

// NotifyModelChange re-analyses the current layout at once, without
// writing cached minimums back.
func (s *Session) NotifyModelChange(ctx context.Context) (analysis.Snapshot, error) {
	s.mu.Lock()
	if err := s.ready(); err != nil {
		s.mu.Unlock()
		return analysis.Snapshot{}, err
	}
	snap, subs, err := s.recompute(ctx, TriggerModel, false)
	s.mu.Unlock()
	if err != nil {
		return analysis.Snapshot{}, err
	}
	notify(subs, snap)
	return snap, nil
}

func (s *Session) recompute(ctx context.Context, trigger string, writeBack bool) (analysis.Snapshot, []func(analysis.Snapshot), error) {
	start := time.Now()
	s.self.Store(true)
	_, err := s.stash.Refresh(writeBack)
	s.self.Store(false)
	observability.Session().OnRecompute(ctx, trigger, time.Since(start), err)
	if err != nil {
		return analysis.Snapshot{}, nil, err
	}
	s.updateOverflow(ctx)
	snap, subs := s.publish()
	s.logger.Debug("recomputed layout",
		"trigger", trigger,
		"width", snap.WidthNeeded,
		"height", snap.HeightNeeded)
	return snap, subs, nil
}

// Edit runs fn against the current layout under the session lock and
// schedules a debounced recompute when it succeeds.
func (s *Session) Edit(fn func(*layout.Tree) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ready(); err != nil {
		return err
	}
	cur, _ := s.stash.Current()
	s.self.Store(true)
	err := fn(cur.Tree)
	s.self.Store(false)
	if err != nil {
		return err
	}
	s.scheduleEdit()
	return nil
}

// ReloadTemplate replaces the stash with tmpl consolidated to maxPanels.
// A nil tmpl reloads the configured template; maxPanels 0 picks the
// largest budget that fits the viewport.
func (s *Session) ReloadTemplate(ctx context.Context, tmpl *layout.Tree, maxPanels int) error {
	s.mu.Lock()
	if err := s.ready(); err != nil {
		s.mu.Unlock()
		return err
	}
	if tmpl == nil {
		tmpl = s.cfg.Template
	}
	start := time.Now()
	var err error
	if maxPanels == 0 {
		maxPanels, err = stash.FitTemplate(tmpl, s.width)
	}
	if err == nil {
		err = s.load(ctx, tmpl, maxPanels)
	}
	observability.Session().OnRecompute(ctx, TriggerTemplate, time.Since(start), err)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.cfg.Template = tmpl
	s.gen++
	s.pending = false
	s.updateOverflow(ctx)
	snap, subs := s.publish()
	s.mu.Unlock()

	s.logger.Info("reloaded template", "max_panels", maxPanels, "width", snap.WidthNeeded)
	notify(subs, snap)
	return nil
}

// SetDirection changes how later downsizes narrow the layout.
func (s *Session) SetDirection(d stash.Direction) error {
	if _, err := stash.ParseDirection(string(d)); err != nil {
		return err
	}
	s.mu.Lock()
	s.cfg.Direction = d
	s.mu.Unlock()
	return nil
}

// Subscribe registers fn to receive the current snapshot after every
// reaction that changed it. Observers run on the goroutine of the reaction,
// outside the session lock.
func (s *Session) Subscribe(fn func(analysis.Snapshot)) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// Resolve maps a tab of the current layout to its content.
func (s *Session) Resolve(tab layout.NodeID) (content.Content, error) {
	s.mu.Lock()
	if err := s.ready(); err != nil {
		s.mu.Unlock()
		return content.Content{}, err
	}
	cur, _ := s.stash.Current()
	n, ok := cur.Tree.Node(tab)
	s.mu.Unlock()
	if !ok {
		return content.Content{}, ferrors.New(ferrors.ErrCodeUnknownNode, "tab %q not in layout", tab)
	}
	return s.cfg.Resolver.Resolve(n)
}

// State returns a copy of the session state. The current snapshot's tree is
// a clone.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, _ := s.stash.Current()
	return State{
		Current:   cur.Clone(),
		Depth:     s.stash.Depth(),
		Widths:    s.stash.Widths(),
		MaxPanels: s.maxPanels,
		Direction: s.cfg.Direction,
		Width:     s.width,
		Height:    s.height,
		Overflow:  s.overflow,
	}
}

// Close stops watching the layout. Pending recomputes become no-ops.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.gen++
	if s.unwatch != nil {
		s.unwatch()
		s.unwatch = nil
	}
}

func (s *Session) ready() error {
	if s.closed {
		return ferrors.New(ferrors.ErrCodeStashPrecondition, "session is closed")
	}
	if !s.started {
		return ferrors.New(ferrors.ErrCodeStashPrecondition, "session not started")
	}
	return nil
}

func (s *Session) load(ctx context.Context, tmpl *layout.Tree, maxPanels int) error {
	if err := s.stash.LoadTemplate(ctx, tmpl, maxPanels); err != nil {
		return err
	}
	s.maxPanels = maxPanels
	s.watch()
	return nil
}

// watch moves the mutation listener to the tree at the top of the stash.
func (s *Session) watch() {
	if s.unwatch != nil {
		s.unwatch()
	}
	cur, ok := s.stash.Current()
	if !ok {
		s.unwatch = nil
		return
	}
	s.unwatch = cur.Tree.OnMutation(func(layout.Mutation) {
		if s.self.Load() {
			return
		}
		s.NotifyEdit()
	})
}

func (s *Session) updateOverflow(ctx context.Context) Overflow {
	cur, _ := s.stash.Current()
	ov := Overflow{
		Width:  !cur.Fits(s.width),
		Height: s.height > 0 && s.height < cur.HeightNeeded,
	}
	if ov != s.overflow {
		s.logger.Debug("overflow changed", "width", ov.Width, "height", ov.Height)
	}
	s.overflow = ov
	observability.Session().OnOverflow(ctx, ov.Width, ov.Height)
	return ov
}

func (s *Session) publish() (analysis.Snapshot, []func(analysis.Snapshot)) {
	cur, _ := s.stash.Current()
	subs := make([]func(analysis.Snapshot), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	return cur, subs
}

func notify(subs []func(analysis.Snapshot), snap analysis.Snapshot) {
	for _, fn := range subs {
		fn(snap)
	}
}
