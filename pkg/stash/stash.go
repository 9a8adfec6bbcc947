package stash

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/flexdock/pkg/analysis"
	ferrors "github.com/matzehuels/flexdock/pkg/errors"
	"github.com/matzehuels/flexdock/pkg/layout"
	"github.com/matzehuels/flexdock/pkg/migrate"
	"github.com/matzehuels/flexdock/pkg/observability"
	"github.com/matzehuels/flexdock/pkg/transform"
)

// Direction selects how [Stash.Downsize] frees width.
type Direction string

const (
	// DirectionMerge removes panel groups one at a time, re-homing their
	// tabs by preference.
	DirectionMerge Direction = "merge"
	// DirectionStack moves panel groups to the bottom of the root one at a
	// time.
	DirectionStack Direction = "stack"
)

// ParseDirection parses "merge" or "stack" (case-insensitive).
func ParseDirection(s string) (Direction, error) {
	switch d := Direction(strings.ToLower(s)); d {
	case DirectionMerge, DirectionStack:
		return d, nil
	default:
		return "", ferrors.New(ferrors.ErrCodeInvalidDirection, "unknown direction %q (want merge or stack)", s)
	}
}

// Stash is a stack of analysed snapshots. The top is the layout currently
// shown; every snapshot below it is a wider layout that was set aside when
// the viewport shrank and is restored when it grows back.
//
// Snapshots pushed by [Stash.Downsize] are strictly narrower than the
// snapshot below them. Stash is not safe for concurrent use; the session
// serializes access.
type Stash struct {
	snaps  []analysis.Snapshot
	logger *log.Logger
}

// New creates an empty stash. If logger is nil, log.Default() is used.
func New(logger *log.Logger) *Stash {
	if logger == nil {
		logger = log.Default()
	}
	return &Stash{logger: logger}
}

// Depth returns the number of stashed snapshots, current included.
func (s *Stash) Depth() int { return len(s.snaps) }

// Current returns the top snapshot.
func (s *Stash) Current() (analysis.Snapshot, bool) {
	if len(s.snaps) == 0 {
		return analysis.Snapshot{}, false
	}
	return s.snaps[len(s.snaps)-1], true
}

// Previous returns the snapshot below the top, the one [Stash.Upgrade]
// would restore.
func (s *Stash) Previous() (analysis.Snapshot, bool) {
	if len(s.snaps) < 2 {
		return analysis.Snapshot{}, false
	}
	return s.snaps[len(s.snaps)-2], true
}

// Snapshots returns the stash from bottom to top. The slice is a copy; the
// trees are shared.
func (s *Stash) Snapshots() []analysis.Snapshot {
	out := make([]analysis.Snapshot, len(s.snaps))
	copy(out, s.snaps)
	return out
}

// Widths returns the WidthNeeded of every snapshot from bottom to top.
func (s *Stash) Widths() []int {
	out := make([]int, len(s.snaps))
	for i, snap := range s.snaps {
		out[i] = snap.WidthNeeded
	}
	return out
}

// LoadTemplate replaces the whole stash with one snapshot: a private copy of
// tmpl consolidated to maxPanels and analysed with write-back.
func (s *Stash) LoadTemplate(ctx context.Context, tmpl *layout.Tree, maxPanels int) error {
	snap, err := consolidated(tmpl, maxPanels, true)
	observability.Stash().OnTemplateLoad(ctx, maxPanels, snap.GroupCount, err)
	if err != nil {
		return err
	}
	s.snaps = []analysis.Snapshot{snap}
	s.logger.Debug("loaded template",
		"max_panels", maxPanels,
		"groups", snap.GroupCount,
		"width", snap.WidthNeeded,
		"height", snap.HeightNeeded)
	observability.Stash().OnDepth(ctx, len(s.snaps))
	return nil
}

// Refresh re-analyses the current snapshot in place, after the tree was
// edited from outside.
func (s *Stash) Refresh(writeBack bool) (analysis.Snapshot, error) {
	cur, ok := s.Current()
	if !ok {
		return analysis.Snapshot{}, ferrors.New(ferrors.ErrCodeStashPrecondition, "stash is empty")
	}
	snap, err := analysis.Analyse(cur.Tree, writeBack)
	if err != nil {
		return analysis.Snapshot{}, err
	}
	s.snaps[len(s.snaps)-1] = snap
	return snap, nil
}

// Downsize narrows the current layout until it fits viewportWidth.
//
// It works on a private clone of the current snapshot and repeatedly removes
// one panel group (DirectionMerge, a consolidation to one group less) or
// stacks one (DirectionStack), re-analysing after every step. Each step that
// made the layout narrower than the stash top is pushed. It stops once the
// layout fits or a step changes nothing. Not reaching a fitting width is not
// an error; the caller checks [analysis.Snapshot.Fits] on the new top.
//
// It returns the number of snapshots pushed.
func (s *Stash) Downsize(ctx context.Context, viewportWidth int, dir Direction) (int, error) {
	cur, ok := s.Current()
	if !ok {
		return 0, ferrors.New(ferrors.ErrCodeStashPrecondition, "downsize on an empty stash")
	}
	start := time.Now()
	work := cur.Clone()
	prev := work.WidthNeeded
	pushed := 0
	for !work.Fits(viewportWidth) {
		var (
			res transform.Result
			err error
		)
		switch dir {
		case DirectionStack:
			res, err = transform.MoveTabset(work.Tree)
		default:
			budget := work.GroupCount - 1
			if budget < 1 {
				break
			}
			res, err = transform.RemoveTabset(work.Tree, budget)
		}
		if err != nil {
			return pushed, fmt.Errorf("downsize: %w", err)
		}
		// A step that reshapes the layout without narrowing it is not a
		// fixed point: it is not pushed and the loop keeps working on the
		// clone. Only a step that changes nothing ends the loop.
		if !res.Changed {
			break
		}
		snap, err := analysis.Analyse(work.Tree, true)
		if err != nil {
			return pushed, fmt.Errorf("downsize: %w", err)
		}
		s.logger.Debug("downsize step",
			"direction", dir,
			"groups", snap.GroupCount,
			"width", snap.WidthNeeded,
			"previous", prev)
		if top, _ := s.Current(); snap.WidthNeeded < top.WidthNeeded {
			s.snaps = append(s.snaps, snap)
			pushed++
			work = snap.Clone()
		} else {
			work = snap
		}
		prev = snap.WidthNeeded
	}
	top, _ := s.Current()
	observability.Stash().OnDownsize(ctx, string(dir), viewportWidth, pushed, top.Fits(viewportWidth), time.Since(start))
	if pushed > 0 {
		observability.Stash().OnDepth(ctx, len(s.snaps))
	}
	s.logger.Info("downsized layout",
		"viewport", viewportWidth,
		"pushed", pushed,
		"width", top.WidthNeeded,
		"depth", len(s.snaps))
	return pushed, nil
}

// Upgrade restores the wider layout below the top once the viewport admits
// it: the tabs of the current layout are migrated into it by id, it is
// re-analysed and the top is popped. It reports whether it popped.
//
// Upgrade needs a previous snapshot; with fewer than two snapshots, or a
// viewport narrower than the previous snapshot needs, it does nothing.
func (s *Stash) Upgrade(ctx context.Context, viewportWidth int) (bool, error) {
	prev, ok := s.Previous()
	if !ok || viewportWidth < prev.WidthNeeded {
		return false, nil
	}
	cur, _ := s.Current()
	start := time.Now()
	actions, err := migrate.Migrate(cur, prev)
	if err == nil {
		prev, err = analysis.Analyse(prev.Tree, true)
	}
	observability.Stash().OnUpgrade(ctx, viewportWidth, len(actions), time.Since(start), err)
	if err != nil {
		return false, fmt.Errorf("upgrade: %w", err)
	}
	s.snaps = s.snaps[:len(s.snaps)-1]
	s.snaps[len(s.snaps)-1] = prev
	observability.Stash().OnDepth(ctx, len(s.snaps))
	s.logger.Info("restored wider layout",
		"viewport", viewportWidth,
		"migrated", len(actions),
		"width", prev.WidthNeeded,
		"depth", len(s.snaps))
	return true, nil
}

// FitTemplate returns the largest panel budget at which tmpl, consolidated
// to that budget, fits viewportWidth; 1 when none does. tmpl is not
// modified.
func FitTemplate(tmpl *layout.Tree, viewportWidth int) (int, error) {
	for budget := len(tmpl.Groups()); budget > 1; budget-- {
		snap, err := consolidated(tmpl, budget, false)
		if err != nil {
			return 0, err
		}
		if snap.Fits(viewportWidth) {
			return budget, nil
		}
	}
	return 1, nil
}

func consolidated(tmpl *layout.Tree, maxPanels int, writeBack bool) (analysis.Snapshot, error) {
	if err := ferrors.ValidateBudget(maxPanels); err != nil {
		return analysis.Snapshot{}, err
	}
	tree := tmpl.Clone()
	if _, err := transform.RemoveTabset(tree, maxPanels); err != nil {
		return analysis.Snapshot{}, ferrors.Wrap(ferrors.ErrCodeInvalidTemplate, err, "consolidate template to %d panels", maxPanels)
	}
	return analysis.Analyse(tree, writeBack)
}
