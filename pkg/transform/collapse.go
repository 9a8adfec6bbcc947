package transform

import (
	"fmt"

	"github.com/matzehuels/flexdock/pkg/analysis"
	"github.com/matzehuels/flexdock/pkg/layout"
)

// Axis names a collapse strategy.
type Axis string

const (
	// AxisZ merges every tab into one panel group.
	AxisZ Axis = "z"
	// AxisY stacks every panel group vertically at full width.
	AxisY Axis = "y"
)

// ParseAxis parses "z" or "y".
func ParseAxis(s string) (Axis, error) {
	switch Axis(s) {
	case AxisZ, AxisY:
		return Axis(s), nil
	default:
		return "", fmt.Errorf("unknown axis %q (want z or y)", s)
	}
}

// Collapse runs the strategy named by axis.
func Collapse(t *layout.Tree, axis Axis) (analysis.Snapshot, bool, error) {
	if axis == AxisY {
		return CollapseY(t)
	}
	return CollapseZ(t)
}

// CollapseZ moves every tab that is not already in the target group (the
// active group, or the lowest-priority group when none is active) into it,
// appended and without changing the foreground tab. Emptied groups disappear.
//
// It returns the re-analysed tree and false when there was nothing to move.
func CollapseZ(t *layout.Tree) (analysis.Snapshot, bool, error) {
	snap, err := analysis.Analyse(t, false)
	if err != nil {
		return analysis.Snapshot{}, false, err
	}
	target := snap.Target()
	if target == "" {
		return snap, false, nil
	}
	moved := false
	for _, tab := range t.Tabs() {
		if p, _ := t.Parent(tab); p == target {
			continue
		}
		if err := t.MoveNode(tab, target, layout.DockCenter, -1, false); err != nil {
			return analysis.Snapshot{}, false, fmt.Errorf("collapse z: %w", err)
		}
		moved = true
	}
	if !moved {
		return snap, false, nil
	}
	snap, err = analysis.Analyse(t, true)
	return snap, true, err
}

// CollapseY reparents every panel group except the active one to the bottom
// of the root row, producing a vertical stack of full-width groups. With no
// active group the lowest-priority group (the first in traversal order)
// stays in place instead. Groups already stacked directly under a vertical root stay where they are.
//
// It returns the re-analysed tree and false when every group was already
// stacked.
func CollapseY(t *layout.Tree) (analysis.Snapshot, bool, error) {
	snap, err := analysis.Analyse(t, false)
	if err != nil {
		return analysis.Snapshot{}, false, err
	}
	keep := snap.Target()
	moved := false
	for _, g := range t.Groups() {
		if g == keep || stacked(t, g) {
			continue
		}
		if err := t.MoveNode(g, t.Root(), layout.DockBottom, -1, false); err != nil {
			return analysis.Snapshot{}, false, fmt.Errorf("collapse y: %w", err)
		}
		moved = true
	}
	if !moved {
		return snap, false, nil
	}
	snap, err = analysis.Analyse(t, true)
	return snap, true, err
}

// stacked reports whether group is a direct child of a vertical root.
func stacked(t *layout.Tree, group layout.NodeID) bool {
	p, ok := t.Parent(group)
	return ok && p == t.Root() && t.Orientation(p) == layout.Vertical
}
