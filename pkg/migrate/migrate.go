package migrate

import (
	"fmt"

	"github.com/matzehuels/flexdock/pkg/analysis"
	"github.com/matzehuels/flexdock/pkg/layout"
)

// Op is the kind of a migration action.
type Op string

const (
	OpDelete Op = "delete"
	OpAdd    Op = "add"
)

// Action is one step of a migration. Deletes name the tab to remove; adds
// carry the full record of the tab (id included) and the node it is docked
// into.
type Action struct {
	Op     Op             `json:"op"`
	Tab    layout.NodeID  `json:"tab"`
	Parent layout.NodeID  `json:"parent,omitempty"`
	Record *layout.Record `json:"record,omitempty"`
}

// String returns a one-line description of the action.
func (a Action) String() string {
	if a.Op == OpDelete {
		return fmt.Sprintf("delete %s", a.Tab)
	}
	return fmt.Sprintf("add %s -> %s", a.Tab, a.Parent)
}

// Plan computes the actions that make the tab set of target equal to the
// tab set of source, matching tabs by id. Both trees are only read.
//
// Tabs of target missing from source are deleted. Tabs of source missing
// from target are added, appended in the background, to the group with the
// same id as their source parent when target has one; otherwise to the last
// panel group of target in traversal order; otherwise to target's root.
// Deletes come first.
func Plan(source, target *layout.Tree) []Action {
	var actions []Action
	var fallback layout.NodeID
	target.Visit(func(n layout.Node) {
		switch {
		case n.IsGroup():
			fallback = n.ID
		case n.IsTab() && !source.Has(n.ID):
			actions = append(actions, Action{Op: OpDelete, Tab: n.ID})
		}
	})

	source.Visit(func(n layout.Node) {
		if !n.IsTab() || target.Has(n.ID) {
			return
		}
		parent := target.Root()
		if k, ok := target.Kind(n.Parent); ok && k == layout.KindPanelGroup {
			parent = n.Parent
		} else if fallback != "" {
			parent = fallback
		}
		rec, _ := source.Record(n.ID)
		actions = append(actions, Action{Op: OpAdd, Tab: n.ID, Parent: parent, Record: &rec})
	})
	return actions
}

// Apply runs actions against target in order. An add whose parent vanished
// during the deletes is docked at the root instead.
func Apply(target *layout.Tree, actions []Action) error {
	for _, a := range actions {
		switch a.Op {
		case OpDelete:
			if !target.Has(a.Tab) {
				continue
			}
			if err := target.DeleteTab(a.Tab); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
		case OpAdd:
			if a.Record == nil {
				return fmt.Errorf("migrate: add %s without record", a.Tab)
			}
			parent := a.Parent
			if !target.Has(parent) {
				parent = target.Root()
			}
			if _, err := target.AddNode(*a.Record, parent, layout.DockCenter, -1, false); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
		default:
			return fmt.Errorf("migrate: unknown action %q", a.Op)
		}
	}
	return nil
}

// Migrate reconciles target with source: [Plan] followed by [Apply] on
// target's tree. Migrating a snapshot onto itself, or onto a snapshot with
// the same tab ids, returns no actions and changes nothing.
//
// The snapshot aggregates of target are stale afterwards; callers
// re-analyse.
func Migrate(source, target analysis.Snapshot) ([]Action, error) {
	if source.Tree == nil || target.Tree == nil {
		return nil, fmt.Errorf("migrate: snapshot without tree")
	}
	actions := Plan(source.Tree, target.Tree)
	if len(actions) == 0 {
		return nil, nil
	}
	if err := Apply(target.Tree, actions); err != nil {
		return actions, err
	}
	return actions, nil
}
