package transform

import (
	"fmt"

	"github.com/matzehuels/flexdock/pkg/layout"
)

// claim is a tab's decoded destination, resolved to an existing group.
type claim struct {
	group layout.NodeID
	minor int
	front bool
}

// slot returns the index claimed inside a group of n tabs, or -1 for none.
// Positions past the end clamp to the last slot.
func (c claim) slot(n int) int {
	if c.minor == 0 || n == 0 {
		return -1
	}
	return min(c.minor-1, n-1)
}

// Reorder is the global reorder pass. Every tab's preference is decoded for
// budget; a tab whose group, position or selection disagrees with its
// decoded destination is moved again. Tabs with an undetermined destination,
// or one naming no existing group, stay where they are.
//
// When several tabs claim the same slot, the last one in traversal order
// takes it and the others follow in traversal order. A tab displaced from
// its slot that way counts as placed, as does a tab asking for the
// foreground of a group whose foreground tab asked for it too, so a second
// pass with the same budget makes no moves.
//
// It returns the number of moves made.
func Reorder(t *layout.Tree, budget int) (int, error) {
	if budget < 1 {
		return 0, nil
	}
	byRank := rankIndex(Ranks(t))
	tabs := t.Tabs()
	claims := make(map[layout.NodeID]claim)
	for _, tab := range tabs {
		n, _ := t.Node(tab)
		d := DecodePreference(n.Preferences, budget)
		if !d.Determined() {
			continue
		}
		if g, ok := byRank[d.Major]; ok {
			claims[tab] = claim{group: g, minor: d.Minor, front: d.Select}
		}
	}
	if settled(t, claims) {
		return 0, nil
	}

	plans := arrange(t, tabs, claims)
	moves := 0
	// Tidying waits for the whole pass: a planned group may lose all its
	// current tabs before its incoming ones arrive.
	err := t.Batch(func() error {
		for _, g := range t.Groups() {
			p, ok := plans[g]
			if !ok {
				continue
			}
			for i, tab := range p.order {
				if parent, _ := t.Parent(tab); parent == g && t.IndexOf(tab) == i {
					continue
				}
				if err := t.MoveNode(tab, g, layout.DockCenter, i, false); err != nil {
					return fmt.Errorf("reorder %q: %w", tab, err)
				}
				moves++
			}
			if p.selected == "" {
				continue
			}
			if cur, _ := t.SelectedTab(g); cur != p.selected {
				if err := t.Select(p.selected); err != nil {
					return fmt.Errorf("reorder select %q: %w", p.selected, err)
				}
				moves++
			}
		}
		return nil
	})
	return moves, err
}

type plan struct {
	order    []layout.NodeID
	selected layout.NodeID
}

// arrange computes the final tab order of every group that ends up with
// tabs.
func arrange(t *layout.Tree, tabs []layout.NodeID, claims map[layout.NodeID]claim) map[layout.NodeID]*plan {
	members := make(map[layout.NodeID][]layout.NodeID)
	for _, tab := range tabs {
		dest, _ := t.Parent(tab)
		if c, ok := claims[tab]; ok {
			dest = c.group
		}
		members[dest] = append(members[dest], tab)
	}

	plans := make(map[layout.NodeID]*plan, len(members))
	for g, ms := range members {
		p := &plan{order: make([]layout.NodeID, len(ms))}
		owned := make(map[layout.NodeID]bool)
		for _, tab := range ms {
			c, ok := claims[tab]
			if !ok || c.group != g {
				continue
			}
			if s := c.slot(len(ms)); s >= 0 {
				if prev := p.order[s]; prev != "" {
					delete(owned, prev)
				}
				p.order[s] = tab
				owned[tab] = true
			}
			if c.front {
				p.selected = tab
			}
		}
		i := 0
		for _, tab := range ms {
			if owned[tab] {
				continue
			}
			for p.order[i] != "" {
				i++
			}
			p.order[i] = tab
		}
		plans[g] = p
	}
	return plans
}

// settled reports whether every claimed tab already sits where the pass
// would put it.
func settled(t *layout.Tree, claims map[layout.NodeID]claim) bool {
	for tab, c := range claims {
		if p, _ := t.Parent(tab); p != c.group {
			return false
		}
		children := t.Children(c.group)
		if s := c.slot(len(children)); s >= 0 && children[s] != tab {
			holder, ok := claims[children[s]]
			if !ok || holder.group != c.group || holder.slot(len(children)) != s {
				return false
			}
		}
		if c.front {
			sel, _ := t.SelectedTab(c.group)
			if sel != tab {
				holder, ok := claims[sel]
				if !ok || !holder.front || holder.group != c.group {
					return false
				}
			}
		}
	}
	return true
}
