package transform

import (
	"fmt"
	"math"
	"slices"

	"github.com/matzehuels/flexdock/pkg/layout"
)

// RankedGroup is a panel group with its resolved rank.
type RankedGroup struct {
	ID       layout.NodeID
	Rank     int
	Explicit bool
}

// Ranks resolves the rank of every panel group and returns the groups
// sorted by rank, lowest first.
//
// Explicit ranks (the "panel" config of a tabset) are kept as they are.
// Groups without one get successive ranks after the largest explicit rank,
// in traversal order; with no explicit ranks at all this is plain traversal
// order 1..K. Groups sharing a rank keep their traversal order.
func Ranks(t *layout.Tree) []RankedGroup {
	groups := t.Groups()
	out := make([]RankedGroup, len(groups))
	top := 0
	for i, g := range groups {
		n, _ := t.Node(g)
		out[i].ID = g
		if n.Rank != nil {
			out[i].Rank = *n.Rank
			out[i].Explicit = true
			top = max(top, *n.Rank)
		}
	}
	for i := range out {
		if !out[i].Explicit {
			top++
			out[i].Rank = top
		}
	}
	slices.SortStableFunc(out, func(a, b RankedGroup) int { return a.Rank - b.Rank })
	return out
}

// rankIndex maps ranks to groups. With duplicate ranks the first group in
// rank order wins.
func rankIndex(ranked []RankedGroup) map[int]layout.NodeID {
	idx := make(map[int]layout.NodeID, len(ranked))
	for _, r := range ranked {
		if _, ok := idx[r.Rank]; !ok {
			idx[r.Rank] = r.ID
		}
	}
	return idx
}

// Destination is a decoded panel preference.
type Destination struct {
	// Major is the rank of the destination group; 0 means undetermined.
	Major int
	// Minor is the 1-based position inside the destination; 0 appends.
	Minor int
	// Select is true when the tab becomes the foreground tab.
	Select bool
}

// Determined reports whether the destination names a group.
func (d Destination) Determined() bool { return d.Major > 0 }

// Index returns the insert position for the mutation primitives.
func (d Destination) Index() int { return d.Minor - 1 }

// DecodePreference decodes the preference for a panel budget. The entry at
// budget-1 is a signed decimal: the integer part of its magnitude is the
// destination rank, the first fractional digit (rounded) the position, and
// a positive sign selects the tab. A vector shorter than budget yields an
// undetermined destination.
func DecodePreference(prefs []float64, budget int) Destination {
	if budget < 1 || len(prefs) < budget {
		return Destination{}
	}
	p := prefs[budget-1]
	a := math.Abs(p)
	major := math.Floor(a)
	return Destination{
		Major:  int(major),
		Minor:  int(math.Round((a - major) * 10)),
		Select: p > 0,
	}
}

// RemoveTabset reduces the number of panel groups to maxPanels.
//
// Groups are sorted by rank and the first maxPanels survive. The others are
// processed from the highest rank down: each of their tabs moves to the
// surviving group its preference for maxPanels names, at the decoded
// position and with the decoded selection. A rank naming no surviving group
// sends the tab to the first surviving group in traversal order (the tree
// root's group). An undetermined preference leaves the tab with its nearest
// neighbour in priority, the surviving group with the highest rank, appended
// in the background. The processed group is then gone.
//
// Afterwards the global reorder pass runs for maxPanels. Fewer than two
// groups or a budget below one is a no-op.
func RemoveTabset(t *layout.Tree, maxPanels int) (Result, error) {
	var res Result
	ranked := Ranks(t)
	if len(ranked) < 2 || maxPanels < 1 {
		return res, nil
	}
	if len(ranked) > maxPanels {
		survivors := ranked[:maxPanels]
		byRank := rankIndex(survivors)
		nearest := survivors[len(survivors)-1].ID
		fallback := firstSurvivor(t, survivors)

		for i := len(ranked) - 1; i >= maxPanels; i-- {
			g := ranked[i].ID
			for _, tab := range t.Children(g) {
				n, _ := t.Node(tab)
				d := DecodePreference(n.Preferences, maxPanels)
				var err error
				switch dest, ok := byRank[d.Major]; {
				case !d.Determined():
					err = t.MoveNode(tab, nearest, layout.DockCenter, -1, false)
				case ok:
					err = t.MoveNode(tab, dest, layout.DockCenter, d.Index(), d.Select)
				default:
					err = t.MoveNode(tab, fallback, layout.DockCenter, -1, d.Select)
				}
				if err != nil {
					return res, fmt.Errorf("remove tabset %q: %w", g, err)
				}
				res.add(1)
			}
			if t.Has(g) {
				if err := t.DeleteTabset(g); err != nil {
					return res, fmt.Errorf("remove tabset %q: %w", g, err)
				}
			}
			res.Deleted++
			res.Changed = true
		}
	}
	moves, err := Reorder(t, maxPanels)
	if err != nil {
		return res, err
	}
	res.add(moves)
	return res, nil
}

func firstSurvivor(t *layout.Tree, survivors []RankedGroup) layout.NodeID {
	for _, g := range t.Groups() {
		if slices.ContainsFunc(survivors, func(r RankedGroup) bool { return r.ID == g }) {
			return g
		}
	}
	return survivors[0].ID
}

// MoveTabset reparents the highest-ranked group that is not yet stacked
// directly under a vertical root to the bottom of the root row. It is the
// one-step form of [CollapseY] driven by rank.
func MoveTabset(t *layout.Tree) (Result, error) {
	var res Result
	ranked := Ranks(t)
	if len(ranked) < 2 {
		return res, nil
	}
	for i := len(ranked) - 1; i >= 0; i-- {
		g := ranked[i].ID
		if stacked(t, g) {
			continue
		}
		if err := t.MoveNode(g, t.Root(), layout.DockBottom, -1, false); err != nil {
			return res, fmt.Errorf("move tabset %q: %w", g, err)
		}
		res.add(1)
		return res, nil
	}
	return res, nil
}
