package analysis

import (
	"github.com/matzehuels/flexdock/pkg/layout"

	ferrors "github.com/matzehuels/flexdock/pkg/errors"
)

// Snapshot is a tree together with the aggregates computed over it.
//
// A Snapshot owns its tree. Stashed snapshots must not share a tree with
// anything that mutates it; use [Snapshot.Clone] to get a private copy.
type Snapshot struct {
	Tree *layout.Tree

	// WidthNeeded and HeightNeeded are the minimum outer size of the root row.
	WidthNeeded  int
	HeightNeeded int

	// ActiveGroup is the first active panel group in traversal order, empty
	// if no group is active.
	ActiveGroup layout.NodeID
	// LowestPriorityGroup is the first panel group in traversal order.
	LowestPriorityGroup layout.NodeID

	GroupCount int
	TabCount   int
}

// Target returns the group that collapse strategies keep: the active group,
// or the lowest-priority group when none is active.
func (s Snapshot) Target() layout.NodeID {
	if s.ActiveGroup != "" {
		return s.ActiveGroup
	}
	return s.LowestPriorityGroup
}

// Fits reports whether the snapshot fits a viewport of the given width.
func (s Snapshot) Fits(viewportWidth int) bool {
	return s.WidthNeeded <= viewportWidth
}

// Clone returns a snapshot holding a deep copy of the tree. The aggregates
// are kept as they are.
func (s Snapshot) Clone() Snapshot {
	c := s
	if s.Tree != nil {
		c.Tree = s.Tree.Clone()
	}
	return c
}

// Analyse computes the minimum size of t in one traversal.
//
// A panel group needs the largest minimum of its tabs in each dimension; a
// group whose tabs declare nothing keeps its stored minimums. Horizontal rows
// add up their children's widths and take the largest height; vertical rows
// do the opposite.
//
// With writeBack set, a group whose computed minimum is positive and differs
// from the stored one is updated through [layout.Tree.UpdateNodeAttributes].
// Unchanged values are never written, so analysis triggered by a mutation
// notification does not feed itself.
//
// A panel group holding anything but tabs is a corrupted tree: Analyse
// returns an error with code CORRUPT_TREE and the caller must not retry.
func Analyse(t *layout.Tree, writeBack bool) (Snapshot, error) {
	a := analyser{tree: t, writeBack: writeBack, strict: true}
	w, h, err := a.measure(t.Root())
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{
		Tree:                t,
		WidthNeeded:         w,
		HeightNeeded:        h,
		ActiveGroup:         a.active,
		LowestPriorityGroup: a.first,
		GroupCount:          a.groups,
		TabCount:            a.tabs,
	}, nil
}

// Measure returns the aggregated minimum size of the subtree rooted at id
// without writing anything back. Children of a group that are not tabs are
// skipped.
func Measure(t *layout.Tree, id layout.NodeID) (w, h int) {
	a := analyser{tree: t}
	w, h, _ = a.measure(id)
	return w, h
}

type analyser struct {
	tree      *layout.Tree
	writeBack bool
	strict    bool

	active layout.NodeID
	first  layout.NodeID
	groups int
	tabs   int
}

func (a *analyser) measure(id layout.NodeID) (int, int, error) {
	n, ok := a.tree.Node(id)
	if !ok {
		return 0, 0, ferrors.New(ferrors.ErrCodeUnknownNode, "node %q not in tree", id)
	}
	switch n.Kind {
	case layout.KindTab:
		a.tabs++
		return n.MinWidth, n.MinHeight, nil
	case layout.KindPanelGroup:
		return a.group(n)
	default:
		return a.row(n)
	}
}

func (a *analyser) group(n layout.Node) (int, int, error) {
	a.groups++
	if a.first == "" {
		a.first = n.ID
	}
	if a.active == "" && n.Active {
		a.active = n.ID
	}
	w, h := 0, 0
	for _, c := range n.Children {
		tab, ok := a.tree.Node(c)
		if !ok || !tab.IsTab() {
			if a.strict {
				return 0, 0, ferrors.New(ferrors.ErrCodeCorruptTree,
					"panel group %q holds %s %q", n.ID, tab.Kind, c)
			}
			continue
		}
		a.tabs++
		w = max(w, tab.MinWidth)
		h = max(h, tab.MinHeight)
	}
	if a.writeBack {
		var attrs layout.Attrs
		if w > 0 && w != n.MinWidth {
			attrs.MinWidth = layout.IntAttr(w)
		}
		if h > 0 && h != n.MinHeight {
			attrs.MinHeight = layout.IntAttr(h)
		}
		if attrs.MinWidth != nil || attrs.MinHeight != nil {
			if err := a.tree.UpdateNodeAttributes(n.ID, attrs); err != nil {
				return 0, 0, ferrors.Wrap(ferrors.ErrCodeInternal, err, "write back %q", n.ID)
			}
		}
	}
	if w == 0 {
		w = n.MinWidth
	}
	if h == 0 {
		h = n.MinHeight
	}
	return w, h, nil
}

func (a *analyser) row(n layout.Node) (int, int, error) {
	w, h := 0, 0
	for _, c := range n.Children {
		cw, ch, err := a.measure(c)
		if err != nil {
			return 0, 0, err
		}
		if n.Orientation == layout.Horizontal {
			w += cw
			h = max(h, ch)
		} else {
			w = max(w, cw)
			h += ch
		}
	}
	return w, h, nil
}
