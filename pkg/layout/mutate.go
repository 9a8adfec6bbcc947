package layout

import (
	"fmt"
	"slices"
)

// MoveNode moves a tab or panel group to target.
//
// Tabs dock at the center of a panel group, at position index (-1 or past
// the end appends). Docking a tab at the center of a row places it in the
// row's first non-empty panel group, creating a group at the end of the row
// when there is none. Docking a tab at the bottom of a row wraps it in a new
// panel group first. When sel is true the tab becomes the foreground tab of
// its destination; otherwise the destination keeps its current foreground tab.
//
// Panel groups dock at the center of a row (inserted at index) or at its
// bottom. Docking a panel group at the center of another panel group merges
// its tabs into the target.
//
// A panel group emptied by the move is deleted immediately and rows are
// tidied afterwards, so the tree never holds empty groups or empty rows.
func (t *Tree) MoveNode(id, target NodeID, loc DockLocation, index int, sel bool) error {
	n, ok := t.nodes[id]
	if !ok {
		return fmt.Errorf("move %q: %w", id, ErrUnknownNode)
	}
	tg, err := t.resolveTarget(target)
	if err != nil {
		return fmt.Errorf("move %q: %w", id, err)
	}
	if t.contains(id, tg.id) {
		return fmt.Errorf("move %q into its own subtree: %w", id, ErrInvalidTarget)
	}
	switch n.kind {
	case KindTab:
		err = t.placeTab(n, tg, loc, index, sel)
	case KindPanelGroup:
		err = t.placeGroup(n, tg, loc, index)
	default:
		err = fmt.Errorf("cannot move %s: %w", n.kind, ErrInvalidKind)
	}
	if err != nil {
		return fmt.Errorf("move %q to %q: %w", id, target, err)
	}
	t.normalize()
	t.emit(Mutation{Op: OpMove, Node: id, Target: target})
	return nil
}

// AddNode inserts the tab or panel group described by rec at target, using
// the same docking rules as [Tree.MoveNode]. Record ids are preserved;
// records without an id get a generated one. It returns the id of the new
// node.
func (t *Tree) AddNode(rec Record, target NodeID, loc DockLocation, index int, sel bool) (NodeID, error) {
	tg, err := t.resolveTarget(target)
	if err != nil {
		return "", fmt.Errorf("add %s: %w", rec.Type, err)
	}
	b := builder{tree: t}
	id, err := b.build(rec, "", Horizontal)
	if err != nil {
		b.rollback()
		return "", fmt.Errorf("add %s: %w", rec.Type, err)
	}
	n := t.nodes[id]
	switch n.kind {
	case KindTab:
		err = t.placeTab(n, tg, loc, index, sel)
	case KindPanelGroup:
		err = t.placeGroup(n, tg, loc, index)
	default:
		err = fmt.Errorf("cannot add %s: %w", n.kind, ErrInvalidKind)
	}
	if err != nil {
		b.rollback()
		return "", fmt.Errorf("add %s to %q: %w", rec.Type, target, err)
	}
	t.normalize()
	t.emit(Mutation{Op: OpAdd, Node: id, Target: target})
	return id, nil
}

// DeleteTab removes a tab. Its panel group is deleted if it becomes empty.
func (t *Tree) DeleteTab(id NodeID) error {
	n, ok := t.nodes[id]
	if !ok {
		return fmt.Errorf("delete tab %q: %w", id, ErrUnknownNode)
	}
	if n.kind != KindTab {
		return fmt.Errorf("delete tab %q is a %s: %w", id, n.kind, ErrInvalidKind)
	}
	t.remove(n)
	t.normalize()
	t.emit(Mutation{Op: OpDeleteTab, Node: id})
	return nil
}

// DeleteTabset removes a panel group together with all its tabs.
func (t *Tree) DeleteTabset(id NodeID) error {
	n, ok := t.nodes[id]
	if !ok {
		return fmt.Errorf("delete tabset %q: %w", id, ErrUnknownNode)
	}
	if n.kind != KindPanelGroup {
		return fmt.Errorf("delete tabset %q is a %s: %w", id, n.kind, ErrInvalidKind)
	}
	t.remove(n)
	t.normalize()
	t.emit(Mutation{Op: OpDeleteTabset, Node: id})
	return nil
}

// UpdateNodeAttributes applies the non-nil fields of a to node id.
func (t *Tree) UpdateNodeAttributes(id NodeID, a Attrs) error {
	n, ok := t.nodes[id]
	if !ok {
		return fmt.Errorf("update %q: %w", id, ErrUnknownNode)
	}
	if a.Name != nil {
		n.name = *a.Name
	}
	if a.Weight != nil {
		n.weight = *a.Weight
	}
	if a.MinWidth != nil {
		n.minWidth = *a.MinWidth
	}
	if a.MinHeight != nil {
		n.minHeight = *a.MinHeight
	}
	if a.Rank != nil {
		r := *a.Rank
		n.rank = &r
	}
	if a.Preferences != nil {
		n.prefs = slices.Clone(a.Preferences)
	}
	if a.Config != nil {
		if n.config == nil {
			n.config = make(map[string]any, len(a.Config))
		}
		for k, v := range a.Config {
			n.config[k] = v
		}
	}
	t.emit(Mutation{Op: OpUpdate, Node: id})
	return nil
}

// SetActive makes group the only active panel group. An empty id clears the
// active flag everywhere.
func (t *Tree) SetActive(group NodeID) error {
	if group != "" {
		n, ok := t.nodes[group]
		if !ok {
			return fmt.Errorf("activate %q: %w", group, ErrUnknownNode)
		}
		if n.kind != KindPanelGroup {
			return fmt.Errorf("activate %q is a %s: %w", group, n.kind, ErrInvalidKind)
		}
	}
	for _, n := range t.nodes {
		n.active = n.id == group
	}
	t.emit(Mutation{Op: OpActivate, Node: group})
	return nil
}

// Select brings tab to the foreground of its panel group.
func (t *Tree) Select(tab NodeID) error {
	n, ok := t.nodes[tab]
	if !ok {
		return fmt.Errorf("select %q: %w", tab, ErrUnknownNode)
	}
	if n.kind != KindTab {
		return fmt.Errorf("select %q is a %s: %w", tab, n.kind, ErrInvalidKind)
	}
	g := t.nodes[n.parent]
	g.selected = slices.Index(g.children, tab)
	t.emit(Mutation{Op: OpSelect, Node: tab, Target: g.id})
	return nil
}

// resolveTarget maps a target id to the node things are docked against.
// Tabs stand for their panel group.
func (t *Tree) resolveTarget(id NodeID) (*node, error) {
	n, ok := t.nodes[id]
	if !ok {
		return nil, fmt.Errorf("target %q: %w", id, ErrUnknownNode)
	}
	if n.kind == KindTab {
		return t.nodes[n.parent], nil
	}
	return n, nil
}

// contains reports whether target lies in the subtree rooted at id.
func (t *Tree) contains(id, target NodeID) bool {
	for n, ok := t.nodes[target]; ok; n, ok = t.nodes[n.parent] {
		if n.id == id {
			return true
		}
	}
	return false
}

func (t *Tree) placeTab(tab, tg *node, loc DockLocation, index int, sel bool) error {
	switch {
	case tg.kind == KindPanelGroup && loc == DockCenter:
		t.detach(tab)
		t.insertTab(tg, tab, index, sel)
	case tg.kind == KindRow && loc == DockCenter:
		t.detach(tab)
		g, ok := t.firstGroup(tg.id)
		if !ok {
			g = t.newGroup()
			t.insertChild(tg, g, -1)
		}
		t.insertTab(g, tab, index, sel)
	case tg.kind == KindRow && loc == DockBottom:
		t.detach(tab)
		g := t.newGroup()
		t.insertTab(g, tab, 0, true)
		t.dockBottom(tg, g)
	default:
		return fmt.Errorf("tab at %s of %s: %w", loc, tg.kind, ErrInvalidTarget)
	}
	return nil
}

func (t *Tree) placeGroup(g, tg *node, loc DockLocation, index int) error {
	switch {
	case tg.kind == KindRow && loc == DockCenter:
		t.detach(g)
		t.insertChild(tg, g, index)
	case tg.kind == KindRow && loc == DockBottom:
		t.detach(g)
		t.dockBottom(tg, g)
	case tg.kind == KindPanelGroup && loc == DockCenter:
		for _, c := range slices.Clone(g.children) {
			tab := t.nodes[c]
			t.detach(tab)
			t.insertTab(tg, tab, -1, false)
		}
	default:
		return fmt.Errorf("panel group at %s of %s: %w", loc, tg.kind, ErrInvalidTarget)
	}
	return nil
}

// dockBottom appends g under everything else in row. A horizontal row keeps
// its current children side by side in a new horizontal child row and turns
// vertical.
func (t *Tree) dockBottom(row, g *node) {
	if row.orientation == Horizontal {
		if len(row.children) > 0 {
			wrap := &node{
				id:          newID(),
				kind:        KindRow,
				orientation: Horizontal,
				weight:      defaultWeight,
				selected:    -1,
				parent:      row.id,
				children:    row.children,
			}
			for _, c := range wrap.children {
				t.nodes[c].parent = wrap.id
			}
			t.nodes[wrap.id] = wrap
			row.children = []NodeID{wrap.id}
		}
		row.orientation = Vertical
	}
	t.insertChild(row, g, -1)
}

// firstGroup returns the first non-empty panel group under id in traversal order.
func (t *Tree) firstGroup(id NodeID) (*node, bool) {
	var found *node
	t.walk(id, func(n *node) {
		if found == nil && n.kind == KindPanelGroup && len(n.children) > 0 {
			found = n
		}
	})
	return found, found != nil
}

func (t *Tree) newGroup() *node {
	g := &node{id: newID(), kind: KindPanelGroup, weight: defaultWeight, selected: -1}
	t.nodes[g.id] = g
	return g
}

func (t *Tree) insertChild(parent, child *node, index int) int {
	if index < 0 || index > len(parent.children) {
		index = len(parent.children)
	}
	parent.children = slices.Insert(parent.children, index, child.id)
	child.parent = parent.id
	return index
}

func (t *Tree) insertTab(g, tab *node, index int, sel bool) {
	idx := t.insertChild(g, tab, index)
	switch {
	case sel:
		g.selected = idx
	case g.selected < 0:
		g.selected = 0
	case idx <= g.selected:
		g.selected++
	}
}

// detach unlinks n from its parent without tidying.
func (t *Tree) detach(n *node) {
	p, ok := t.nodes[n.parent]
	n.parent = ""
	if !ok {
		return
	}
	idx := slices.Index(p.children, n.id)
	if idx < 0 {
		return
	}
	p.children = slices.Delete(p.children, idx, idx+1)
	if p.kind == KindPanelGroup {
		switch {
		case len(p.children) == 0:
			p.selected = -1
		case idx < p.selected:
			p.selected--
		case p.selected >= len(p.children):
			p.selected = len(p.children) - 1
		}
	}
}

// remove detaches n and deletes its whole subtree from the arena.
func (t *Tree) remove(n *node) {
	t.detach(n)
	t.drop(n.id)
}

func (t *Tree) drop(id NodeID) {
	n, ok := t.nodes[id]
	if !ok {
		return
	}
	for _, c := range n.children {
		t.drop(c)
	}
	delete(t.nodes, id)
}

// Batch runs fn as one structural change. Panel groups and rows emptied by
// mutations inside fn are kept until fn returns, so a group can lose all its
// tabs and receive new ones within the batch. The tree is tidied once at the
// end, also when fn fails. Batches nest.
func (t *Tree) Batch(fn func() error) error {
	t.batch++
	defer func() {
		t.batch--
		t.normalize()
	}()
	return fn()
}

// normalize deletes empty panel groups and empty rows, replaces single-child
// rows by their child, splices rows into parents of the same orientation, and
// lets the root absorb a lone child row. It does nothing inside a batch.
func (t *Tree) normalize() {
	if t.batch > 0 {
		return
	}
	t.tidy(t.root)
	root := t.nodes[t.root]
	for len(root.children) == 1 {
		c := t.nodes[root.children[0]]
		if c.kind != KindRow {
			break
		}
		root.children = c.children
		root.orientation = c.orientation
		for _, gc := range root.children {
			t.nodes[gc].parent = root.id
		}
		delete(t.nodes, c.id)
	}
}

func (t *Tree) tidy(id NodeID) {
	n, ok := t.nodes[id]
	if !ok {
		return
	}
	for _, c := range slices.Clone(n.children) {
		t.tidy(c)
	}
	if id == t.root {
		return
	}
	switch n.kind {
	case KindPanelGroup:
		if len(n.children) == 0 {
			t.remove(n)
		}
	case KindRow:
		switch len(n.children) {
		case 0:
			t.remove(n)
		case 1:
			child := t.nodes[n.children[0]]
			t.replace(n, child)
			t.splice(child)
		default:
			t.splice(n)
		}
	}
}

// replace puts child in row's slot, inheriting its weight, and drops row.
func (t *Tree) replace(row, child *node) {
	p := t.nodes[row.parent]
	idx := slices.Index(p.children, row.id)
	p.children[idx] = child.id
	child.parent = p.id
	child.weight = row.weight
	delete(t.nodes, row.id)
}

// splice merges a row into its parent row when both share an orientation.
func (t *Tree) splice(n *node) {
	if n.kind != KindRow || n.parent == "" {
		return
	}
	p := t.nodes[n.parent]
	if p.kind != KindRow || p.orientation != n.orientation {
		return
	}
	idx := slices.Index(p.children, n.id)
	p.children = slices.Replace(p.children, idx, idx+1, n.children...)
	for _, c := range n.children {
		t.nodes[c].parent = p.id
	}
	delete(t.nodes, n.id)
}
