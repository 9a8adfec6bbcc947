package layout

import (
	"fmt"
	"slices"

	"github.com/google/uuid"
)

// Op names a mutation primitive in a [Mutation] notification.
type Op string

const (
	OpMove         Op = "move"
	OpAdd          Op = "add"
	OpDeleteTab    Op = "delete_tab"
	OpDeleteTabset Op = "delete_tabset"
	OpUpdate       Op = "update"
	OpActivate     Op = "activate"
	OpSelect       Op = "select"
)

const (
	defaultWeight     = 50.0
	defaultRootWeight = 100.0
)

// Mutation describes one applied mutation primitive.
type Mutation struct {
	Op     Op
	Node   NodeID
	Target NodeID
}

// Tree is a docking layout stored as an arena of id-keyed nodes with explicit
// parent links. The root is always a row.
//
// The zero value is not usable; create trees with [New] or [FromDocument].
// Tree is not safe for concurrent use without external synchronization.
type Tree struct {
	nodes map[NodeID]*node
	root  NodeID

	listeners    map[int]func(Mutation)
	nextListener int

	// batch counts open [Tree.Batch] calls; tidying waits until it is zero.
	batch int
}

// New creates a tree holding only an empty root row with the given orientation.
func New(o Orientation) *Tree {
	t := &Tree{nodes: make(map[NodeID]*node)}
	root := &node{id: newID(), kind: KindRow, orientation: o, weight: defaultRootWeight, selected: -1}
	t.nodes[root.id] = root
	t.root = root.id
	return t
}

func newID() NodeID { return NodeID(uuid.NewString()) }

// Root returns the id of the root row.
func (t *Tree) Root() NodeID { return t.root }

// Len returns the number of nodes in the tree, root included.
func (t *Tree) Len() int { return len(t.nodes) }

// Has reports whether id names a node of the tree.
func (t *Tree) Has(id NodeID) bool {
	_, ok := t.nodes[id]
	return ok
}

// Node returns a read-only view of the node with the given id.
func (t *Tree) Node(id NodeID) (Node, bool) {
	n, ok := t.nodes[id]
	if !ok {
		return Node{}, false
	}
	return n.view(), true
}

// Kind returns the kind of id, or false if the node does not exist.
func (t *Tree) Kind(id NodeID) (Kind, bool) {
	n, ok := t.nodes[id]
	if !ok {
		return 0, false
	}
	return n.kind, true
}

// Children returns the ordered child ids of id. The slice is a copy.
func (t *Tree) Children(id NodeID) []NodeID {
	if n, ok := t.nodes[id]; ok {
		return slices.Clone(n.children)
	}
	return nil
}

// Parent returns the parent of id. The root has no parent.
func (t *Tree) Parent(id NodeID) (NodeID, bool) {
	n, ok := t.nodes[id]
	if !ok || n.parent == "" {
		return "", false
	}
	return n.parent, true
}

// Orientation returns the orientation of a row. For other kinds it returns
// the orientation of the closest enclosing row.
func (t *Tree) Orientation(id NodeID) Orientation {
	for n, ok := t.nodes[id]; ok; n, ok = t.nodes[n.parent] {
		if n.kind == KindRow {
			return n.orientation
		}
	}
	return Horizontal
}

// Config returns a copy of the opaque config payload of id.
func (t *Tree) Config(id NodeID) map[string]any {
	if n, ok := t.nodes[id]; ok {
		v := n.view()
		return v.Config
	}
	return nil
}

// IndexOf returns the position of id among its siblings, or -1.
func (t *Tree) IndexOf(id NodeID) int {
	n, ok := t.nodes[id]
	if !ok || n.parent == "" {
		return -1
	}
	return slices.Index(t.nodes[n.parent].children, id)
}

// Visit calls fn for every node in document order (pre-order, children in
// their stored order), starting at the root.
func (t *Tree) Visit(fn func(Node)) {
	t.walk(t.root, func(n *node) { fn(n.view()) })
}

func (t *Tree) walk(id NodeID, fn func(*node)) {
	n, ok := t.nodes[id]
	if !ok {
		return
	}
	fn(n)
	for _, c := range n.children {
		t.walk(c, fn)
	}
}

// Groups returns all panel group ids in traversal order.
func (t *Tree) Groups() []NodeID {
	return t.collect(KindPanelGroup)
}

// Tabs returns all tab ids in traversal order.
func (t *Tree) Tabs() []NodeID {
	return t.collect(KindTab)
}

func (t *Tree) collect(k Kind) []NodeID {
	var ids []NodeID
	t.walk(t.root, func(n *node) {
		if n.kind == k {
			ids = append(ids, n.id)
		}
	})
	return ids
}

// ActiveGroup returns the first active panel group in traversal order.
func (t *Tree) ActiveGroup() (NodeID, bool) {
	var found NodeID
	t.walk(t.root, func(n *node) {
		if found == "" && n.kind == KindPanelGroup && n.active {
			found = n.id
		}
	})
	return found, found != ""
}

// SelectedTab returns the foreground tab of a panel group.
func (t *Tree) SelectedTab(group NodeID) (NodeID, bool) {
	g, ok := t.nodes[group]
	if !ok || g.kind != KindPanelGroup || g.selected < 0 || g.selected >= len(g.children) {
		return "", false
	}
	return g.children[g.selected], true
}

// OnMutation registers fn to be called after every applied mutation
// primitive. The returned function unregisters it. Listeners are not copied
// by [Tree.Clone].
func (t *Tree) OnMutation(fn func(Mutation)) (unsubscribe func()) {
	if t.listeners == nil {
		t.listeners = make(map[int]func(Mutation))
	}
	key := t.nextListener
	t.nextListener++
	t.listeners[key] = fn
	return func() { delete(t.listeners, key) }
}

func (t *Tree) emit(m Mutation) {
	keys := make([]int, 0, len(t.listeners))
	for k := range t.listeners {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		t.listeners[k](m)
	}
}

// Validate checks the structural invariants of the tree: parent links agree
// with child lists, every tab lives in a panel group, every panel group holds
// at least one tab and only tabs, rows only hold rows and panel groups, and at
// most one group is active.
func (t *Tree) Validate() error {
	root, ok := t.nodes[t.root]
	if !ok || root.kind != KindRow {
		return fmt.Errorf("root %q: %w", t.root, ErrEmptyDocument)
	}
	active := 0
	seen := 0
	var check func(id, parent NodeID) error
	check = func(id, parent NodeID) error {
		n, ok := t.nodes[id]
		if !ok {
			return fmt.Errorf("child %q of %q: %w", id, parent, ErrUnknownNode)
		}
		seen++
		if n.parent != parent {
			return fmt.Errorf("node %q: parent link %q, listed under %q", id, n.parent, parent)
		}
		switch n.kind {
		case KindPanelGroup:
			if len(n.children) == 0 {
				return fmt.Errorf("panel group %q is empty", id)
			}
			if n.active {
				active++
			}
			for _, c := range n.children {
				if k, _ := t.Kind(c); k != KindTab {
					return fmt.Errorf("panel group %q holds %s %q: %w", id, k, c, ErrInvalidKind)
				}
			}
		case KindRow:
			for _, c := range n.children {
				if k, _ := t.Kind(c); k == KindTab {
					return fmt.Errorf("row %q holds tab %q: %w", id, c, ErrInvalidKind)
				}
			}
		case KindTab:
			if len(n.children) > 0 {
				return fmt.Errorf("tab %q has children: %w", id, ErrInvalidKind)
			}
		}
		for _, c := range n.children {
			if err := check(c, id); err != nil {
				return err
			}
		}
		return nil
	}
	if err := check(t.root, ""); err != nil {
		return err
	}
	if seen != len(t.nodes) {
		return fmt.Errorf("%d nodes unreachable from root", len(t.nodes)-seen)
	}
	if active > 1 {
		return fmt.Errorf("%d panel groups are active, want at most 1", active)
	}
	return nil
}
