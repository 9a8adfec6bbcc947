package layout

import (
	"errors"
	"fmt"
	"maps"
	"slices"
)

var (
	// ErrUnknownNode is returned by read and mutation primitives when an id
	// does not name a node of the tree.
	ErrUnknownNode = errors.New("unknown node")

	// ErrDuplicateID is returned when a document or an added record reuses an
	// id that already exists. Ids must be unique across the entire tree.
	ErrDuplicateID = errors.New("duplicate node ID")

	// ErrInvalidTarget is returned when a node cannot be docked at the
	// requested target and location (for example a tab docked at the bottom
	// of a panel group, or a node moved into its own subtree).
	ErrInvalidTarget = errors.New("invalid dock target")

	// ErrInvalidKind is returned when a primitive is applied to a node of the
	// wrong kind (DeleteTab on a row, SetActive on a tab, ...).
	ErrInvalidKind = errors.New("invalid node kind")

	// ErrEmptyDocument is returned by [FromDocument] when the layout record is
	// missing or is not a row.
	ErrEmptyDocument = errors.New("document has no root row")
)

// NodeID identifies a node. Ids are stable: cloning, serializing and every
// mutation primitive preserve them.
type NodeID string

// Kind distinguishes the three node types of a docking layout.
type Kind int

const (
	// KindRow is a container aggregating its children along its orientation.
	KindRow Kind = iota
	// KindPanelGroup holds one or more tabs, one of which is in the foreground.
	KindPanelGroup
	// KindTab is a leaf content unit.
	KindTab
)

// String returns the document type name of the kind ("row", "tabset", "tab").
func (k Kind) String() string {
	switch k {
	case KindRow:
		return TypeRow
	case KindPanelGroup:
		return TypeTabset
	case KindTab:
		return TypeTab
	default:
		return "unknown"
	}
}

// Orientation is the primary axis of a row.
type Orientation int

const (
	Horizontal Orientation = iota
	Vertical
)

// String returns "horizontal" or "vertical".
func (o Orientation) String() string {
	if o == Vertical {
		return "vertical"
	}
	return "horizontal"
}

// Flip returns the cross orientation.
func (o Orientation) Flip() Orientation {
	if o == Vertical {
		return Horizontal
	}
	return Vertical
}

// DockLocation says where a moved or added node lands relative to its target.
type DockLocation int

const (
	// DockCenter docks a tab into a panel group (or into a row's first panel
	// group), or appends a panel group to a row.
	DockCenter DockLocation = iota
	// DockBottom docks a panel group under everything else in a row, turning
	// a horizontal row into a vertical stack.
	DockBottom
)

// String returns the lowercase name of the location.
func (d DockLocation) String() string {
	if d == DockBottom {
		return "bottom"
	}
	return "center"
}

// ParseDockLocation parses "center" or "bottom". The empty string is center.
func ParseDockLocation(s string) (DockLocation, error) {
	switch s {
	case "", "center":
		return DockCenter, nil
	case "bottom":
		return DockBottom, nil
	default:
		return DockCenter, fmt.Errorf("unknown dock location %q", s)
	}
}

// Node is a read-only view of a tree node. Mutating a Node has no effect on
// the tree; use the mutation primitives instead.
type Node struct {
	ID       NodeID
	Kind     Kind
	Parent   NodeID // empty for the root
	Children []NodeID
	Weight   float64

	// Orientation is meaningful for rows only.
	Orientation Orientation

	Name      string
	Component string

	// Active marks the panel group with focus. At most one group is active.
	Active bool
	// Selected is the index of the foreground tab of a panel group, -1 if none.
	Selected int
	// Rank is the explicit panel rank of a panel group, nil when unset.
	Rank *int

	// MinWidth and MinHeight are intrinsic minimums for tabs and cached
	// aggregates for panel groups.
	MinWidth  int
	MinHeight int

	// Preferences is the tab's panel preference vector, indexed by
	// budget minus one.
	Preferences []float64

	// Config is the opaque content descriptor payload of a tab.
	Config map[string]any
}

// IsRow reports whether the node is a row.
func (n Node) IsRow() bool { return n.Kind == KindRow }

// IsGroup reports whether the node is a panel group.
func (n Node) IsGroup() bool { return n.Kind == KindPanelGroup }

// IsTab reports whether the node is a tab.
func (n Node) IsTab() bool { return n.Kind == KindTab }

// node is the arena representation. Parent links are maintained only by the
// mutation primitives.
type node struct {
	id          NodeID
	kind        Kind
	parent      NodeID
	children    []NodeID
	weight      float64
	orientation Orientation
	name        string
	component   string
	active      bool
	selected    int
	rank        *int
	minWidth    int
	minHeight   int
	prefs       []float64
	config      map[string]any
}

func (n *node) view() Node {
	v := Node{
		ID:          n.id,
		Kind:        n.kind,
		Parent:      n.parent,
		Children:    slices.Clone(n.children),
		Weight:      n.weight,
		Orientation: n.orientation,
		Name:        n.name,
		Component:   n.component,
		Active:      n.active,
		Selected:    n.selected,
		MinWidth:    n.minWidth,
		MinHeight:   n.minHeight,
		Preferences: slices.Clone(n.prefs),
		Config:      maps.Clone(n.config),
	}
	if n.rank != nil {
		r := *n.rank
		v.Rank = &r
	}
	return v
}

func (n *node) copy() *node {
	c := *n
	c.children = slices.Clone(n.children)
	c.prefs = slices.Clone(n.prefs)
	c.config = maps.Clone(n.config)
	if n.rank != nil {
		r := *n.rank
		c.rank = &r
	}
	return &c
}

// Attrs carries the attribute updates applied by [Tree.UpdateNodeAttributes].
// Nil fields are left unchanged.
type Attrs struct {
	Name        *string
	Weight      *float64
	MinWidth    *int
	MinHeight   *int
	Rank        *int
	Preferences []float64
	Config      map[string]any
}

// IntAttr returns a pointer to v, for building [Attrs] literals.
func IntAttr(v int) *int { return &v }
