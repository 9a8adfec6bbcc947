package layout

import (
	"fmt"
	"maps"
	"math"
	"slices"
	"strconv"
)

// Record type names used in documents.
const (
	TypeRow    = "row"
	TypeTabset = "tabset"
	TypeTab    = "tab"
)

// Config keys with typed meaning. All other keys of a config payload are
// opaque and carried through untouched.
const (
	KeyMinWidth         = "minWidth"
	KeyMinHeight        = "minHeight"
	KeyPanelPreferences = "panelPreferences"
	KeyPanel            = "panel"
)

// Document is the plain serialized form of a tree.
type Document struct {
	Global Global `json:"global" toml:"global" yaml:"global"`
	Layout Record `json:"layout" toml:"layout" yaml:"layout"`
}

// Global holds document-wide settings.
type Global struct {
	RootOrientationVertical bool `json:"rootOrientationVertical,omitempty" toml:"rootOrientationVertical,omitempty" yaml:"rootOrientationVertical,omitempty"`
}

// Record is one serialized node. Tab records carry minWidth, minHeight,
// panelPreferences and their opaque content descriptor in Config; tabset
// records carry their panel rank ("panel") and cached minimums.
type Record struct {
	Type        string         `json:"type" toml:"type" yaml:"type"`
	ID          string         `json:"id,omitempty" toml:"id,omitempty" yaml:"id,omitempty"`
	Name        string         `json:"name,omitempty" toml:"name,omitempty" yaml:"name,omitempty"`
	Component   string         `json:"component,omitempty" toml:"component,omitempty" yaml:"component,omitempty"`
	Weight      float64        `json:"weight,omitempty" toml:"weight,omitempty" yaml:"weight,omitempty"`
	Selected    *int           `json:"selected,omitempty" toml:"selected,omitempty" yaml:"selected,omitempty"`
	Active      bool           `json:"active,omitempty" toml:"active,omitempty" yaml:"active,omitempty"`
	Orientation string         `json:"orientation,omitempty" toml:"orientation,omitempty" yaml:"orientation,omitempty"`
	Config      map[string]any `json:"config,omitempty" toml:"config,omitempty" yaml:"config,omitempty"`
	Children    []Record       `json:"children,omitempty" toml:"children,omitempty" yaml:"children,omitempty"`
}

// FromDocument builds a tree from a document. Missing ids are generated,
// duplicate ids are rejected, and rows without an explicit orientation
// alternate from their parent (the root follows
// Global.RootOrientationVertical).
//
// The node structure is taken as given: a tabset record holding a row is
// loaded, and reported later as a corrupted tree by analysis. Empty tabsets
// and rows are tidied away.
func FromDocument(doc Document) (*Tree, error) {
	if doc.Layout.Type != TypeRow {
		return nil, ErrEmptyDocument
	}
	t := &Tree{nodes: make(map[NodeID]*node)}
	rootOrientation := Horizontal
	if doc.Global.RootOrientationVertical {
		rootOrientation = Vertical
	}
	b := builder{tree: t}
	// the root does not alternate: pass the flipped orientation down
	root, err := b.build(doc.Layout, "", rootOrientation.Flip())
	if err != nil {
		return nil, err
	}
	t.root = root
	if doc.Layout.Weight == 0 {
		t.nodes[root].weight = defaultRootWeight
	}
	t.normalize()
	return t, nil
}

// ToDocument serializes the tree. FromDocument(ToDocument(t)) reproduces t
// with the same ids.
func (t *Tree) ToDocument() Document {
	root := t.nodes[t.root]
	return Document{
		Global: Global{RootOrientationVertical: root.orientation == Vertical},
		Layout: t.record(root),
	}
}

// Record serializes the subtree rooted at id.
func (t *Tree) Record(id NodeID) (Record, bool) {
	n, ok := t.nodes[id]
	if !ok {
		return Record{}, false
	}
	return t.record(n), true
}

func (t *Tree) record(n *node) Record {
	r := Record{
		Type:      n.kind.String(),
		ID:        string(n.id),
		Name:      n.name,
		Component: n.component,
		Weight:    n.weight,
		Active:    n.active,
	}
	cfg := maps.Clone(n.config)
	setInt := func(k string, v int) {
		if v > 0 {
			if cfg == nil {
				cfg = make(map[string]any)
			}
			cfg[k] = v
		}
	}
	switch n.kind {
	case KindRow:
		r.Orientation = n.orientation.String()
	case KindPanelGroup:
		sel := n.selected
		r.Selected = &sel
		if n.rank != nil {
			if cfg == nil {
				cfg = make(map[string]any)
			}
			cfg[KeyPanel] = *n.rank
		}
	}
	setInt(KeyMinWidth, n.minWidth)
	setInt(KeyMinHeight, n.minHeight)
	if len(n.prefs) > 0 {
		if cfg == nil {
			cfg = make(map[string]any)
		}
		cfg[KeyPanelPreferences] = slices.Clone(n.prefs)
	}
	r.Config = cfg
	for _, c := range n.children {
		r.Children = append(r.Children, t.record(t.nodes[c]))
	}
	return r
}

// Clone returns an independent deep copy with the same ids. It is
// equivalent to FromDocument(t.ToDocument()). Mutation listeners are not
// copied.
func (t *Tree) Clone() *Tree {
	c := &Tree{nodes: make(map[NodeID]*node, len(t.nodes)), root: t.root}
	for id, n := range t.nodes {
		c.nodes[id] = n.copy()
	}
	return c
}

// builder creates arena nodes from records and remembers them for rollback.
type builder struct {
	tree    *Tree
	created []NodeID
}

func (b *builder) build(r Record, parent NodeID, parentOrientation Orientation) (NodeID, error) {
	kind, err := kindOf(r.Type)
	if err != nil {
		return "", err
	}
	id := NodeID(r.ID)
	if id == "" {
		id = newID()
	}
	if _, exists := b.tree.nodes[id]; exists {
		return "", fmt.Errorf("node %s: %w", id, ErrDuplicateID)
	}
	n := &node{
		id:        id,
		kind:      kind,
		parent:    parent,
		weight:    r.Weight,
		name:      r.Name,
		component: r.Component,
		active:    r.Active,
		selected:  -1,
	}
	if n.weight == 0 {
		n.weight = defaultWeight
	}
	switch r.Orientation {
	case "horizontal":
		n.orientation = Horizontal
	case "vertical":
		n.orientation = Vertical
	case "":
		n.orientation = parentOrientation.Flip()
	default:
		return "", fmt.Errorf("node %s: unknown orientation %q", id, r.Orientation)
	}
	if err := n.readConfig(r.Config); err != nil {
		return "", fmt.Errorf("node %s: %w", id, err)
	}
	b.tree.nodes[id] = n
	b.created = append(b.created, id)

	for _, cr := range r.Children {
		cid, err := b.build(cr, id, n.orientation)
		if err != nil {
			return "", err
		}
		n.children = append(n.children, cid)
	}
	if kind == KindPanelGroup && len(n.children) > 0 {
		n.selected = 0
		if r.Selected != nil && *r.Selected >= 0 && *r.Selected < len(n.children) {
			n.selected = *r.Selected
		}
	}
	return id, nil
}

func (b *builder) rollback() {
	for _, id := range b.created {
		if n, ok := b.tree.nodes[id]; ok {
			b.tree.detach(n)
			delete(b.tree.nodes, id)
		}
	}
	b.created = nil
}

func kindOf(typ string) (Kind, error) {
	switch typ {
	case TypeRow:
		return KindRow, nil
	case TypeTabset:
		return KindPanelGroup, nil
	case TypeTab:
		return KindTab, nil
	default:
		return 0, fmt.Errorf("unknown record type %q: %w", typ, ErrInvalidKind)
	}
}

// readConfig lifts the typed keys out of cfg and keeps the rest as the
// opaque payload.
func (n *node) readConfig(cfg map[string]any) error {
	if len(cfg) == 0 {
		return nil
	}
	rest := maps.Clone(cfg)
	if v, ok := rest[KeyMinWidth]; ok {
		f, err := number(v)
		if err != nil {
			return fmt.Errorf("%s: %w", KeyMinWidth, err)
		}
		n.minWidth = int(math.Round(f))
		delete(rest, KeyMinWidth)
	}
	if v, ok := rest[KeyMinHeight]; ok {
		f, err := number(v)
		if err != nil {
			return fmt.Errorf("%s: %w", KeyMinHeight, err)
		}
		n.minHeight = int(math.Round(f))
		delete(rest, KeyMinHeight)
	}
	if v, ok := rest[KeyPanel]; ok && n.kind == KindPanelGroup {
		f, err := number(v)
		if err != nil {
			return fmt.Errorf("%s: %w", KeyPanel, err)
		}
		r := int(f)
		n.rank = &r
		delete(rest, KeyPanel)
	}
	if v, ok := rest[KeyPanelPreferences]; ok {
		prefs, err := numbers(v)
		if err != nil {
			return fmt.Errorf("%s: %w", KeyPanelPreferences, err)
		}
		n.prefs = prefs
		delete(rest, KeyPanelPreferences)
	}
	if len(rest) > 0 {
		n.config = rest
	}
	return nil
}

// number converts the numeric types produced by the JSON, TOML and YAML
// decoders.
func number(v any) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case int32:
		return float64(x), nil
	case uint64:
		return float64(x), nil
	case interface{ Float64() (float64, error) }:
		return x.Float64()
	case string:
		return strconv.ParseFloat(x, 64)
	default:
		return 0, fmt.Errorf("not a number: %v (%T)", v, v)
	}
}

func numbers(v any) ([]float64, error) {
	switch xs := v.(type) {
	case []float64:
		return slices.Clone(xs), nil
	case []any:
		out := make([]float64, len(xs))
		for i, x := range xs {
			f, err := number(x)
			if err != nil {
				return nil, fmt.Errorf("index %d: %w", i, err)
			}
			out[i] = f
		}
		return out, nil
	case []int:
		out := make([]float64, len(xs))
		for i, x := range xs {
			out[i] = float64(x)
		}
		return out, nil
	case []int64:
		out := make([]float64, len(xs))
		for i, x := range xs {
			out[i] = float64(x)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("not a list of numbers: %T", v)
	}
}
