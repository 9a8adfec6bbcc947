package layout

// TabRecord returns a tab record with the given minimum size and panel
// preferences.
func TabRecord(id string, minWidth, minHeight int, prefs ...float64) Record {
	r := Record{Type: TypeTab, ID: id, Name: id, Component: id}
	cfg := map[string]any{}
	if minWidth > 0 {
		cfg[KeyMinWidth] = minWidth
	}
	if minHeight > 0 {
		cfg[KeyMinHeight] = minHeight
	}
	if len(prefs) > 0 {
		cfg[KeyPanelPreferences] = prefs
	}
	if len(cfg) > 0 {
		r.Config = cfg
	}
	return r
}

// GroupRecord returns a tabset record holding tabs. A rank of 0 leaves the
// group unranked.
func GroupRecord(id string, rank int, tabs ...Record) Record {
	r := Record{Type: TypeTabset, ID: id, Children: tabs}
	if rank > 0 {
		r.Config = map[string]any{KeyPanel: rank}
	}
	return r
}

// RowRecord returns a row record with an explicit orientation.
func RowRecord(id string, o Orientation, children ...Record) Record {
	return Record{Type: TypeRow, ID: id, Orientation: o.String(), Children: children}
}

// MustFromDocument is like [FromDocument] but panics on error. It is meant
// for templates and fixtures known to be valid.
func MustFromDocument(doc Document) *Tree {
	t, err := FromDocument(doc)
	if err != nil {
		panic(err)
	}
	return t
}

// NewDocument wraps a root row record into a document.
func NewDocument(root Record) Document {
	if root.Type == "" {
		root.Type = TypeRow
	}
	return Document{
		Global: Global{RootOrientationVertical: root.Orientation == Vertical.String()},
		Layout: root,
	}
}
