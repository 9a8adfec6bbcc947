package layout

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const sampleJSON = `{
  "global": {"rootOrientationVertical": false},
  "layout": {
    "type": "row",
    "id": "root",
    "children": [
      {
        "type": "tabset",
        "id": "side",
        "selected": 1,
        "active": true,
        "config": {"panel": 2},
        "children": [
          {"type": "tab", "id": "files", "component": "tree",
           "config": {"minWidth": 180, "minHeight": 200, "panelPreferences": [1, -2.3], "path": "/src"}},
          {"type": "tab", "id": "search", "config": {"minWidth": 220}}
        ]
      },
      {
        "type": "row",
        "children": [
          {"type": "tabset", "id": "main", "config": {"panel": 1},
           "children": [{"type": "tab", "id": "editor", "config": {"minWidth": 400}}]},
          {"type": "tabset", "id": "bottom",
           "children": [{"type": "tab", "id": "terminal"}]}
        ]
      }
    ]
  }
}`

func TestReadJSON(t *testing.T) {
	tree, err := ReadJSON(strings.NewReader(sampleJSON))
	if err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if err := tree.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	files, _ := tree.Node("files")
	if files.MinWidth != 180 || files.MinHeight != 200 {
		t.Errorf("files min = %dx%d, want 180x200", files.MinWidth, files.MinHeight)
	}
	if diff := cmp.Diff([]float64{1, -2.3}, files.Preferences); diff != "" {
		t.Errorf("files preferences mismatch (-want +got):\n%s", diff)
	}
	if files.Config["path"] != "/src" {
		t.Errorf("files config = %v, want path=/src", files.Config)
	}
	if _, ok := files.Config[KeyMinWidth]; ok {
		t.Error("typed key minWidth left in opaque config")
	}

	side, _ := tree.Node("side")
	if side.Rank == nil || *side.Rank != 2 {
		t.Errorf("side rank = %v, want 2", side.Rank)
	}
	if sel, _ := tree.SelectedTab("side"); sel != "search" {
		t.Errorf("SelectedTab(side) = %q, want search", sel)
	}
	if g, _ := tree.ActiveGroup(); g != "side" {
		t.Errorf("ActiveGroup() = %q, want side", g)
	}

	// the id-less nested row alternates to vertical and gets an id
	p, _ := tree.Parent("main")
	if p == "" || p == "root" {
		t.Fatalf("Parent(main) = %q, want generated row id", p)
	}
	if got := tree.Orientation(p); got != Vertical {
		t.Errorf("nested row orientation = %v, want vertical", got)
	}
}

func TestDocumentRoundTrip(t *testing.T) {
	tree, err := ReadJSON(strings.NewReader(sampleJSON))
	if err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	var buf bytes.Buffer
	if err := WriteJSON(tree, &buf); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	again, err := ReadJSON(&buf)
	if err != nil {
		t.Fatalf("ReadJSON(round trip): %v", err)
	}
	if diff := cmp.Diff(tree.ToDocument(), again.ToDocument()); diff != "" {
		t.Errorf("round trip mismatch (-first +second):\n%s", diff)
	}

	var before, after []NodeID
	tree.Visit(func(n Node) { before = append(before, n.ID) })
	again.Visit(func(n Node) { after = append(after, n.ID) })
	if !slices.Equal(before, after) {
		t.Errorf("ids changed: %v vs %v", before, after)
	}
}

func TestImportExportJSON(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "in.json")
	if err := os.WriteFile(src, []byte(sampleJSON), 0o644); err != nil {
		t.Fatal(err)
	}
	tree, err := ImportJSON(src)
	if err != nil {
		t.Fatalf("ImportJSON: %v", err)
	}
	out := filepath.Join(dir, "out.json")
	if err := ExportJSON(tree, out); err != nil {
		t.Fatalf("ExportJSON: %v", err)
	}
	again, err := ImportJSON(out)
	if err != nil {
		t.Fatalf("ImportJSON(out): %v", err)
	}
	if again.Len() != tree.Len() {
		t.Errorf("Len() = %d, want %d", again.Len(), tree.Len())
	}
	if _, err := ImportJSON(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("ImportJSON(missing) succeeded")
	}
}

func TestFromDocumentErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  Document
		want error
	}{
		{"RootNotRow", Document{Layout: TabRecord("a", 0, 0)}, ErrEmptyDocument},
		{"Empty", Document{}, ErrEmptyDocument},
		{"DuplicateID", NewDocument(RowRecord("root", Horizontal,
			GroupRecord("g", 0, TabRecord("a", 0, 0), TabRecord("a", 0, 0)))), ErrDuplicateID},
		{"UnknownType", NewDocument(RowRecord("root", Horizontal, Record{Type: "pane"})), ErrInvalidKind},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromDocument(tt.doc)
			if !errors.Is(err, tt.want) {
				t.Errorf("FromDocument() error = %v, want %v", err, tt.want)
			}
		})
	}

	_, err := FromDocument(NewDocument(RowRecord("root", Horizontal,
		GroupRecord("g", 0, Record{Type: TypeTab, Config: map[string]any{KeyMinWidth: "wide"}}))))
	if err == nil {
		t.Error("non-numeric minWidth accepted")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	tree := fixture(t)
	c := tree.Clone()
	if err := c.MoveNode("d", "g1", DockCenter, -1, false); err != nil {
		t.Fatalf("MoveNode on clone: %v", err)
	}
	if !tree.Has("g3") {
		t.Error("mutating the clone changed the original")
	}
	if diff := cmp.Diff(tree.ToDocument(), fixture(t).ToDocument()); diff != "" {
		t.Errorf("original changed (-got +want):\n%s", diff)
	}

	calls := 0
	tree.OnMutation(func(Mutation) { calls++ })
	c2 := tree.Clone()
	_ = c2.SetActive("g1")
	if calls != 0 {
		t.Error("listeners copied into clone")
	}
}
