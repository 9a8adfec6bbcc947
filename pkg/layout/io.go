package layout

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// ReadJSON decodes a JSON layout document from r into a tree.
//
// The input must be a JSON object with a "layout" record whose type is
// "row":
//
//	{
//	  "global": {"rootOrientationVertical": false},
//	  "layout": {
//	    "type": "row",
//	    "children": [
//	      {"type": "tabset", "children": [{"type": "tab", "id": "a"}]}
//	    ]
//	  }
//	}
//
// Numbers in config payloads are decoded as [json.Number] and converted
// where the key has a typed meaning (minWidth, minHeight, panel,
// panelPreferences). ReadJSON does not close r.
func ReadJSON(r io.Reader) (*Tree, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var doc Document
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return FromDocument(doc)
}

// ImportJSON reads a JSON layout file at path.
func ImportJSON(path string) (*Tree, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	t, err := ReadJSON(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// WriteJSON encodes t as an indented JSON document. The output can be
// re-imported with [ReadJSON] and keeps every node id.
func WriteJSON(t *Tree, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(t.ToDocument()); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportJSON writes t to a JSON file at path, creating or truncating it.
func ExportJSON(t *Tree, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteJSON(t, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
