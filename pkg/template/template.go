package template

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	ferrors "github.com/matzehuels/flexdock/pkg/errors"
	"github.com/matzehuels/flexdock/pkg/layout"
)

//go:embed default.json
var defaultJSON []byte

// Format is a template file encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// ParseFormat parses a format name; "yml" is accepted for YAML.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "json":
		return FormatJSON, nil
	case "toml":
		return FormatTOML, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", ferrors.New(ferrors.ErrCodeInvalidFormat, "unknown template format %q (want json, toml or yaml)", s)
	}
}

// FormatOf returns the format implied by a file extension.
func FormatOf(path string) (Format, error) {
	return ParseFormat(filepath.Ext(path))
}

// DefaultJSON returns the canonical template document.
func DefaultJSON() []byte {
	return bytes.Clone(defaultJSON)
}

// Default returns a fresh tree of the canonical template: five panel groups
// ranked 1 to 5, one 510x350 text tab each, with preferences that fold the
// higher ranks into the lower ones as the budget shrinks.
func Default() *layout.Tree {
	t, err := Decode(bytes.NewReader(defaultJSON), FormatJSON)
	if err != nil {
		panic(fmt.Sprintf("template: embedded default: %v", err))
	}
	return t
}

// Load reads a template file, choosing the decoder by extension.
func Load(path string) (*layout.Tree, error) {
	if err := ferrors.ValidatePath(path); err != nil {
		return nil, err
	}
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, ferrors.Wrap(ferrors.ErrCodeInvalidTemplate, err, "open %s", path)
	}
	defer f.Close()
	t, err := Decode(f, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// Decode reads a template document and builds its tree. A template must
// hold at least one panel group.
func Decode(r io.Reader, format Format) (*layout.Tree, error) {
	var doc layout.Document
	var err error
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(r)
		dec.UseNumber()
		err = dec.Decode(&doc)
	case FormatTOML:
		_, err = toml.NewDecoder(r).Decode(&doc)
	case FormatYAML:
		err = yaml.NewDecoder(r).Decode(&doc)
	default:
		return nil, ferrors.New(ferrors.ErrCodeInvalidFormat, "unknown template format %q", format)
	}
	if err != nil {
		return nil, ferrors.Wrap(ferrors.ErrCodeInvalidTemplate, err, "decode %s template", format)
	}
	t, err := layout.FromDocument(doc)
	if err != nil {
		return nil, ferrors.Wrap(ferrors.ErrCodeInvalidTemplate, err, "build template")
	}
	if len(t.Groups()) == 0 {
		return nil, ferrors.New(ferrors.ErrCodeInvalidTemplate, "template has no panel groups")
	}
	return t, nil
}

// Encode writes t as a template document in the given format.
func Encode(w io.Writer, t *layout.Tree, format Format) error {
	doc := t.ToDocument()
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	case FormatTOML:
		return toml.NewEncoder(w).Encode(doc)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	default:
		return ferrors.New(ferrors.ErrCodeInvalidFormat, "unknown template format %q", format)
	}
}
