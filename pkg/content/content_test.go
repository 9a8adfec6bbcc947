package content

import (
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"

	ferrors "github.com/matzehuels/flexdock/pkg/errors"
	"github.com/matzehuels/flexdock/pkg/layout"
)

func tab(component string, text any) layout.Node {
	n := layout.Node{ID: "t1", Kind: layout.KindTab, Component: component, Config: map[string]any{}}
	if text != nil {
		n.Config[KeyText] = text
	}
	return n
}

func TestResolve(t *testing.T) {
	reg := Default()
	tests := []struct {
		name string
		tab  layout.Node
		want Content
	}{
		{"Text", tab("text", "<b>hi</b>"), Content{Tab: "t1", Kind: KindHTML, Body: "<b>hi</b>"}},
		{"TextEmpty", tab("text", nil), Content{Tab: "t1", Kind: KindHTML}},
		{"PDF", tab("pdf", "/doc.pdf"), Content{Tab: "t1", Kind: KindFrame, Source: "/doc.pdf"}},
		{"Image", tab("IMAGE", "/a.png"), Content{Tab: "t1", Kind: KindImage, Source: "/a.png"}},
		{"Check", tab("123check", "/c.png"), Content{Tab: "t1", Kind: KindImage, Source: "/c.png", Width: 1220, Height: 1000}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := reg.Resolve(tt.tab)
			if err != nil {
				t.Fatalf("Resolve: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Resolve() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestResolveErrors(t *testing.T) {
	reg := Default()
	if _, err := reg.Resolve(tab("video", "x")); !ferrors.Is(err, ferrors.ErrCodeUnsupported) {
		t.Errorf("unknown component error = %v", err)
	}
	if _, err := reg.Resolve(tab("pdf", "  ")); !ferrors.Is(err, ferrors.ErrCodeInvalidInput) {
		t.Errorf("missing url error = %v", err)
	}
	if _, err := reg.Resolve(layout.Node{ID: "g", Kind: layout.KindPanelGroup}); !ferrors.Is(err, ferrors.ErrCodeInvalidTarget) {
		t.Errorf("group error = %v", err)
	}
}

func TestRegister(t *testing.T) {
	reg := NewRegistry()
	reg.Register("Chart", func(layout.Node) (Content, error) {
		return Content{Kind: KindHTML, Body: "chart"}, nil
	})
	if got := reg.Components(); !slices.Equal(got, []string{"chart"}) {
		t.Errorf("Components() = %v, want [chart]", got)
	}
	c, err := reg.Resolve(tab("chart", nil))
	if err != nil || c.Body != "chart" || c.Tab != "t1" {
		t.Errorf("Resolve() = %+v, %v", c, err)
	}
	if got := Default().Components(); !slices.Equal(got, []string{"123check", "image", "pdf", "text"}) {
		t.Errorf("Default().Components() = %v", got)
	}
}
