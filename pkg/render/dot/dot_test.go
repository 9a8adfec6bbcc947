package dot

import (
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/flexdock/pkg/cache"
	"github.com/matzehuels/flexdock/pkg/layout"
)

func tree() *layout.Tree {
	return layout.MustFromDocument(layout.NewDocument(layout.RowRecord("root", layout.Horizontal,
		layout.GroupRecord("g1", 1, layout.TabRecord("a", 400, 100, 1, -1.2)),
		layout.GroupRecord("g2", 2, layout.TabRecord("b", 300, 200), layout.TabRecord("c", 100, 50)),
	)))
}

func TestToDOT(t *testing.T) {
	src := ToDOT(tree(), Options{})
	for _, want := range []string{
		"digraph G {",
		`"root" [label="row (horizontal)", shape=ellipse, style=dashed];`,
		`"g1" [label="tabset #1", shape=box, style=rounded];`,
		`"root" -> "g1";`,
		`"g2" -> "b";`,
		`"g2" -> "c";`,
	} {
		if !strings.Contains(src, want) {
			t.Errorf("DOT missing %q:\n%s", want, src)
		}
	}
	if strings.Index(src, `"g2" -> "b"`) > strings.Index(src, `"g2" -> "c"`) {
		t.Error("edges not in child order")
	}
	// b is the foreground tab of g2
	if !strings.Contains(src, `"b" [label="b", shape=note, penwidth=2`) {
		t.Errorf("selected tab not highlighted:\n%s", src)
	}
}

func TestToDOTDetailed(t *testing.T) {
	src := ToDOT(tree(), Options{Detailed: true})
	for _, want := range []string{
		`needs: 700x200`,
		`needs: 300x200`,
		`min: 400x100`,
		`prefs: [1 -1.2]`,
	} {
		if !strings.Contains(src, want) {
			t.Errorf("detailed DOT missing %q", want)
		}
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="10pt" height="20pt" viewBox="0.00 0.00 100.50 200.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	got := string(normalizeViewBox(in))
	want := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100.50 200.00" width="100" height="200"><g/></svg>`
	if got != want {
		t.Errorf("normalizeViewBox() = %s, want %s", got, want)
	}
	plain := []byte(`<svg><g/></svg>`)
	if string(normalizeViewBox(plain)) != string(plain) {
		t.Error("svg without viewBox modified")
	}
}

func TestRenderSVGCachedHit(t *testing.T) {
	ctx := context.Background()
	c, err := cache.NewFileCache(t.TempDir(), 0)
	if err != nil {
		t.Fatal(err)
	}
	src := ToDOT(tree(), Options{})
	if err := c.Set(ctx, cache.Key("svg", src), []byte("<svg>cached</svg>")); err != nil {
		t.Fatal(err)
	}

	svg, hit, err := RenderSVGCached(ctx, c, src)
	if err != nil {
		t.Fatalf("RenderSVGCached: %v", err)
	}
	if !hit || string(svg) != "<svg>cached</svg>" {
		t.Errorf("RenderSVGCached = %q, hit %v; want the cached entry", svg, hit)
	}
}
