package dot

import (
	"bytes"
	"context"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/flexdock/pkg/analysis"
	"github.com/matzehuels/flexdock/pkg/cache"
	"github.com/matzehuels/flexdock/pkg/layout"
)

// Options configures diagram generation.
type Options struct {
	// Detailed adds minimum sizes, ranks and preferences to the labels.
	// When false, only names are shown.
	Detailed bool
}

// ToDOT converts a layout tree to Graphviz DOT, one node per tree node and
// one edge per parent link, children in order. The result can be rendered
// with [RenderSVG].
//
// Rows are drawn as ellipses, panel groups as boxes (filled when active)
// and tabs as notes (bold when in the foreground).
func ToDOT(t *layout.Tree, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.4;\n")
	buf.WriteString("  nodesep=0.25;\n")
	buf.WriteString("\n")

	var edges [][2]layout.NodeID
	t.Visit(func(n layout.Node) {
		label := fmtLabel(t, n, opts.Detailed)
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(fmtAttrs(t, n, label), ", "))
		for _, c := range n.Children {
			edges = append(edges, [2]layout.NodeID{n.ID, c})
		}
	})

	buf.WriteString("\n")
	for _, e := range edges {
		fmt.Fprintf(&buf, "  %q -> %q;\n", e[0], e[1])
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(t *layout.Tree, n layout.Node, detailed bool) string {
	var head string
	switch n.Kind {
	case layout.KindRow:
		head = fmt.Sprintf("row (%s)", n.Orientation)
	case layout.KindPanelGroup:
		head = "tabset"
		if n.Rank != nil {
			head = fmt.Sprintf("tabset #%d", *n.Rank)
		}
	default:
		head = n.Name
		if head == "" {
			head = string(n.ID)
		}
	}
	if !detailed {
		return head
	}

	parts := []string{head, "id: " + string(n.ID)}
	switch n.Kind {
	case layout.KindTab:
		parts = append(parts, fmt.Sprintf("min: %dx%d", n.MinWidth, n.MinHeight))
		if n.Component != "" {
			parts = append(parts, "component: "+n.Component)
		}
		if len(n.Preferences) > 0 {
			prefs := make([]string, len(n.Preferences))
			for i, p := range n.Preferences {
				prefs[i] = strconv.FormatFloat(p, 'g', -1, 64)
			}
			parts = append(parts, "prefs: ["+strings.Join(prefs, " ")+"]")
		}
		for _, k := range slices.Sorted(maps.Keys(n.Config)) {
			if k == "text" {
				continue
			}
			parts = append(parts, fmt.Sprintf("%s: %v", k, n.Config[k]))
		}
	default:
		w, h := analysis.Measure(t, n.ID)
		parts = append(parts, fmt.Sprintf("needs: %dx%d", w, h))
	}
	return strings.Join(parts, "\n")
}

func fmtAttrs(t *layout.Tree, n layout.Node, label string) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	switch n.Kind {
	case layout.KindRow:
		attrs = append(attrs, "shape=ellipse", "style=dashed")
	case layout.KindPanelGroup:
		if n.Active {
			attrs = append(attrs, "shape=box", "style=\"rounded,filled\"", "fillcolor=lightblue")
		} else {
			attrs = append(attrs, "shape=box", "style=rounded")
		}
	default:
		attrs = append(attrs, "shape=note")
		if sel, ok := t.SelectedTab(n.Parent); ok && sel == n.ID {
			attrs = append(attrs, "penwidth=2", "fontname=\"Helvetica-Bold\"")
		}
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

// RenderSVGCached is [RenderSVG] backed by c, keyed by the DOT source. It
// reports whether the SVG came from the cache. A failing cache read or write
// only costs the render.
func RenderSVGCached(ctx context.Context, c cache.Cache, dot string) ([]byte, bool, error) {
	key := cache.Key("svg", dot)
	if data, ok, err := c.Get(ctx, key); err == nil && ok {
		return data, true, nil
	}
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, false, err
	}
	_ = c.Set(ctx, key, svg)
	return svg, false, nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces the root svg tag with one whose viewBox starts
// at the origin and whose size matches it.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
