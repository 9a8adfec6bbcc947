package boxes

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/flexdock/pkg/analysis"
	"github.com/matzehuels/flexdock/pkg/layout"
)

const (
	DefaultColumns = 80
	// minCols is the narrowest box drawn for a panel group, borders
	// included.
	minCols = 8
	marker  = "▸ "
)

var (
	colorCyan = lipgloss.Color("36")
	colorGray = lipgloss.Color("245")
	colorDim  = lipgloss.Color("240")

	styleGroup  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorGray)
	styleActive = lipgloss.NewStyle().Border(lipgloss.ThickBorder()).BorderForeground(colorCyan)
	styleHeader = lipgloss.NewStyle().Foreground(colorDim)
	styleTab    = lipgloss.NewStyle()
	styleSel    = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
)

// Options configures text rendering.
type Options struct {
	// Columns is the terminal width the layout is scaled to (default
	// [DefaultColumns]).
	Columns int
	// Viewport is the viewport width in pixels the columns stand for. When
	// zero, or narrower than the layout needs, the layout's needed width is
	// used.
	Viewport int
	// Detailed adds ranks and minimum sizes to the group headers.
	Detailed bool
}

// Render draws the snapshot's tree as nested boxes. Horizontal rows share
// their columns in proportion to what each child needs; vertical rows stack
// their children at full width. A layout that cannot be drawn in Columns
// (every group needs at least a few columns) comes out wider.
func Render(snap analysis.Snapshot, opts Options) string {
	if opts.Columns <= 0 {
		opts.Columns = DefaultColumns
	}
	if snap.Tree == nil || snap.GroupCount == 0 && len(snap.Tree.Children(snap.Tree.Root())) == 0 {
		return styleHeader.Render("(empty layout)")
	}
	cols := opts.Columns
	if opts.Viewport > snap.WidthNeeded && snap.WidthNeeded > 0 {
		cols = max(minCols, opts.Columns*snap.WidthNeeded/opts.Viewport)
	}
	r := renderer{tree: snap.Tree, opts: opts}
	return r.node(snap.Tree.Root(), cols)
}

type renderer struct {
	tree *layout.Tree
	opts Options
}

func (r *renderer) node(id layout.NodeID, cols int) string {
	n, _ := r.tree.Node(id)
	switch n.Kind {
	case layout.KindPanelGroup:
		return r.group(n, cols)
	case layout.KindTab:
		return styleTab.Render(truncate(n.Name, cols))
	}
	if len(n.Children) == 0 {
		return ""
	}
	if n.Orientation == layout.Vertical {
		parts := make([]string, len(n.Children))
		for i, c := range n.Children {
			parts[i] = r.node(c, cols)
		}
		return lipgloss.JoinVertical(lipgloss.Left, parts...)
	}
	widths := split(r.tree, n.Children, cols)
	parts := make([]string, len(n.Children))
	for i, c := range n.Children {
		parts[i] = r.node(c, widths[i])
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (r *renderer) group(n layout.Node, cols int) string {
	inner := max(cols, minCols) - 2
	lines := []string{styleHeader.Render(truncate(r.header(n), inner))}
	sel, _ := r.tree.SelectedTab(n.ID)
	for _, c := range n.Children {
		tab, _ := r.tree.Node(c)
		name := tab.Name
		if name == "" {
			name = string(tab.ID)
		}
		if c == sel {
			lines = append(lines, styleSel.Render(truncate(marker+name, inner)))
		} else {
			lines = append(lines, styleTab.Render(truncate("  "+name, inner)))
		}
	}
	style := styleGroup
	if n.Active {
		style = styleActive
	}
	return style.Width(inner).Render(strings.Join(lines, "\n"))
}

func (r *renderer) header(n layout.Node) string {
	h := "tabset"
	if n.Rank != nil {
		h = fmt.Sprintf("#%d", *n.Rank)
	}
	if r.opts.Detailed {
		w, ht := analysis.Measure(r.tree, n.ID)
		h = fmt.Sprintf("%s %dx%d", h, w, ht)
	}
	return h
}

// split divides cols among children in proportion to their needed widths,
// falling back to their weights when none needs anything. Every child gets
// at least minCols; the last child takes the rounding remainder.
func split(t *layout.Tree, children []layout.NodeID, cols int) []int {
	shares := make([]float64, len(children))
	total := 0.0
	for i, c := range children {
		w, _ := analysis.Measure(t, c)
		shares[i] = float64(w)
		total += shares[i]
	}
	if total == 0 {
		for i, c := range children {
			n, _ := t.Node(c)
			shares[i] = max(n.Weight, 1)
			total += shares[i]
		}
	}
	out := make([]int, len(children))
	used := 0
	for i := range children {
		if i == len(children)-1 {
			out[i] = max(minCols, cols-used)
			break
		}
		out[i] = max(minCols, int(float64(cols)*shares[i]/total))
		used += out[i]
	}
	return out
}

func truncate(s string, cols int) string {
	if cols <= 0 {
		return ""
	}
	rs := []rune(s)
	if len(rs) <= cols {
		return s
	}
	if cols == 1 {
		return "…"
	}
	return string(rs[:cols-1]) + "…"
}
