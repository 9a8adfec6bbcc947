package boxes

import (
	"slices"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/flexdock/pkg/analysis"
	"github.com/matzehuels/flexdock/pkg/layout"
)

func snapshot(t *testing.T, root layout.Record) analysis.Snapshot {
	t.Helper()
	snap, err := analysis.Analyse(layout.MustFromDocument(layout.NewDocument(root)), false)
	if err != nil {
		t.Fatal(err)
	}
	return snap
}

func maxWidth(s string) int {
	w := 0
	for _, line := range strings.Split(s, "\n") {
		w = max(w, lipgloss.Width(line))
	}
	return w
}

func TestRender(t *testing.T) {
	snap := snapshot(t, layout.RowRecord("root", layout.Horizontal,
		layout.GroupRecord("g1", 1, layout.TabRecord("editor", 400, 100)),
		layout.GroupRecord("g2", 2, layout.TabRecord("preview", 400, 100), layout.TabRecord("console", 400, 100)),
	))
	out := Render(snap, Options{Columns: 60, Detailed: true})
	for _, want := range []string{"#1 400x100", "#2 400x100", marker + "editor", marker + "preview", "  console"} {
		if !strings.Contains(out, want) {
			t.Errorf("Render() missing %q:\n%s", want, out)
		}
	}
	if w := maxWidth(out); w != 60 {
		t.Errorf("rendered width = %d, want 60:\n%s", w, out)
	}
}

func TestRenderScalesToViewport(t *testing.T) {
	snap := snapshot(t, layout.RowRecord("root", layout.Horizontal,
		layout.GroupRecord("g1", 1, layout.TabRecord("a", 400, 100)),
	))
	out := Render(snap, Options{Columns: 80, Viewport: 1600})
	if w := maxWidth(out); w != 20 {
		t.Errorf("400px of 1600px in 80 columns = %d columns, want 20", w)
	}
}

func TestRenderVertical(t *testing.T) {
	snap := snapshot(t, layout.RowRecord("root", layout.Vertical,
		layout.GroupRecord("top", 0, layout.TabRecord("a", 100, 100)),
		layout.GroupRecord("bottom", 0, layout.TabRecord("b", 100, 100)),
	))
	out := Render(snap, Options{Columns: 30})
	lines := strings.Split(out, "\n")
	ia := slices.IndexFunc(lines, func(l string) bool { return strings.Contains(l, "a") && strings.Contains(l, marker) })
	ib := slices.IndexFunc(lines, func(l string) bool { return strings.Contains(l, "b") && strings.Contains(l, marker) })
	if ia < 0 || ib < 0 || ia >= ib {
		t.Errorf("groups not stacked top to bottom:\n%s", out)
	}
	if w := maxWidth(out); w != 30 {
		t.Errorf("rendered width = %d, want 30", w)
	}
}

func TestRenderEmpty(t *testing.T) {
	snap := snapshot(t, layout.RowRecord("root", layout.Horizontal))
	if out := Render(snap, Options{}); !strings.Contains(out, "empty") {
		t.Errorf("Render(empty) = %q", out)
	}
}

func TestSplit(t *testing.T) {
	tree := layout.MustFromDocument(layout.NewDocument(layout.RowRecord("root", layout.Horizontal,
		layout.GroupRecord("g1", 0, layout.TabRecord("a", 300, 10)),
		layout.GroupRecord("g2", 0, layout.TabRecord("b", 100, 10)),
	)))
	if got := split(tree, tree.Children("root"), 40); !slices.Equal(got, []int{30, 10}) {
		t.Errorf("split() = %v, want [30 10]", got)
	}
	if got := split(tree, tree.Children("root"), 10); !slices.Equal(got, []int{minCols, minCols}) {
		t.Errorf("split() narrow = %v, want [8 8]", got)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		cols int
		want string
	}{
		{"editor", 10, "editor"},
		{"editor", 4, "edi…"},
		{"editor", 1, "…"},
		{"editor", 0, ""},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.cols); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.cols, got, tt.want)
		}
	}
}
