package stash

import (
	"context"
	"io"
	"slices"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	ferrors "github.com/matzehuels/flexdock/pkg/errors"
	"github.com/matzehuels/flexdock/pkg/layout"
	"github.com/matzehuels/flexdock/pkg/observability"
)

func quiet() *log.Logger { return log.New(io.Discard) }

// three groups of one 400px tab each, 1200px wide
func template(t *testing.T) *layout.Tree {
	t.Helper()
	tree, err := layout.FromDocument(layout.NewDocument(layout.RowRecord("root", layout.Horizontal,
		layout.GroupRecord("g1", 1, layout.TabRecord("a", 400, 100)),
		layout.GroupRecord("g2", 2, layout.TabRecord("b", 400, 100)),
		layout.GroupRecord("g3", 3, layout.TabRecord("c", 400, 100)),
	)))
	if err != nil {
		t.Fatalf("FromDocument: %v", err)
	}
	return tree
}

func loaded(t *testing.T) *Stash {
	t.Helper()
	s := New(quiet())
	if err := s.LoadTemplate(context.Background(), template(t), 3); err != nil {
		t.Fatalf("LoadTemplate: %v", err)
	}
	return s
}

func TestParseDirection(t *testing.T) {
	tests := []struct {
		in      string
		want    Direction
		wantErr bool
	}{
		{"merge", DirectionMerge, false},
		{"STACK", DirectionStack, false},
		{"sideways", "", true},
	}
	for _, tt := range tests {
		got, err := ParseDirection(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseDirection(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseDirection(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
	if _, err := ParseDirection("x"); !ferrors.Is(err, ferrors.ErrCodeInvalidDirection) {
		t.Errorf("error code = %v, want INVALID_DIRECTION", ferrors.GetCode(err))
	}
}

func TestLoadTemplate(t *testing.T) {
	tmpl := template(t)
	s := New(quiet())
	if err := s.LoadTemplate(context.Background(), tmpl, 2); err != nil {
		t.Fatalf("LoadTemplate: %v", err)
	}
	cur, ok := s.Current()
	if !ok || s.Depth() != 1 {
		t.Fatalf("Depth() = %d, want 1", s.Depth())
	}
	if cur.GroupCount != 2 || cur.WidthNeeded != 800 {
		t.Errorf("current = %d groups %dpx, want 2 groups 800px", cur.GroupCount, cur.WidthNeeded)
	}
	if got := len(tmpl.Groups()); got != 3 {
		t.Errorf("template modified: %d groups", got)
	}
	if cur.Tree == tmpl {
		t.Error("stash shares the template tree")
	}

	if err := s.LoadTemplate(context.Background(), tmpl, 0); !ferrors.Is(err, ferrors.ErrCodeInvalidInput) {
		t.Errorf("LoadTemplate(0) error = %v, want INVALID_INPUT", err)
	}
	if s.Depth() != 1 {
		t.Errorf("failed load changed the stash: depth %d", s.Depth())
	}
}

func TestDownsizeMerge(t *testing.T) {
	s := loaded(t)
	pushed, err := s.Downsize(context.Background(), 900, DirectionMerge)
	if err != nil {
		t.Fatalf("Downsize: %v", err)
	}
	if pushed != 1 {
		t.Errorf("pushed = %d, want 1", pushed)
	}
	if got := s.Widths(); !slices.Equal(got, []int{1200, 800}) {
		t.Errorf("Widths() = %v, want [1200 800]", got)
	}
	cur, _ := s.Current()
	if !cur.Fits(900) {
		t.Errorf("current needs %dpx, does not fit 900", cur.WidthNeeded)
	}
	if p, _ := cur.Tree.Parent("c"); p != "g2" {
		t.Errorf("Parent(c) = %q, want g2", p)
	}
	prev, _ := s.Previous()
	if prev.GroupCount != 3 {
		t.Errorf("previous snapshot was modified: %d groups", prev.GroupCount)
	}
}

func TestDownsizeMergeCannotFit(t *testing.T) {
	s := loaded(t)
	pushed, err := s.Downsize(context.Background(), 100, DirectionMerge)
	if err != nil {
		t.Fatalf("Downsize: %v", err)
	}
	if pushed != 2 {
		t.Errorf("pushed = %d, want 2", pushed)
	}
	if got := s.Widths(); !slices.Equal(got, []int{1200, 800, 400}) {
		t.Errorf("Widths() = %v, want [1200 800 400]", got)
	}
	cur, _ := s.Current()
	if cur.Fits(100) {
		t.Error("400px layout reported as fitting 100px")
	}
}

func TestDownsizeSkipsStepsThatDoNotNarrow(t *testing.T) {
	// g1 and g2 are stacked, so merging g2 into g1 keeps the width at 400
	tmpl, err := layout.FromDocument(layout.NewDocument(layout.RowRecord("root", layout.Horizontal,
		layout.RowRecord("col", layout.Vertical,
			layout.GroupRecord("g1", 1, layout.TabRecord("a", 400, 100)),
			layout.GroupRecord("g2", 2, layout.TabRecord("b", 400, 100)),
		),
		layout.GroupRecord("g3", 3, layout.TabRecord("c", 400, 100)),
	)))
	if err != nil {
		t.Fatal(err)
	}
	s := New(quiet())
	if err := s.LoadTemplate(context.Background(), tmpl, 3); err != nil {
		t.Fatal(err)
	}

	pushed, err := s.Downsize(context.Background(), 300, DirectionMerge)
	if err != nil {
		t.Fatalf("Downsize: %v", err)
	}
	if pushed != 1 {
		t.Errorf("pushed = %d, want 1", pushed)
	}
	if got := s.Widths(); !slices.Equal(got, []int{800, 400}) {
		t.Errorf("Widths() = %v, want [800 400]", got)
	}
	if cur, _ := s.Current(); cur.GroupCount != 2 {
		t.Errorf("top has %d groups, want the first 400px layout with 2", cur.GroupCount)
	}
}

func TestDownsizeStack(t *testing.T) {
	s := loaded(t)
	pushed, err := s.Downsize(context.Background(), 900, DirectionStack)
	if err != nil {
		t.Fatalf("Downsize: %v", err)
	}
	if pushed != 1 {
		t.Errorf("pushed = %d, want 1", pushed)
	}
	cur, _ := s.Current()
	if cur.WidthNeeded != 800 || cur.HeightNeeded != 200 {
		t.Errorf("current = %dx%d, want 800x200", cur.WidthNeeded, cur.HeightNeeded)
	}
	if o := cur.Tree.Orientation(cur.Tree.Root()); o != layout.Vertical {
		t.Errorf("root orientation = %v, want vertical", o)
	}
	if cur.GroupCount != 3 {
		t.Errorf("stacking removed groups: %d", cur.GroupCount)
	}
}

func TestDownsizeAlreadyFits(t *testing.T) {
	s := loaded(t)
	pushed, err := s.Downsize(context.Background(), 1500, DirectionMerge)
	if err != nil || pushed != 0 || s.Depth() != 1 {
		t.Errorf("Downsize(1500) = %d, %v; depth %d", pushed, err, s.Depth())
	}
}

func TestUpgrade(t *testing.T) {
	ctx := context.Background()
	s := loaded(t)
	if _, err := s.Downsize(ctx, 900, DirectionMerge); err != nil {
		t.Fatal(err)
	}

	// too narrow for the stashed layout
	if ok, err := s.Upgrade(ctx, 1000); ok || err != nil {
		t.Fatalf("Upgrade(1000) = %v, %v; want false, nil", ok, err)
	}

	// edit the narrow layout
	cur, _ := s.Current()
	if _, err := cur.Tree.AddNode(layout.TabRecord("d", 300, 100), "g1", layout.DockCenter, -1, true); err != nil {
		t.Fatal(err)
	}

	ok, err := s.Upgrade(ctx, 1300)
	if err != nil || !ok {
		t.Fatalf("Upgrade(1300) = %v, %v; want true, nil", ok, err)
	}
	if s.Depth() != 1 {
		t.Errorf("Depth() = %d, want 1", s.Depth())
	}
	wide, _ := s.Current()
	if got := wide.Tree.Children("g1"); !slices.Equal(got, []layout.NodeID{"a", "d"}) {
		t.Errorf("Children(g1) = %v, want [a d]", got)
	}
	if wide.GroupCount != 3 || wide.TabCount != 4 || wide.WidthNeeded != 1200 {
		t.Errorf("restored = %d groups %d tabs %dpx, want 3 4 1200", wide.GroupCount, wide.TabCount, wide.WidthNeeded)
	}

	// nothing left to restore
	if ok, err := s.Upgrade(ctx, 5000); ok || err != nil {
		t.Errorf("Upgrade at depth 1 = %v, %v; want false, nil", ok, err)
	}
}

func TestEmptyStash(t *testing.T) {
	s := New(nil)
	if _, err := s.Downsize(context.Background(), 100, DirectionMerge); !ferrors.Is(err, ferrors.ErrCodeStashPrecondition) {
		t.Errorf("Downsize on empty stash error = %v", err)
	}
	if _, err := s.Refresh(false); !ferrors.Is(err, ferrors.ErrCodeStashPrecondition) {
		t.Errorf("Refresh on empty stash error = %v", err)
	}
	if ok, err := s.Upgrade(context.Background(), 100); ok || err != nil {
		t.Errorf("Upgrade on empty stash = %v, %v", ok, err)
	}
	if _, ok := s.Current(); ok {
		t.Error("Current() on empty stash reported ok")
	}
}

func TestRefresh(t *testing.T) {
	s := loaded(t)
	cur, _ := s.Current()
	if err := cur.Tree.UpdateNodeAttributes("a", layout.Attrs{MinWidth: layout.IntAttr(600)}); err != nil {
		t.Fatal(err)
	}
	snap, err := s.Refresh(true)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if snap.WidthNeeded != 1400 {
		t.Errorf("WidthNeeded = %d, want 1400", snap.WidthNeeded)
	}
	if got := s.Widths(); !slices.Equal(got, []int{1400}) {
		t.Errorf("Widths() = %v, want [1400]", got)
	}
}

func TestFitTemplate(t *testing.T) {
	tmpl := template(t)
	tests := []struct {
		width int
		want  int
	}{
		{1300, 3},
		{1200, 3},
		{900, 2},
		{500, 1},
		{100, 1},
	}
	for _, tt := range tests {
		got, err := FitTemplate(tmpl, tt.width)
		if err != nil {
			t.Fatalf("FitTemplate(%d): %v", tt.width, err)
		}
		if got != tt.want {
			t.Errorf("FitTemplate(%d) = %d, want %d", tt.width, got, tt.want)
		}
	}
	if n := len(tmpl.Groups()); n != 3 {
		t.Errorf("FitTemplate modified the template: %d groups", n)
	}
}

type recordingHooks struct {
	observability.NoopStashHooks
	downsizes []int
	depths    []int
}

func (r *recordingHooks) OnDownsize(_ context.Context, _ string, _ int, pushed int, _ bool, _ time.Duration) {
	r.downsizes = append(r.downsizes, pushed)
}

func (r *recordingHooks) OnDepth(_ context.Context, depth int) {
	r.depths = append(r.depths, depth)
}

func TestHooks(t *testing.T) {
	rec := &recordingHooks{}
	observability.SetStashHooks(rec)
	t.Cleanup(observability.Reset)

	s := loaded(t)
	if _, err := s.Downsize(context.Background(), 100, DirectionMerge); err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(rec.downsizes, []int{2}) {
		t.Errorf("OnDownsize pushed = %v, want [2]", rec.downsizes)
	}
	if !slices.Equal(rec.depths, []int{1, 3}) {
		t.Errorf("OnDepth = %v, want [1 3]", rec.depths)
	}
}
