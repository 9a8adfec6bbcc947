package transform

import (
	"fmt"
	"math/rand"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/flexdock/pkg/layout"
)

func build(t *testing.T, root layout.Record) *layout.Tree {
	t.Helper()
	tree, err := layout.FromDocument(layout.NewDocument(root))
	if err != nil {
		t.Fatalf("FromDocument: %v", err)
	}
	return tree
}

func ids(xs ...string) []layout.NodeID {
	out := make([]layout.NodeID, len(xs))
	for i, x := range xs {
		out[i] = layout.NodeID(x)
	}
	return out
}

// fiveGroups returns five horizontal groups g1..g5 ranked 1..5, each with
// one 300px tab t1..t5. Tab t2 carries prefs.
func fiveGroups(t *testing.T, prefs ...float64) *layout.Tree {
	t.Helper()
	root := layout.RowRecord("root", layout.Horizontal)
	for i, name := range []string{"1", "2", "3", "4", "5"} {
		var p []float64
		if name == "2" {
			p = prefs
		}
		root.Children = append(root.Children,
			layout.GroupRecord("g"+name, i+1, layout.TabRecord("t"+name, 300, 200, p...)))
	}
	return build(t, root)
}

func TestDecodePreference(t *testing.T) {
	tests := []struct {
		name   string
		prefs  []float64
		budget int
		want   Destination
	}{
		{"NegativeStaysBackground", []float64{1, -1.3}, 2, Destination{Major: 1, Minor: 3}},
		{"PositiveSelects", []float64{2.9}, 1, Destination{Major: 2, Minor: 9, Select: true}},
		{"NoMinorAppends", []float64{4}, 1, Destination{Major: 4, Select: true}},
		{"ShortVectorUndetermined", []float64{1.1}, 2, Destination{}},
		{"ZeroBudget", []float64{1.1}, 0, Destination{}},
		{"FractionOnly", []float64{-0.5}, 1, Destination{Minor: 5}},
		{"Nil", nil, 1, Destination{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DecodePreference(tt.prefs, tt.budget)
			if got != tt.want {
				t.Errorf("DecodePreference(%v, %d) = %+v, want %+v", tt.prefs, tt.budget, got, tt.want)
			}
		})
	}
	if DecodePreference([]float64{-0.5}, 1).Determined() {
		t.Error("major 0 reported as determined")
	}
}

func TestRanks(t *testing.T) {
	tree := build(t, layout.RowRecord("root", layout.Horizontal,
		layout.GroupRecord("a", 0, layout.TabRecord("ta", 1, 1)),
		layout.GroupRecord("b", 2, layout.TabRecord("tb", 1, 1)),
		layout.GroupRecord("c", 0, layout.TabRecord("tc", 1, 1)),
		layout.GroupRecord("d", 1, layout.TabRecord("td", 1, 1)),
	))
	want := []RankedGroup{
		{ID: "d", Rank: 1, Explicit: true},
		{ID: "b", Rank: 2, Explicit: true},
		{ID: "a", Rank: 3},
		{ID: "c", Rank: 4},
	}
	if diff := cmp.Diff(want, Ranks(tree)); diff != "" {
		t.Errorf("Ranks() mismatch (-want +got):\n%s", diff)
	}

	plain := build(t, layout.RowRecord("root", layout.Horizontal,
		layout.GroupRecord("x", 0, layout.TabRecord("tx", 1, 1)),
		layout.GroupRecord("y", 0, layout.TabRecord("ty", 1, 1)),
	))
	got := Ranks(plain)
	if got[0].ID != "x" || got[0].Rank != 1 || got[1].ID != "y" || got[1].Rank != 2 {
		t.Errorf("Ranks() without explicit ranks = %+v, want traversal order", got)
	}
}

func TestRemoveTabsetScenario(t *testing.T) {
	tree := fiveGroups(t, 1, -1.3)

	res, err := RemoveTabset(tree, 2)
	if err != nil {
		t.Fatalf("RemoveTabset: %v", err)
	}
	if err := tree.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if got := tree.Groups(); !slices.Equal(got, ids("g1", "g2")) {
		t.Fatalf("Groups() = %v, want [g1 g2]", got)
	}
	if got := tree.Children("g1"); !slices.Equal(got, ids("t1", "t2")) {
		t.Errorf("Children(g1) = %v, want [t1 t2]", got)
	}
	if sel, _ := tree.SelectedTab("g1"); sel != "t1" {
		t.Errorf("SelectedTab(g1) = %q, want t1 (t2 stays in the background)", sel)
	}
	if got := tree.Children("g2"); !slices.Equal(got, ids("t5", "t4", "t3")) {
		t.Errorf("Children(g2) = %v, want [t5 t4 t3]", got)
	}
	want := Result{Moves: 4, Deleted: 3, Changed: true}
	if res != want {
		t.Errorf("Result = %+v, want %+v", res, want)
	}
}

func TestRemoveTabsetIdempotent(t *testing.T) {
	for budget := 1; budget <= 5; budget++ {
		tree := fiveGroups(t, -1.1, 1.2, 3.1, 2, 5.1)
		if _, err := RemoveTabset(tree, budget); err != nil {
			t.Fatalf("budget %d: RemoveTabset: %v", budget, err)
		}
		before := tree.ToDocument()
		res, err := RemoveTabset(tree, budget)
		if err != nil {
			t.Fatalf("budget %d: second RemoveTabset: %v", budget, err)
		}
		if res.Moves != 0 || res.Changed {
			t.Errorf("budget %d: second pass = %+v, want no-op", budget, res)
		}
		if diff := cmp.Diff(before, tree.ToDocument()); diff != "" {
			t.Errorf("budget %d: second pass changed the tree:\n%s", budget, diff)
		}
		if got := len(tree.Groups()); got < 1 || got > budget {
			t.Errorf("budget %d: %d groups left", budget, got)
		}
	}
}

func TestRemoveTabsetCrossGroupMoves(t *testing.T) {
	tests := []struct {
		name   string
		root   layout.Record
		budget int
		want   map[string][]layout.NodeID
	}{
		{
			name: "SwapTwoGroups",
			root: layout.RowRecord("root", layout.Horizontal,
				layout.GroupRecord("g1", 1, layout.TabRecord("a", 1, 1, 0, 2.1)),
				layout.GroupRecord("g2", 2, layout.TabRecord("b", 1, 1, 0, 1.1)),
			),
			budget: 2,
			want:   map[string][]layout.NodeID{"g1": ids("b"), "g2": ids("a")},
		},
		{
			name: "SwapBesideUntouchedGroup",
			root: layout.RowRecord("root", layout.Horizontal,
				layout.GroupRecord("g1", 1, layout.TabRecord("a", 1, 1, 0, 0, 2.1)),
				layout.GroupRecord("g2", 2, layout.TabRecord("b", 1, 1, 0, 0, 1.1)),
				layout.GroupRecord("g3", 3, layout.TabRecord("c", 1, 1)),
			),
			budget: 3,
			want:   map[string][]layout.NodeID{"g1": ids("b"), "g2": ids("a"), "g3": ids("c")},
		},
		{
			name: "RotateThroughThreeGroups",
			root: layout.RowRecord("root", layout.Horizontal,
				layout.GroupRecord("g1", 1, layout.TabRecord("a", 1, 1, 0, 0, 2.1)),
				layout.GroupRecord("g2", 2, layout.TabRecord("b", 1, 1, 0, 0, 3.1)),
				layout.GroupRecord("g3", 3, layout.TabRecord("c", 1, 1, 0, 0, 1.1)),
			),
			budget: 3,
			want:   map[string][]layout.NodeID{"g1": ids("c"), "g2": ids("a"), "g3": ids("b")},
		},
		{
			name: "EmptiedGroupRefilled",
			root: layout.RowRecord("root", layout.Horizontal,
				layout.GroupRecord("g1", 1,
					layout.TabRecord("a", 1, 1, 0, 2.1),
					layout.TabRecord("b", 1, 1, 0, 2.2),
				),
				layout.GroupRecord("g2", 2, layout.TabRecord("c", 1, 1, 0, -1.1)),
			),
			budget: 2,
			want:   map[string][]layout.NodeID{"g1": ids("c"), "g2": ids("a", "b")},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree := build(t, tt.root)
			groups := len(tree.Groups())
			res, err := RemoveTabset(tree, tt.budget)
			if err != nil {
				t.Fatalf("RemoveTabset: %v", err)
			}
			if err := tree.Validate(); err != nil {
				t.Fatalf("Validate: %v", err)
			}
			if got := len(tree.Groups()); got != groups {
				t.Errorf("%d groups left, want %d", got, groups)
			}
			for g, want := range tt.want {
				if got := tree.Children(layout.NodeID(g)); !slices.Equal(got, want) {
					t.Errorf("Children(%s) = %v, want %v", g, got, want)
				}
			}
			if res.Deleted != 0 || !res.Changed {
				t.Errorf("Result = %+v, want moves without deletions", res)
			}

			res, err = RemoveTabset(tree, tt.budget)
			if err != nil {
				t.Fatal(err)
			}
			if res.Changed {
				t.Errorf("second pass = %+v, want no-op", res)
			}
		})
	}
}

// TestRemoveTabsetRandomTrees consolidates random rows of ranked groups and
// checks that every tab with a destination among the surviving groups ends
// up there, that only groups left without tabs disappear, and that a second
// pass changes nothing.
func TestRemoveTabsetRandomTrees(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 500; i++ {
		k := 2 + rng.Intn(4)
		budget := 1 + rng.Intn(k)
		root := layout.RowRecord("root", layout.Horizontal)
		home := make(map[layout.NodeID]layout.NodeID)
		prefs := make(map[layout.NodeID][]float64)
		for g := 1; g <= k; g++ {
			gid := fmt.Sprintf("g%d", g)
			group := layout.GroupRecord(gid, g)
			for j := 0; j < 1+rng.Intn(3); j++ {
				tid := fmt.Sprintf("t%d.%d", g, j)
				p := randomPreferences(rng, k)
				group.Children = append(group.Children, layout.TabRecord(tid, 100, 100, p...))
				home[layout.NodeID(tid)] = layout.NodeID(gid)
				prefs[layout.NodeID(tid)] = p
			}
			root.Children = append(root.Children, group)
		}
		tree := build(t, root)
		before := tree.ToDocument()

		if _, err := RemoveTabset(tree, budget); err != nil {
			t.Fatalf("case %d: RemoveTabset: %v", i, err)
		}
		if err := tree.Validate(); err != nil {
			t.Fatalf("case %d: Validate: %v", i, err)
		}

		kept := make(map[layout.NodeID]bool)
		for tab, p := range prefs {
			d := DecodePreference(p, budget)
			want, ok := layout.NodeID(""), false
			switch {
			case d.Determined() && d.Major <= budget:
				want, ok = layout.NodeID(fmt.Sprintf("g%d", d.Major)), true
			case budget == k:
				want, ok = home[tab], true
			}
			if !ok {
				continue
			}
			kept[want] = true
			if got, _ := tree.Parent(tab); got != want {
				t.Errorf("case %d: %s in %s, want %s (prefs %v, budget %d)\n%+v", i, tab, got, want, p, budget, before)
			}
		}
		if budget == k {
			for g := 1; g <= k; g++ {
				gid := layout.NodeID(fmt.Sprintf("g%d", g))
				if tree.Has(gid) != kept[gid] {
					t.Errorf("case %d: Has(%s) = %v, want %v", i, gid, tree.Has(gid), kept[gid])
				}
			}
		}

		after := tree.ToDocument()
		res, err := RemoveTabset(tree, budget)
		if err != nil {
			t.Fatalf("case %d: second RemoveTabset: %v", i, err)
		}
		if res.Changed {
			t.Errorf("case %d: second pass = %+v, want no-op", i, res)
		}
		if diff := cmp.Diff(after, tree.ToDocument()); diff != "" {
			t.Errorf("case %d: second pass changed the tree:\n%s", i, diff)
		}
	}
}

// randomPreferences returns a preference vector for budgets 1..k. Entry b-1
// is undetermined or names a rank in 1..b, with a position in 0..3 and a
// random sign.
func randomPreferences(rng *rand.Rand, k int) []float64 {
	p := make([]float64, k)
	for b := 1; b <= k; b++ {
		if rng.Intn(4) == 0 {
			continue
		}
		v := float64(1+rng.Intn(b)) + float64(rng.Intn(4))/10
		if rng.Intn(2) == 0 {
			v = -v
		}
		p[b-1] = v
	}
	return p
}

func TestRemoveTabsetFallbackToFirstSurvivor(t *testing.T) {
	tree := build(t, layout.RowRecord("root", layout.Horizontal,
		layout.GroupRecord("g1", 1, layout.TabRecord("a", 1, 1)),
		layout.GroupRecord("g2", 2, layout.TabRecord("b", 1, 1)),
		layout.GroupRecord("g3", 3, layout.TabRecord("c", 1, 1, 0, 3.0)),
	))
	if _, err := RemoveTabset(tree, 2); err != nil {
		t.Fatalf("RemoveTabset: %v", err)
	}
	// rank 3 is gone: c lands in the root's first group, not in g2
	if got := tree.Children("g1"); !slices.Equal(got, ids("a", "c")) {
		t.Errorf("Children(g1) = %v, want [a c]", got)
	}
	if sel, _ := tree.SelectedTab("g1"); sel != "c" {
		t.Errorf("SelectedTab(g1) = %q, want c", sel)
	}
}

func TestRemoveTabsetNoOp(t *testing.T) {
	single := build(t, layout.RowRecord("root", layout.Horizontal,
		layout.GroupRecord("g1", 0, layout.TabRecord("a", 1, 1))))
	if res, err := RemoveTabset(single, 1); err != nil || res.Changed {
		t.Errorf("single group: %+v, %v, want no-op", res, err)
	}
	tree := fiveGroups(t)
	if res, err := RemoveTabset(tree, 0); err != nil || res.Changed {
		t.Errorf("budget 0: %+v, %v, want no-op", res, err)
	}
	if got := len(tree.Groups()); got != 5 {
		t.Errorf("budget 0 left %d groups, want 5", got)
	}
}

func TestRemoveTabsetKeepsOneGroup(t *testing.T) {
	tree := fiveGroups(t)
	if _, err := RemoveTabset(tree, 1); err != nil {
		t.Fatal(err)
	}
	if got := tree.Groups(); !slices.Equal(got, ids("g1")) {
		t.Fatalf("Groups() = %v, want [g1]", got)
	}
	if got := len(tree.Tabs()); got != 5 {
		t.Errorf("%d tabs left, want 5", got)
	}
}

func TestReorderContestedSlot(t *testing.T) {
	tree := build(t, layout.RowRecord("root", layout.Horizontal,
		layout.GroupRecord("g1", 1, layout.TabRecord("x", 1, 1)),
		layout.GroupRecord("g2", 2,
			layout.TabRecord("a", 1, 1, 0, 1.1),
			layout.TabRecord("b", 1, 1, 0, 1.1),
		),
	))
	moves, err := Reorder(tree, 2)
	if err != nil {
		t.Fatalf("Reorder: %v", err)
	}
	if moves != 3 {
		t.Errorf("moves = %d, want 3", moves)
	}
	// b is processed last and takes the slot and the foreground
	if got := tree.Children("g1"); !slices.Equal(got, ids("b", "x", "a")) {
		t.Errorf("Children(g1) = %v, want [b x a]", got)
	}
	if sel, _ := tree.SelectedTab("g1"); sel != "b" {
		t.Errorf("SelectedTab(g1) = %q, want b", sel)
	}
	if tree.Has("g2") {
		t.Error("emptied group g2 still exists")
	}

	moves, err = Reorder(tree, 2)
	if err != nil {
		t.Fatal(err)
	}
	if moves != 0 {
		t.Errorf("second Reorder moves = %d, want 0", moves)
	}
}

func TestReorderLeavesUndetermined(t *testing.T) {
	tree := build(t, layout.RowRecord("root", layout.Horizontal,
		layout.GroupRecord("g1", 1, layout.TabRecord("a", 1, 1)),
		layout.GroupRecord("g2", 2,
			layout.TabRecord("b", 1, 1),
			layout.TabRecord("c", 1, 1, 9.1),
		),
	))
	before := tree.ToDocument()
	moves, err := Reorder(tree, 1)
	if err != nil {
		t.Fatal(err)
	}
	if moves != 0 {
		t.Errorf("moves = %d, want 0", moves)
	}
	if diff := cmp.Diff(before, tree.ToDocument()); diff != "" {
		t.Errorf("tree changed:\n%s", diff)
	}
}

func threeGroups(t *testing.T) *layout.Tree {
	return build(t, layout.RowRecord("root", layout.Horizontal,
		layout.GroupRecord("g1", 0, layout.TabRecord("a", 400, 100)),
		layout.GroupRecord("g2", 0, layout.TabRecord("b", 400, 200)),
		layout.GroupRecord("g3", 0, layout.TabRecord("c", 400, 300)),
	))
}

func TestCollapseZ(t *testing.T) {
	tree := threeGroups(t)
	if err := tree.SetActive("g2"); err != nil {
		t.Fatal(err)
	}
	snap, changed, err := CollapseZ(tree)
	if err != nil {
		t.Fatalf("CollapseZ: %v", err)
	}
	if !changed {
		t.Fatal("CollapseZ reported no change")
	}
	if got := tree.Groups(); !slices.Equal(got, ids("g2")) {
		t.Errorf("Groups() = %v, want [g2]", got)
	}
	if got := tree.Children("g2"); !slices.Equal(got, ids("b", "a", "c")) {
		t.Errorf("Children(g2) = %v, want [b a c]", got)
	}
	if sel, _ := tree.SelectedTab("g2"); sel != "b" {
		t.Errorf("SelectedTab(g2) = %q, want b", sel)
	}
	if snap.WidthNeeded != 400 || snap.HeightNeeded != 300 {
		t.Errorf("size = %dx%d, want 400x300", snap.WidthNeeded, snap.HeightNeeded)
	}

	if _, changed, err := CollapseZ(tree); err != nil || changed {
		t.Errorf("second CollapseZ = %v, %v, want no-op", changed, err)
	}
}

func TestCollapseY(t *testing.T) {
	tree := threeGroups(t)
	snap, changed, err := Collapse(tree, AxisY)
	if err != nil {
		t.Fatalf("CollapseY: %v", err)
	}
	if !changed {
		t.Fatal("CollapseY reported no change")
	}
	if got := tree.Orientation(tree.Root()); got != layout.Vertical {
		t.Errorf("root orientation = %v, want vertical", got)
	}
	if got := tree.Children(tree.Root()); !slices.Equal(got, ids("g1", "g2", "g3")) {
		t.Errorf("Children(root) = %v, want [g1 g2 g3]", got)
	}
	if snap.WidthNeeded != 400 || snap.HeightNeeded != 600 {
		t.Errorf("size = %dx%d, want 400x600", snap.WidthNeeded, snap.HeightNeeded)
	}
	if _, changed, err := CollapseY(tree); err != nil || changed {
		t.Errorf("second CollapseY = %v, %v, want no-op", changed, err)
	}
}

func TestCollapseYKeepsActiveGroup(t *testing.T) {
	tree := threeGroups(t)
	if err := tree.SetActive("g2"); err != nil {
		t.Fatal(err)
	}
	snap, changed, err := CollapseY(tree)
	if err != nil || !changed {
		t.Fatalf("CollapseY = %v, %v", changed, err)
	}
	// g2 keeps the top slot, the others stack under it in traversal order
	if got := tree.Children(tree.Root()); !slices.Equal(got, ids("g2", "g1", "g3")) {
		t.Errorf("Children(root) = %v, want [g2 g1 g3]", got)
	}
	if snap.ActiveGroup != "g2" || snap.HeightNeeded != 600 {
		t.Errorf("active %q, height %d; want g2, 600", snap.ActiveGroup, snap.HeightNeeded)
	}
}

func TestMoveTabset(t *testing.T) {
	tree := threeGroups(t)

	res, err := MoveTabset(tree)
	if err != nil || !res.Changed {
		t.Fatalf("first MoveTabset = %+v, %v", res, err)
	}
	children := tree.Children(tree.Root())
	if len(children) != 2 || children[1] != "g3" {
		t.Fatalf("Children(root) = %v, want [<row> g3]", children)
	}

	if res, err = MoveTabset(tree); err != nil || !res.Changed {
		t.Fatalf("second MoveTabset = %+v, %v", res, err)
	}
	if got := tree.Children(tree.Root()); !slices.Equal(got, ids("g1", "g3", "g2")) {
		t.Errorf("Children(root) = %v, want [g1 g3 g2]", got)
	}

	if res, err = MoveTabset(tree); err != nil || res.Changed {
		t.Errorf("third MoveTabset = %+v, %v, want no-op", res, err)
	}
}

func TestParseAxis(t *testing.T) {
	if a, err := ParseAxis("y"); err != nil || a != AxisY {
		t.Errorf("ParseAxis(y) = %q, %v", a, err)
	}
	if _, err := ParseAxis("x"); err == nil {
		t.Error("ParseAxis(x) succeeded")
	}
}
