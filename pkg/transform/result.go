package transform

// Result reports what a consolidation step did to a tree.
type Result struct {
	// Moves counts tab and group moves, including selection changes made
	// by the reorder pass.
	Moves int

	// Deleted is the number of panel groups removed.
	Deleted int

	// Changed is false when the step was a no-op.
	Changed bool
}

func (r *Result) add(moves int) {
	r.Moves += moves
	if moves > 0 {
		r.Changed = true
	}
}
