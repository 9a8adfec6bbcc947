// Package stash keeps the stack of layouts an adaptive view moves through
// as its viewport changes width.
//
// # Overview
//
// A [Stash] holds analysed snapshots ([analysis.Snapshot]). The bottom is the
// template consolidated to the panel budget the view started with; every
// snapshot above it is strictly narrower than the one below:
//
//	[template 1200px] [merged 800px] [merged 400px]  <- current
//
// # Shrinking
//
// [Stash.Downsize] takes a private copy of the current layout and removes or
// stacks one panel group at a time until the layout fits. Each step that
// made the layout narrower is pushed:
//
//	s := stash.New(logger)
//	_ = s.LoadTemplate(ctx, tmpl, 5)
//	pushed, err := s.Downsize(ctx, 900, stash.DirectionMerge)
//
// # Growing
//
// [Stash.Upgrade] restores the snapshot below the top once the viewport is
// wide enough for it. Tabs opened or closed while the narrow layout was
// shown are carried over by id with [migrate.Migrate] before the narrow
// layout is dropped.
//
// [analysis.Snapshot]: github.com/matzehuels/flexdock/pkg/analysis.Snapshot
// [migrate.Migrate]: github.com/matzehuels/flexdock/pkg/migrate.Migrate
package stash
