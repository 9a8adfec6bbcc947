// Package migrate reconciles two independently edited copies of a layout.
//
// Tabs are matched by id. [Plan] diffs the tab sets of a source and a target
// tree and returns delete and add actions; [Apply] replays them on the
// target with the tree mutation primitives. [Migrate] does both on analysed
// snapshots.
//
// The stash uses it when the viewport grows back: edits made in the narrow
// layout (tabs opened or closed) are carried into the wider layout that is
// restored, while the wider layout keeps its own rows and groups.
package migrate
