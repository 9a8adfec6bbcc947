// Package analysis computes the minimum size a docking layout needs.
//
// [Analyse] walks a [layout.Tree] once and returns a [Snapshot]: the tree
// plus the width and height the root row needs, the active panel group, the
// lowest-priority panel group (the first one in traversal order) and the
// group count.
//
// Sizing is a bottom-up max/sum aggregation, not a constraint solver. A
// panel group takes the largest minimum of its tabs; a horizontal row sums
// its children's widths and takes the largest height; a vertical row sums
// heights and takes the largest width.
package analysis
