// Package transform reshapes a docking layout when space runs out.
//
// # Collapse strategies
//
// [CollapseZ] merges every tab into one panel group (the active group, or
// the first group when none is active). [CollapseY] keeps the panel groups
// but stacks them vertically at full width under the root. Both are no-ops
// once there is nothing left to move.
//
// # Consolidation
//
// [RemoveTabset] reduces the number of panel groups to a budget. Groups are
// ordered by [Ranks]; the lowest ranks survive. Tabs of removed groups are
// re-homed by their panel preference vector: the entry for the budget is a
// signed decimal whose integer part names the destination rank, whose first
// fractional digit is the position in that group and whose sign says
// whether the tab comes to the foreground. [DecodePreference] does the
// decoding.
//
// After the deletions a global [Reorder] pass re-decodes every tab for the
// final budget, so the result does not depend on deletion order. Running
// consolidation a second time with the same budget moves nothing.
//
// [MoveTabset] is the stacking counterpart: one call moves the highest-ranked
// group that is not yet stacked to the bottom of the root.
package transform
