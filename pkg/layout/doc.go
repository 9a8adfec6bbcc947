// Package layout provides the docking layout tree used by flexdock: rows,
// panel groups and tabs stored as an arena of id-keyed nodes.
//
// # Overview
//
// A layout is a tree whose root is always a row. Rows hold rows and panel
// groups and lay them out along their orientation. Panel groups hold one or
// more tabs, one of which is in the foreground. Tabs are leaves carrying
// their minimum size, their panel preference vector and an opaque content
// descriptor.
//
// # Basic Usage
//
// Build a tree from a document with [FromDocument] or [ReadJSON], inspect it
// with [Tree.Visit], [Tree.Groups] and [Tree.Node], and change it only
// through the mutation primitives:
//
//	t, _ := layout.ImportJSON("layout.json")
//	t.MoveNode("editor", "side", layout.DockCenter, -1, true)
//	t.DeleteTab("scratch")
//
// Every primitive keeps the tree tidy. A panel group that loses its last
// tab is deleted, empty rows disappear, single-child rows are replaced by
// their child and rows of the same orientation are spliced together.
//
// # Identity
//
// Node ids are stable. [Tree.Clone], [Tree.ToDocument] and every primitive
// preserve them, which is what lets two independently edited copies of a
// layout be reconciled by id.
//
// # Observers
//
// [Tree.OnMutation] registers a listener that is called once after every
// applied primitive. Listeners run synchronously in registration order.
//
// # Concurrency
//
// A Tree is not safe for concurrent use. Callers that share a tree across
// goroutines must serialize access.
package layout
