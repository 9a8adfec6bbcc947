// Package content maps a tab's component descriptor to the content a shell
// renders inside it.
//
// The layout engine treats tab configuration as opaque. A [Registry] gives
// it meaning at the edge: each component name ("text", "pdf", "image",
// "123check" in [Default]) is bound to a [Factory] that reads the tab's
// "text" config value.
//
//	reg := content.Default()
//	reg.Register("chart", myChart)
//	c, err := reg.Resolve(tab)
package content
