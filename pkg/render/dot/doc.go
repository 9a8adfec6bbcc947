// Package dot renders layout trees as Graphviz diagrams.
//
// # Usage
//
// Convert a tree to DOT, then render to SVG:
//
//	src := dot.ToDOT(tree, dot.Options{Detailed: true})
//	svg, err := dot.RenderSVG(ctx, src)
//
// The DOT source can also be saved and processed with external Graphviz
// tools.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering; no Graphviz installation is needed.
package dot
