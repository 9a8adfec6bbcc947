// Package render groups the renderers for dock layouts.
//
// # Overview
//
// Two subpackages draw a layout tree, each for a different audience:
//
//   - [boxes]: the layout itself as nested lipgloss boxes, scaled to a
//     terminal width. Used by the render command and the interactive preview.
//   - [dot]: the tree structure as Graphviz DOT, optionally rendered to SVG
//     through go-graphviz. Used by the render command and the HTTP server.
//
// # Tree Rendering
//
// DOT output draws rows as ellipses, panel groups as boxes (filled when
// active) and tabs as notes (bold when in the foreground):
//
//	src := dot.ToDOT(tree, dot.Options{Detailed: true})
//	svg, err := dot.RenderSVG(ctx, src)
//
// SVG rendering is the expensive step, so callers with a [cache.Cache] use
// [dot.RenderSVGCached], keyed by the DOT source.
//
// # Terminal Rendering
//
// [boxes.Render] takes an analysis snapshot rather than a bare tree so it can
// mark the active group and report the space the layout needs:
//
//	snap, _ := analysis.Analyse(tree, false)
//	fmt.Println(boxes.Render(snap, boxes.Options{Columns: 100}))
//
// [boxes]: github.com/matzehuels/flexdock/pkg/render/boxes
// [dot]: github.com/matzehuels/flexdock/pkg/render/dot
// [boxes.Render]: github.com/matzehuels/flexdock/pkg/render/boxes#Render
// [dot.RenderSVGCached]: github.com/matzehuels/flexdock/pkg/render/dot#RenderSVGCached
// [cache.Cache]: github.com/matzehuels/flexdock/pkg/cache#Cache
package render
