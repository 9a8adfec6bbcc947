// Package pkg provides the core libraries of flexdock, an adaptive docking
// layout engine.
//
// # Overview
//
// flexdock keeps a docking layout (rows of panel groups holding tabs) usable
// across viewport sizes. When the viewport narrows, the layout is folded into
// fewer panels; when it widens again, the wider layouts are restored with the
// user's edits carried over. The pkg directory is organized into these areas:
//
//  1. [layout] - The layout tree, its mutation primitives and notifications
//  2. [analysis] - Size requirements and panel ranking
//  3. [transform] - Tabset removal, moves and collapse along an axis
//  4. [migrate] - Carrying tabs between two layouts of the same content
//  5. [stash] - The stack of wider layouts and the downsize/upgrade steps
//  6. [session] - The reaction loop over viewport changes and edits
//
// # Architecture
//
// The typical data flow through flexdock:
//
//	Template (JSON/TOML/YAML)
//	         ↓
//	    [template] package (load, fit to the first viewport)
//	         ↓
//	    [session] package (resize, edit, debounce)
//	         ↓
//	    [stash] package (downsize via [transform], upgrade via [migrate])
//	         ↓
//	    [analysis] package (snapshot: sizes, ranks, overflow)
//
// # Quick Start
//
//	import (
//	    "github.com/matzehuels/flexdock/pkg/session"
//	    "github.com/matzehuels/flexdock/pkg/template"
//	)
//
//	sess, err := session.New(session.Config{Template: template.Default()})
//	if err != nil {
//	    return err
//	}
//	defer sess.Close()
//	if err := sess.Start(ctx, 1700, 900); err != nil {
//	    return err
//	}
//	overflow, err := sess.Resize(ctx, 900, 900)
//
// # Supporting Packages
//
// [content] resolves tab ids to the content shown in them. [render] draws
// layouts as terminal boxes or Graphviz DOT/SVG. [cache] stores rendered SVG
// on disk. [observability] exposes hooks for metrics, and [errors] carries
// the error codes surfaced over HTTP. [buildinfo] holds version metadata.
//
// [layout]: github.com/matzehuels/flexdock/pkg/layout
// [analysis]: github.com/matzehuels/flexdock/pkg/analysis
// [transform]: github.com/matzehuels/flexdock/pkg/transform
// [migrate]: github.com/matzehuels/flexdock/pkg/migrate
// [stash]: github.com/matzehuels/flexdock/pkg/stash
// [session]: github.com/matzehuels/flexdock/pkg/session
// [template]: github.com/matzehuels/flexdock/pkg/template
// [content]: github.com/matzehuels/flexdock/pkg/content
// [render]: github.com/matzehuels/flexdock/pkg/render
// [cache]: github.com/matzehuels/flexdock/pkg/cache
// [observability]: github.com/matzehuels/flexdock/pkg/observability
// [errors]: github.com/matzehuels/flexdock/pkg/errors
// [buildinfo]: github.com/matzehuels/flexdock/pkg/buildinfo
package pkg
