package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/flexdock/pkg/analysis"
	"github.com/matzehuels/flexdock/pkg/render/boxes"
	"github.com/matzehuels/flexdock/pkg/render/dot"
)

const (
	formatDOT  = "dot"  // Graphviz source
	formatSVG  = "svg"  // Graphviz rendered to SVG
	formatText = "text" // lipgloss boxes for the terminal
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output   string // output file path; stdout when empty
	format   string // dot, svg or text
	detailed bool   // show ids, minimum sizes and preferences
	columns  int    // terminal columns for text
	viewport int    // viewport width in pixels the columns stand for (text)
	noCache  bool   // render svg without the render cache
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render [layout]",
		Short: "Render a layout as DOT, SVG or terminal boxes",
		Long: `Render a layout as DOT, SVG or terminal boxes.

dot and svg draw the tree: rows as ellipses, panel groups as boxes (filled
when active) and tabs as notes (bold when in the foreground). text draws the
layout itself, scaled to --columns.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.columns == 0 {
				opts.columns = c.cfg.Render.Columns
			}
			if err := validateFormat(opts.format); err != nil {
				return err
			}
			t, err := readLayout(args[0])
			if err != nil {
				return err
			}
			snap, err := analysis.Analyse(t, false)
			if err != nil {
				return err
			}

			var data []byte
			switch opts.format {
			case formatText:
				data = []byte(boxes.Render(snap, boxes.Options{
					Columns:  opts.columns,
					Viewport: opts.viewport,
					Detailed: opts.detailed,
				}) + "\n")
			case formatSVG:
				rc := c.newCache(opts.noCache)
				defer rc.Close()
				prog := newProgress(c.Logger)
				var hit bool
				data, hit, err = dot.RenderSVGCached(cmd.Context(), rc, dot.ToDOT(t, dot.Options{Detailed: opts.detailed}))
				if err != nil {
					return err
				}
				prog.done("rendered svg", "bytes", len(data), "cached", hit)
			default:
				data = []byte(dot.ToDOT(t, dot.Options{Detailed: opts.detailed}))
			}

			if opts.output == "" {
				_, err := c.out.Write(data)
				return err
			}
			if err := os.WriteFile(opts.output, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", opts.output, err)
			}
			printSuccess(c.out, "Rendered %s", opts.format)
			printFile(c.out, opts.output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", formatText, "output format: text, dot, svg")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show ids, minimum sizes and preferences")
	cmd.Flags().IntVar(&opts.columns, "columns", 0, "terminal columns for text (default from config)")
	cmd.Flags().IntVar(&opts.viewport, "viewport", 0, "viewport width the columns stand for (text)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the svg render cache")

	return cmd
}

func validateFormat(f string) error {
	switch f {
	case formatDOT, formatSVG, formatText:
		return nil
	}
	return fmt.Errorf("invalid format: %s (must be %s)", f, strings.Join([]string{formatText, formatDOT, formatSVG}, ", "))
}
