package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/flexdock/pkg/analysis"
	"github.com/matzehuels/flexdock/pkg/layout"
	"github.com/matzehuels/flexdock/pkg/transform"
)

// analyseCommand creates the analyse command.
func (c *CLI) analyseCommand() *cobra.Command {
	var (
		writeBack bool
		output    string
	)

	cmd := &cobra.Command{
		Use:     "analyse [layout]",
		Aliases: []string{"analyze"},
		Short:   "Measure the minimum size a layout needs",
		Long: `Measure the minimum size a layout needs.

Rows sum their children's minimums along their axis and take the maximum
across it; panel groups need what their widest and tallest tab needs.

With --write-back the computed minimums are stored on every row and group;
combine it with -o to keep them.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := readLayout(args[0])
			if err != nil {
				return err
			}
			snap, err := analysis.Analyse(t, writeBack)
			if err != nil {
				return err
			}
			c.printSnapshot(snap)
			if output == "" {
				return nil
			}
			if err := c.writeLayout(t, output); err != nil {
				return err
			}
			printFile(c.out, output)
			printNextStep(c.out, "Render", "flexdock render "+output)
			return nil
		},
	}

	cmd.Flags().BoolVar(&writeBack, "write-back", false, "store computed minimums on rows and groups")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the (analysed) layout to this file")

	return cmd
}

// consolidateCommand creates the consolidate command.
func (c *CLI) consolidateCommand() *cobra.Command {
	var (
		maxPanels int
		output    string
	)

	cmd := &cobra.Command{
		Use:   "consolidate [layout]",
		Short: "Fold a layout into at most N panel groups",
		Long: `Fold a layout into at most N panel groups.

Groups are ranked by their "panel" config (traversal order breaks ties and
ranks the unranked). Every group ranked above N is removed and its tabs move
to the group their panelPreferences name for budget N, or to the first
surviving group. A reorder pass then places every tab at its preferred slot.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := readLayout(args[0])
			if err != nil {
				return err
			}
			prog := newProgress(c.Logger)
			res, err := transform.RemoveTabset(t, maxPanels)
			if err != nil {
				return err
			}
			prog.done("consolidated layout", "max_panels", maxPanels, "moves", res.Moves, "deleted", res.Deleted)
			return c.finish(t, output, res)
		},
	}

	cmd.Flags().IntVarP(&maxPanels, "max-panels", "n", 1, "panel budget")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: JSON on stdout)")

	return cmd
}

// stackCommand creates the stack command.
func (c *CLI) stackCommand() *cobra.Command {
	var (
		axisFlag string
		move     bool
		output   string
	)

	cmd := &cobra.Command{
		Use:   "stack [layout]",
		Short: "Collapse a layout along the z or y axis",
		Long: `Collapse a layout along the z or y axis.

--axis z merges every tab into the target group (the active group, or the
first group when none is active). --axis y moves every other group to the
bottom of the root, stacking them at full width.

--move instead moves only the lowest-priority group that is not yet stacked,
one step of what a narrowing viewport does in stack direction.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := readLayout(args[0])
			if err != nil {
				return err
			}
			if move {
				res, err := transform.MoveTabset(t)
				if err != nil {
					return err
				}
				return c.finish(t, output, res)
			}
			axis, err := transform.ParseAxis(axisFlag)
			if err != nil {
				return err
			}
			snap, changed, err := transform.Collapse(t, axis)
			if err != nil {
				return err
			}
			c.Logger.Debug("collapsed layout", "axis", axis, "changed", changed, "width", snap.WidthNeeded)
			return c.finish(t, output, transform.Result{Changed: changed})
		},
	}

	cmd.Flags().StringVar(&axisFlag, "axis", string(transform.AxisZ), "collapse axis: z (merge tabs), y (stack groups)")
	cmd.Flags().BoolVar(&move, "move", false, "stack one group instead of collapsing the whole layout")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: JSON on stdout)")

	return cmd
}

// finish writes a transformed layout. Without an output file the layout
// JSON is the only thing written to the output.
func (c *CLI) finish(t *layout.Tree, output string, res transform.Result) error {
	if output == "" {
		return c.writeLayout(t, "")
	}
	if err := c.writeLayout(t, output); err != nil {
		return err
	}
	if !res.Changed {
		printInfo(c.out, "Layout unchanged")
	} else {
		printSuccess(c.out, "Layout transformed")
		printDetail(c.out, "%d moves · %d groups removed", res.Moves, res.Deleted)
	}
	printFile(c.out, output)
	printNextStep(c.out, "Inspect", "flexdock analyse "+output)
	return nil
}

// printSnapshot prints the aggregates of an analysed layout.
func (c *CLI) printSnapshot(snap analysis.Snapshot) {
	printKeyValue(c.out, "needs", size(snap.WidthNeeded, snap.HeightNeeded))
	printKeyValue(c.out, "groups", strconv.Itoa(snap.GroupCount))
	printKeyValue(c.out, "tabs", strconv.Itoa(snap.TabCount))
	printKeyValue(c.out, "active", orNone(snap.ActiveGroup))
	printKeyValue(c.out, "lowest", orNone(snap.LowestPriorityGroup))
}

func orNone(id layout.NodeID) string {
	if id == "" {
		return "none"
	}
	return string(id)
}
