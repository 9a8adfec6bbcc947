package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/flexdock/pkg/analysis"
	"github.com/matzehuels/flexdock/pkg/migrate"
)

// migrateCommand creates the migrate command.
func (c *CLI) migrateCommand() *cobra.Command {
	var (
		output string
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "migrate [source] [target]",
		Short: "Carry the tab set of one layout into another",
		Long: `Carry the tab set of one layout into another.

Tabs are matched by id. Tabs of target that source no longer has are
deleted; tabs of source that target lacks are added to the group with the
id of their source parent, or to target's last group. Target keeps its rows
and groups otherwise.

--dry-run prints the actions without applying them.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := readLayout(args[0])
			if err != nil {
				return err
			}
			target, err := readLayout(args[1])
			if err != nil {
				return err
			}
			if dryRun {
				c.printActions(migrate.Plan(source, target))
				return nil
			}
			src, err := analysis.Analyse(source, false)
			if err != nil {
				return err
			}
			dst, err := analysis.Analyse(target, false)
			if err != nil {
				return err
			}
			actions, err := migrate.Migrate(src, dst)
			if err != nil {
				return err
			}
			c.Logger.Info("migrated layout", "actions", len(actions))
			if output == "" {
				return c.writeLayout(target, "")
			}
			if err := c.writeLayout(target, output); err != nil {
				return err
			}
			c.printActions(actions)
			printFile(c.out, output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: JSON on stdout)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the actions only")

	return cmd
}

// printActions prints one line per migration action.
func (c *CLI) printActions(actions []migrate.Action) {
	if len(actions) == 0 {
		printInfo(c.out, "Tab sets already match")
		return
	}
	for _, a := range actions {
		printDetail(c.out, "%s", a)
	}
}
