package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/flexdock/pkg/analysis"
	"github.com/matzehuels/flexdock/pkg/stash"
	"github.com/matzehuels/flexdock/pkg/template"
	"github.com/matzehuels/flexdock/pkg/transform"
)

// templateCommand creates the template command.
func (c *CLI) templateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "template",
		Short: "Inspect the canonical layout template",
	}

	cmd.AddCommand(c.templateShowCommand())
	cmd.AddCommand(c.templateFitCommand())

	return cmd
}

// templateShowCommand creates the "template show" subcommand.
func (c *CLI) templateShowCommand() *cobra.Command {
	var (
		path   string
		format string
	)

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the template (built-in unless configured)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := template.ParseFormat(format)
			if err != nil {
				return err
			}
			t, err := c.templateTree(path)
			if err != nil {
				return err
			}
			return template.Encode(c.out, t, f)
		},
	}

	cmd.Flags().StringVarP(&path, "template", "t", "", "template file (default from config, else built-in)")
	cmd.Flags().StringVarP(&format, "format", "f", string(template.FormatJSON), "output format: json, toml, yaml")

	return cmd
}

// templateFitCommand creates the "template fit" subcommand.
func (c *CLI) templateFitCommand() *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "fit [width]",
		Short: "Show the largest panel budget that fits a viewport width",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			width, err := strconv.Atoi(args[0])
			if err != nil || width <= 0 {
				return fmt.Errorf("invalid width %q", args[0])
			}
			t, err := c.templateTree(path)
			if err != nil {
				return err
			}
			budget, err := stash.FitTemplate(t, width)
			if err != nil {
				return err
			}
			work := t.Clone()
			if _, err := transform.RemoveTabset(work, budget); err != nil {
				return err
			}
			snap, err := analysis.Analyse(work, false)
			if err != nil {
				return err
			}
			printKeyValue(c.out, "max panels", StyleNumber.Render(strconv.Itoa(budget)))
			c.printSnapshot(snap)
			if !snap.Fits(width) {
				printWarning(c.out, "Even one panel needs %d px", snap.WidthNeeded)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&path, "template", "t", "", "template file (default from config, else built-in)")

	return cmd
}
