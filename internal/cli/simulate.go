package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/flexdock/pkg/session"
)

// simulateCommand creates the simulate command.
func (c *CLI) simulateCommand() *cobra.Command {
	var (
		widthsFlag   string
		height       int
		direction    string
		templatePath string
	)

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Drive a session through a sequence of viewport widths",
		Long: `Drive a session through a sequence of viewport widths.

The session starts at the first width with the template folded to the
largest panel budget that fits, then reacts to every following width the
way an embedding shell would: narrowing pushes narrower layouts onto the
stash, widening migrates back into the wider ones.`,
		Example: `  flexdock simulate --widths 2600,1700,1200,900,2600
  flexdock simulate --widths 1700,600 --direction stack`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := parseWidths(widthsFlag)
			if err != nil {
				return err
			}
			sess, err := c.newSession(templatePath, direction)
			if err != nil {
				return err
			}
			defer sess.Close()
			return c.runSimulate(cmd.Context(), sess, ws, height)
		},
	}

	cmd.Flags().StringVar(&widthsFlag, "widths", "2600,1700,1200,900,2600", "comma-separated viewport widths")
	cmd.Flags().IntVar(&height, "height", defaultViewportHeight, "viewport height")
	cmd.Flags().StringVar(&direction, "direction", "", "narrowing direction: merge, stack (default from config)")
	cmd.Flags().StringVarP(&templatePath, "template", "t", "", "template file (default from config, else built-in)")

	return cmd
}

func (c *CLI) runSimulate(ctx context.Context, sess *session.Session, ws []int, height int) error {
	if err := sess.Start(ctx, ws[0], height); err != nil {
		return err
	}
	st := sess.State()
	printSuccess(c.out, "Started at %s with %d panels", StyleNumber.Render(fmt.Sprint(ws[0])), st.MaxPanels)
	c.printState(st, 0)

	for _, w := range ws[1:] {
		before := st.Depth
		if _, err := sess.Resize(ctx, w, height); err != nil {
			return err
		}
		st = sess.State()
		printInfo(c.out, "Viewport %s", StyleNumber.Render(fmt.Sprint(w)))
		c.printState(st, before)
	}
	return nil
}

// printState prints the stash after a reaction; before is the previous
// depth, 0 for the first state.
func (c *CLI) printState(st session.State, before int) {
	icon := " "
	switch {
	case before > 0 && st.Depth > before:
		icon = iconPush
	case before > 0 && st.Depth < before:
		icon = iconPop
	}
	printDetail(c.out, "%s depth %d · stash %s · %d groups · %d tabs · needs %dx%d",
		icon, st.Depth, widths(st.Widths), st.Current.GroupCount, st.Current.TabCount,
		st.Current.WidthNeeded, st.Current.HeightNeeded)
	if st.Overflow.Width || st.Overflow.Height {
		printWarning(c.out, "  overflow width=%t height=%t", st.Overflow.Width, st.Overflow.Height)
	}
}

// newSession builds a session over the template named by path (see
// [CLI.templateTree]) using the configured debounce.
func (c *CLI) newSession(path, direction string) (*session.Session, error) {
	tmpl, err := c.templateTree(path)
	if err != nil {
		return nil, err
	}
	dir, err := c.direction(direction)
	if err != nil {
		return nil, err
	}
	return session.New(session.Config{
		Template:  tmpl,
		Direction: dir,
		Debounce:  c.cfg.Debounce(),
		Logger:    c.Logger,
	})
}
