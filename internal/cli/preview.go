package cli

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/flexdock/pkg/analysis"
	"github.com/matzehuels/flexdock/pkg/layout"
	"github.com/matzehuels/flexdock/pkg/render/boxes"
	"github.com/matzehuels/flexdock/pkg/session"
	"github.com/matzehuels/flexdock/pkg/stash"
)

const (
	defaultPreviewWidth = 2600
	defaultPreviewStep  = 100
	minPreviewWidth     = 100
)

var (
	previewHelpStyle  = lipgloss.NewStyle().Foreground(colorDim)
	previewErrorStyle = lipgloss.NewStyle().Foreground(colorYellow)
)

// previewCommand creates the preview command.
func (c *CLI) previewCommand() *cobra.Command {
	var (
		width        int
		height       int
		step         int
		direction    string
		templatePath string
	)

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Resize a layout interactively in the terminal",
		Long: `Resize a layout interactively in the terminal.

←/→ shrink or grow the simulated viewport, d toggles the narrowing
direction, 1-5 reload the template at that panel budget, x closes the
foreground tab of the active group, q quits.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := c.newSession(templatePath, direction)
			if err != nil {
				return err
			}
			defer sess.Close()
			if err := sess.Start(cmd.Context(), width, height); err != nil {
				return err
			}

			m := newPreviewModel(cmd.Context(), sess, step, c.cfg.Render.Columns)
			p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
			unsubscribe := sess.Subscribe(func(analysis.Snapshot) { p.Send(stateMsg{}) })
			defer unsubscribe()
			_, err = p.Run()
			return err
		},
	}

	cmd.Flags().IntVar(&width, "width", defaultPreviewWidth, "initial viewport width")
	cmd.Flags().IntVar(&height, "height", defaultViewportHeight, "viewport height")
	cmd.Flags().IntVar(&step, "step", defaultPreviewStep, "pixels per ←/→ press")
	cmd.Flags().StringVar(&direction, "direction", "", "narrowing direction: merge, stack (default from config)")
	cmd.Flags().StringVarP(&templatePath, "template", "t", "", "template file (default from config, else built-in)")

	return cmd
}

// =============================================================================
// previewModel - Interactive resize simulator
// =============================================================================

// stateMsg tells the model the session published a new snapshot.
type stateMsg struct{}

// previewModel is the bubbletea model of the preview command. The session
// is driven synchronously from Update; reactions it runs on its own (edit
// recomputes) arrive as stateMsg.
type previewModel struct {
	ctx     context.Context
	sess    *session.Session
	step    int
	columns int
	state   session.State
	status  string
	err     error
}

func newPreviewModel(ctx context.Context, sess *session.Session, step, columns int) previewModel {
	if step <= 0 {
		step = defaultPreviewStep
	}
	return previewModel{
		ctx:     ctx,
		sess:    sess,
		step:    step,
		columns: columns,
		state:   sess.State(),
	}
}

func (m previewModel) Init() tea.Cmd {
	return nil
}

func (m previewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch key := msg.String(); key {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "left", "h":
			m = m.resize(max(m.state.Width-m.step, minPreviewWidth))
		case "right", "l":
			m = m.resize(m.state.Width + m.step)
		case "d":
			m = m.toggleDirection()
		case "1", "2", "3", "4", "5":
			m = m.reload(int(key[0] - '0'))
		case "x":
			m = m.closeTab()
		}
	case tea.WindowSizeMsg:
		m.columns = max(msg.Width-2, 20)
	case stateMsg:
		m.state = m.sess.State()
	}
	return m, nil
}

func (m previewModel) resize(width int) previewModel {
	before := m.state.Depth
	_, m.err = m.sess.Resize(m.ctx, width, m.state.Height)
	m.state = m.sess.State()
	switch {
	case m.state.Depth > before:
		m.status = fmt.Sprintf("%s pushed %d", iconPush, m.state.Depth-before)
	case m.state.Depth < before:
		m.status = fmt.Sprintf("%s restored %d", iconPop, before-m.state.Depth)
	default:
		m.status = ""
	}
	return m
}

func (m previewModel) toggleDirection() previewModel {
	d := stash.DirectionStack
	if m.state.Direction == stash.DirectionStack {
		d = stash.DirectionMerge
	}
	m.err = m.sess.SetDirection(d)
	m.state = m.sess.State()
	m.status = "direction " + string(d)
	return m
}

func (m previewModel) reload(budget int) previewModel {
	m.err = m.sess.ReloadTemplate(m.ctx, nil, budget)
	m.state = m.sess.State()
	m.status = fmt.Sprintf("template at %d panels", budget)
	return m
}

func (m previewModel) closeTab() previewModel {
	group := m.state.Current.Target()
	tab, ok := m.state.Current.Tree.SelectedTab(group)
	if !ok {
		return m
	}
	m.err = m.sess.Edit(func(t *layout.Tree) error { return t.DeleteTab(tab) })
	m.status = "closed " + string(tab)
	return m
}

func (m previewModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("flexdock preview"))
	b.WriteString("  ")
	b.WriteString(StyleValue.Render(fmt.Sprintf("viewport %dx%d", m.state.Width, m.state.Height)))
	b.WriteString(StyleDim.Render(fmt.Sprintf("  · %s · depth %d · stash %s",
		m.state.Direction, m.state.Depth, widths(m.state.Widths))))
	b.WriteString("\n")
	b.WriteString(previewHelpStyle.Render("←/→ resize  d direction  1-5 panels  x close tab  q quit"))
	b.WriteString("\n\n")

	b.WriteString(boxes.Render(m.state.Current, boxes.Options{
		Columns:  m.columns,
		Viewport: m.state.Width,
	}))
	b.WriteString("\n")

	if m.state.Overflow.Width || m.state.Overflow.Height {
		b.WriteString(previewErrorStyle.Render(fmt.Sprintf("overflow: needs %dx%d",
			m.state.Current.WidthNeeded, m.state.Current.HeightNeeded)))
		b.WriteString("\n")
	}
	if m.err != nil {
		b.WriteString(previewErrorStyle.Render(m.err.Error()))
		b.WriteString("\n")
	} else if m.status != "" {
		b.WriteString(StyleDim.Render(m.status))
		b.WriteString("\n")
	}
	return b.String()
}
