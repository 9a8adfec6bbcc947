package cli

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/matzehuels/flexdock/pkg/stash"
	"github.com/matzehuels/flexdock/pkg/template"
	"github.com/matzehuels/flexdock/pkg/transform"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for flexdock.

To load completions:

Bash:
  $ source <(flexdock completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ flexdock completion bash > /etc/bash_completion.d/flexdock
  # macOS:
  $ flexdock completion bash > $(brew --prefix)/etc/bash_completion.d/flexdock

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. You can execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ flexdock completion zsh > "${fpath[1]}/_flexdock"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ flexdock completion fish | source

  # To load completions for each session, execute once:
  $ flexdock completion fish > ~/.config/fish/completions/flexdock.fish

PowerShell:
  PS> flexdock completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> flexdock completion powershell > flexdock.ps1
  # and source this file from your PowerShell profile.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(c.out)
			case "zsh":
				return cmd.Root().GenZshCompletion(c.out)
			case "fish":
				return cmd.Root().GenFishCompletion(c.out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(c.out)
			}
			return nil
		},
	}

	return cmd
}

// flagValues lists the accepted values of enum-like flags. Keys are a flag
// name, or a command path and flag name where the values differ by command.
var flagValues = map[string][]string{
	"direction":                       {string(stash.DirectionMerge), string(stash.DirectionStack)},
	"axis":                            {string(transform.AxisZ), string(transform.AxisY)},
	appName + " render format":        {formatText, formatDOT, formatSVG},
	appName + " template show format": {string(template.FormatJSON), string(template.FormatTOML), string(template.FormatYAML)},
}

// registerFlagCompletions attaches value completions to cmd and its
// subcommands for every flag listed in flagValues.
func registerFlagCompletions(cmd *cobra.Command) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		values, ok := flagValues[cmd.CommandPath()+" "+f.Name]
		if !ok {
			values, ok = flagValues[f.Name]
		}
		if ok {
			_ = cmd.RegisterFlagCompletionFunc(f.Name, cobra.FixedCompletions(values, cobra.ShellCompDirectiveNoFileComp))
		}
	})
	for _, sub := range cmd.Commands() {
		registerFlagCompletions(sub)
	}
}
