package cli

import (
	"maps"
	"slices"

	"github.com/spf13/cobra"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for xkcdify.

To load completions:

Bash:
  $ source <(xkcdify completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ xkcdify completion bash > /etc/bash_completion.d/xkcdify
  # macOS:
  $ xkcdify completion bash > $(brew --prefix)/etc/bash_completion.d/xkcdify

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. You can execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ xkcdify completion zsh > "${fpath[1]}/_xkcdify"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ xkcdify completion fish | source

  # To load completions for each session, execute once:
  $ xkcdify completion fish > ~/.config/fish/completions/xkcdify.fish

PowerShell:
  PS> xkcdify completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> xkcdify completion powershell > xkcdify.ps1
  # and source this file from your PowerShell profile.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(w, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(w)
			case "fish":
				return cmd.Root().GenFishCompletion(w, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(w)
			}
			return nil
		},
	}

	return cmd
}

// completeKeys completes a flag from a set of valid values.
func completeKeys(valid map[string]bool) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return slices.Sorted(maps.Keys(valid)), cobra.ShellCompDirectiveNoFileComp
	}
}

// completePresets completes --preset from the config file.
func (c *CLI) completePresets(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	return cfg.PresetNames(), cobra.ShellCompDirectiveNoFileComp
}
