package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion script",
	Long: `Generate shell completion script for jimmybridge.

To load completions:

Bash:
  $ source <(jimmybridge completion bash)
  # To load permanently:
  $ jimmybridge completion bash > /etc/bash_completion.d/jimmybridge

Zsh:
  $ jimmybridge completion zsh > "${fpath[1]}/_jimmybridge"
  $ compinit

Fish:
  $ jimmybridge completion fish | source
  # To load permanently:
  $ jimmybridge completion fish > ~/.config/fish/completions/jimmybridge.fish

PowerShell:
  PS> jimmybridge completion powershell | Out-String | Invoke-Expression
  # To load permanently, add to your PowerShell profile
`,
	ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		switch args[0] {
		case "bash":
			return rootCmd.GenBashCompletion(out)
		case "zsh":
			return rootCmd.GenZshCompletion(out)
		case "fish":
			return rootCmd.GenFishCompletion(out, true)
		case "powershell":
			return rootCmd.GenPowerShellCompletion(out)
		default:
			return fmt.Errorf("unsupported shell: %s", args[0])
		}
	},
}

func init() {
	rootCmd.AddCommand(completionCmd)
}
