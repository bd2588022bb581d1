package main

import (
	"github.com/spf13/cobra"
)

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion scripts",
	Long: `Generate shell completion scripts for depbump.

To load completions:

Bash:
  $ source <(depbump completion bash)
  # To load completions for each session, execute once:
  $ depbump completion bash > ~/.local/share/bash-completion/completions/depbump

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. You can execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc
  # To load completions for each session, execute once:
  $ depbump completion zsh > "${fpath[1]}/_depbump"
  # You will need to start a new shell for this setup to take effect.

Fish:
  $ depbump completion fish | source
  # To load completions for each session, execute once:
  $ depbump completion fish > ~/.config/fish/completions/depbump.fish

PowerShell:
  PS> depbump completion powershell | Out-String | Invoke-Expression
  # To load completions for every new session, run:
  PS> depbump completion powershell > depbump.ps1
  # and source this file from your PowerShell profile.
`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		switch args[0] {
		case "bash":
			return rootCmd.GenBashCompletionV2(out, true)
		case "zsh":
			return rootCmd.GenZshCompletion(out)
		case "fish":
			return rootCmd.GenFishCompletion(out, true)
		case "powershell":
			return rootCmd.GenPowerShellCompletionWithDesc(out)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(completionCmd)
}
