package cli

import (
	"os"

	"github.com/spf13/cobra"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for texscale.

To load completions:

Bash:
  $ source <(texscale completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ texscale completion bash > /etc/bash_completion.d/texscale
  # macOS:
  $ texscale completion bash > $(brew --prefix)/etc/bash_completion.d/texscale

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. You can execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ texscale completion zsh > "${fpath[1]}/_texscale"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ texscale completion fish | source

  # To load completions for each session, execute once:
  $ texscale completion fish > ~/.config/fish/completions/texscale.fish

PowerShell:
  PS> texscale completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> texscale completion powershell > texscale.ps1
  # and source this file from your PowerShell profile.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(os.Stdout)
			case "zsh":
				return cmd.Root().GenZshCompletion(os.Stdout)
			case "fish":
				return cmd.Root().GenFishCompletion(os.Stdout, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
			}
			return nil
		},
	}

	return cmd
}
