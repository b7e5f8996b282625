package cli

import (
	"os"

	"github.com/spf13/cobra"
)

// newCompletionCmd creates the completion command for generating shell completions.
func newCompletionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for pinset.

To load completions:

Bash:
  $ source <(pinset completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ pinset completion bash > /etc/bash_completion.d/pinset
  # macOS:
  $ pinset completion bash > $(brew --prefix)/etc/bash_completion.d/pinset

Zsh:
  $ pinset completion zsh > "${fpath[1]}/_pinset"

Fish:
  $ pinset completion fish | source

  # To load completions for each session, execute once:
  $ pinset completion fish > ~/.config/fish/completions/pinset.fish

PowerShell:
  PS> pinset completion powershell | Out-String | Invoke-Expression
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
