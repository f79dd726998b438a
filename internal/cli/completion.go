package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/boardview/pkg/board"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for boardview.

To load completions:

Bash:
  $ source <(boardview completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ boardview completion bash > /etc/bash_completion.d/boardview
  # macOS:
  $ boardview completion bash > $(brew --prefix)/etc/bash_completion.d/boardview

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. You can execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ boardview completion zsh > "${fpath[1]}/_boardview"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ boardview completion fish | source

  # To load completions for each session, execute once:
  $ boardview completion fish > ~/.config/fish/completions/boardview.fish

PowerShell:
  PS> boardview completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> boardview completion powershell > boardview.ps1
  # and source this file from your PowerShell profile.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(out, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}

	return cmd
}

// completeFaces registers completion of the --face flag. extra names the
// additional keyword a command accepts, such as "both" or "all".
func completeFaces(cmd *cobra.Command, extra ...string) {
	values := make([]string, 0, len(board.Faces)+len(extra))
	for _, f := range board.Faces {
		values = append(values, f.String())
	}
	values = append(values, extra...)
	_ = cmd.RegisterFlagCompletionFunc("face", cobra.FixedCompletions(values, cobra.ShellCompDirectiveNoFileComp))
}

// completeBoardArgs completes the gerber folder argument with directories
// and the pick-and-place argument with CSV files.
func completeBoardArgs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	switch len(args) {
	case 0:
		return nil, cobra.ShellCompDirectiveFilterDirs
	case 1:
		return []string{"csv", "txt"}, cobra.ShellCompDirectiveFilterFileExt
	}
	return nil, cobra.ShellCompDirectiveNoFileComp
}
