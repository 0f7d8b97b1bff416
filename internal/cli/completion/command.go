package completion

import (
	"bytes"

	"github.com/spf13/cobra"
)

// NewCommand generates shell completion scripts. Credential names may contain
// spaces, so every generator must keep candidates as single shell words.
func NewCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   "completion",
		Short: "Generate shell completion scripts",
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, _ []string) error {
			return command.Help()
		},
	}

	command.AddCommand(
		&cobra.Command{
			Use:   "bash",
			Short: "Generate Bash completion",
			Args:  cobra.NoArgs,
			RunE: func(command *cobra.Command, _ []string) error {
				return command.Root().GenBashCompletionV2(command.OutOrStdout(), true)
			},
		},
		&cobra.Command{
			Use:   "zsh",
			Short: "Generate Zsh completion",
			Args:  cobra.NoArgs,
			RunE: func(command *cobra.Command, _ []string) error {
				buffer := &bytes.Buffer{}
				if err := command.Root().GenZshCompletion(buffer); err != nil {
					return err
				}
				_, err := command.OutOrStdout().Write(quoteZshCompletionItems(buffer.Bytes()))
				return err
			},
		},
		&cobra.Command{
			Use:   "fish",
			Short: "Generate Fish completion",
			Args:  cobra.NoArgs,
			RunE: func(command *cobra.Command, _ []string) error {
				return command.Root().GenFishCompletion(command.OutOrStdout(), true)
			},
		},
		&cobra.Command{
			Use:   "powershell",
			Short: "Generate PowerShell completion",
			Args:  cobra.NoArgs,
			RunE: func(command *cobra.Command, _ []string) error {
				return command.Root().GenPowerShellCompletionWithDesc(command.OutOrStdout())
			},
		},
	)

	return command
}

var zshQuotedReplacements = [][2][]byte{
	{[]byte(`completions+=${comp}`), []byte(`completions+=("${comp}")`)},
	{[]byte(`out=$(eval ${requestComp} 2>/dev/null)`), []byte(`out=$(eval "${requestComp}" 2>/dev/null)`)},
}

func quoteZshCompletionItems(script []byte) []byte {
	for _, replacement := range zshQuotedReplacements {
		script = bytes.ReplaceAll(script, replacement[0], replacement[1])
	}
	return script
}
