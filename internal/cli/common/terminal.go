package common

import (
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// IsInteractiveTerminal reports whether prompts can be shown: stdin and
// stderr must both be terminals. Stdout may be piped.
func IsInteractiveTerminal(command *cobra.Command) bool {
	return isTerminalReader(command.InOrStdin()) && isTerminalWriter(command.ErrOrStderr())
}

func isTerminalReader(reader io.Reader) bool {
	file, ok := reader.(*os.File)
	if !ok || file == nil {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}

func isTerminalWriter(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok || file == nil {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}
