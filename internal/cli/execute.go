package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/crmarques/credstore/config"
	"github.com/crmarques/credstore/faults"
	"github.com/crmarques/credstore/internal/cli/commandmeta"
	"github.com/crmarques/credstore/internal/cli/common"
)

type (
	// RepositoryServices are the per-context services a RepositoryOpener
	// returns.
	RepositoryServices = common.RepositoryServices
	RepositoryOpener   = common.RepositoryOpener
)

type Dependencies struct {
	Contexts       config.ContextService
	OpenRepository RepositoryOpener
}

func (d Dependencies) commandDependencies() common.CommandDependencies {
	return common.CommandDependencies{
		Contexts:       d.Contexts,
		OpenRepository: d.OpenRepository,
	}
}

func Execute(deps Dependencies) error {
	root := NewRootCommand(deps)
	return executeRoot(root, os.Args[1:])
}

func executeRoot(root *cobra.Command, args []string) error {
	root.SetArgs(args)
	command, err := root.ExecuteC()
	emitStatus := shouldEmitExecutionStatus(args, command)

	if err != nil {
		if emitStatus {
			writeExecutionErrorStatus(root.ErrOrStderr(), args, err)
		} else {
			_, _ = fmt.Fprintln(root.ErrOrStderr(), strings.TrimSpace(err.Error()))
		}
		return err
	}
	if emitStatus {
		writeExecutionOKStatus(root.ErrOrStderr(), args)
	}
	return nil
}

// ExitCodeForError maps the outermost error category to a process exit code.
func ExitCodeForError(err error) int {
	if err == nil {
		return 0
	}

	category, ok := faults.CategoryOf(err)
	if !ok {
		return 1
	}

	switch category {
	case faults.ValidationError:
		return 2
	case faults.NotFoundError:
		return 3
	case faults.DecryptionError:
		return 4
	case faults.AlreadyExistsError:
		return 5
	case faults.ParseError:
		return 6
	case faults.IOError:
		return 7
	default:
		return 1
	}
}

func writeExecutionOKStatus(w io.Writer, args []string) {
	_, _ = fmt.Fprintf(w, "%s command executed successfully.\n", formatStatusLabel(w, args, "OK"))
}

func writeExecutionErrorStatus(w io.Writer, args []string, err error) {
	description := "command execution failed"
	if err != nil {
		description = fmt.Sprintf("%s: %s", description, strings.TrimSpace(err.Error()))
	}
	_, _ = fmt.Fprintf(w, "%s %s.\n", formatStatusLabel(w, args, "ERROR"), description)
}

func formatStatusLabel(w io.Writer, args []string, status string) string {
	label := "[" + status + "]"
	if !supportsANSIStatus(w, args) {
		return label
	}

	switch status {
	case "OK":
		return "\x1b[1;32m" + label + "\x1b[0m"
	case "ERROR":
		return "\x1b[1;31m" + label + "\x1b[0m"
	default:
		return label
	}
}

func supportsANSIStatus(w io.Writer, args []string) bool {
	if shouldSuppressColor(args) {
		return false
	}

	file, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(file.Fd())) {
		return false
	}

	terminal := strings.TrimSpace(strings.ToLower(os.Getenv("TERM")))
	return terminal != "" && terminal != "dumb"
}

func shouldSuppressColor(args []string) bool {
	if strings.TrimSpace(os.Getenv("NO_COLOR")) != "" {
		return true
	}
	return parseBoolArg(args, "no-color", "")
}

func shouldEmitExecutionStatus(args []string, command *cobra.Command) bool {
	if parseBoolArg(args, "no-status", "n") {
		return false
	}
	if isHelpOrCompletionInvocation(args) {
		return false
	}
	if command == nil {
		return false
	}
	return commandmeta.EmitsExecutionStatusPath(command.CommandPath())
}

// parseBoolArg reads one boolean flag from raw args, ignoring everything
// else. It runs after cobra so a failed command still honors the flag.
func parseBoolArg(args []string, name string, shorthand string) bool {
	flags := pflag.NewFlagSet(name, pflag.ContinueOnError)
	flags.ParseErrorsAllowlist.UnknownFlags = true
	flags.SetOutput(io.Discard)

	var value bool
	flags.BoolVarP(&value, name, shorthand, false, "")
	if err := flags.Parse(args); err != nil {
		return hasBoolArgToken(args, name, shorthand)
	}
	return value
}

func hasBoolArgToken(args []string, name string, shorthand string) bool {
	long := "--" + name
	for _, current := range args {
		if current == "--" {
			break
		}
		if current == long || (shorthand != "" && current == "-"+shorthand) {
			return true
		}
		if value, found := strings.CutPrefix(current, long+"="); found {
			return strings.TrimSpace(value) != "false"
		}
	}
	return false
}

func isHelpOrCompletionInvocation(args []string) bool {
	if len(args) == 0 {
		return true
	}
	switch args[0] {
	case "help", "completion", cobra.ShellCompRequestCmd, cobra.ShellCompNoDescRequestCmd:
		return true
	}

	for _, current := range args {
		if current == "--" {
			break
		}
		if current == "--help" || current == "-h" {
			return true
		}
	}
	return false
}
