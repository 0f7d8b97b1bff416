package cli

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/crmarques/credstore/debugctx"
	"github.com/crmarques/credstore/faults"
	"github.com/crmarques/credstore/internal/cli/common"
	"github.com/crmarques/credstore/internal/cli/completion"
	"github.com/crmarques/credstore/internal/cli/config"
	credentialcmd "github.com/crmarques/credstore/internal/cli/credential"
	"github.com/crmarques/credstore/internal/cli/repo"
	"github.com/crmarques/credstore/internal/cli/version"
)

const usageTemplate = `Usage:{{if .Runnable}}
  {{.UseLine}}{{end}}{{if .HasAvailableSubCommands}}
  {{.CommandPath}} [command]{{end}}{{if gt (len .Aliases) 0}}

Aliases:
  {{.NameAndAliases}}{{end}}{{if .HasExample}}

Examples:
{{.Example}}{{end}}{{if .HasAvailableSubCommands}}{{$cmds := .Commands}}{{if eq (len .Groups) 0}}

Available Commands:{{range $cmds}}{{if (or .IsAvailableCommand (eq .Name "help"))}}
  {{rpad .Name .NamePadding }} {{.Short}}{{end}}{{end}}{{else}}{{range $group := .Groups}}

{{.Title}}{{range $cmds}}{{if (and (eq .GroupID $group.ID) (or .IsAvailableCommand (eq .Name "help")))}}
  {{rpad .Name .NamePadding }} {{.Short}}{{end}}{{end}}{{end}}{{if not .AllChildCommandsHaveGroup}}

Additional Commands:{{range $cmds}}{{if (and (eq .GroupID "") (or .IsAvailableCommand (eq .Name "help")))}}
  {{rpad .Name .NamePadding }} {{.Short}}{{end}}{{end}}{{end}}{{end}}{{end}}{{if .LocalNonPersistentFlags.HasAvailableFlags}}

Flags:
{{.LocalNonPersistentFlags.FlagUsages | trimTrailingWhitespaces}}{{end}}{{if or .HasAvailableInheritedFlags .HasAvailablePersistentFlags}}

Global Flags:
{{if .HasAvailableInheritedFlags}}{{.InheritedFlags.FlagUsages | trimTrailingWhitespaces}}
{{end}}{{if and .HasAvailableInheritedFlags .HasAvailablePersistentFlags}}
{{end}}{{if .HasAvailablePersistentFlags}}{{.PersistentFlags.FlagUsages | trimTrailingWhitespaces}}{{end}}{{end}}{{if .HasHelpSubCommands}}

Additional help topics:{{range .Commands}}{{if .IsAdditionalHelpTopicCommand}}
  {{rpad .CommandPath .CommandPathPadding}} {{.Short}}{{end}}{{end}}{{end}}
{{if .HasAvailableSubCommands}}Use "{{.CommandPath}} [command] --help" for more information about a command.{{end}}
`

func NewRootCommand(deps Dependencies) *cobra.Command {
	commandDeps := deps.commandDependencies()
	var globalFlags common.GlobalFlags

	root := &cobra.Command{
		Use:   "credstore",
		Short: "Store encrypted credentials in a versioned repository",
		Long: "credstore keeps account/password pairs encrypted with a passphrase, one file\n" +
			"per credential, inside a git working tree. Credentials are grouped by\n" +
			"slash-separated names such as work/mail.",
		RunE: func(command *cobra.Command, _ []string) error {
			return command.Help()
		},
		Args: cobra.NoArgs,
		PersistentPreRunE: func(command *cobra.Command, _ []string) error {
			if err := common.ValidateOutputFormat(globalFlags.Output); err != nil {
				return err
			}
			if err := common.ValidateOutputFormatForCommandPath(command.CommandPath(), globalFlags.Output); err != nil {
				return err
			}

			parent := command.Context()
			if parent == nil {
				parent = context.Background()
			}
			commandContext := debugctx.WithEnabled(parent, globalFlags.Debug)
			commandContext = debugctx.WithWriter(commandContext, command.ErrOrStderr())
			command.SetContext(commandContext)

			debugctx.Printf(
				command.Context(),
				"root flags context=%q repository=%q output=%q no_status=%t no_color=%t command=%q",
				globalFlags.Context,
				globalFlags.Repository,
				globalFlags.Output,
				globalFlags.NoStatus,
				globalFlags.NoColor,
				command.CommandPath(),
			)

			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetUsageTemplate(usageTemplate)
	defaultHelpFunc := root.HelpFunc()
	root.SetHelpFunc(func(command *cobra.Command, args []string) {
		originalOut := command.OutOrStdout()
		originalErr := command.ErrOrStderr()

		buffer := &bytes.Buffer{}
		command.SetOut(buffer)
		command.SetErr(buffer)
		defaultHelpFunc(command, args)
		command.SetOut(originalOut)
		command.SetErr(originalErr)

		rendered := strings.TrimRight(buffer.String(), "\n")
		if rendered == "" {
			_, _ = fmt.Fprintln(originalOut)
			return
		}

		_, _ = fmt.Fprintln(originalOut, rendered)
	})

	common.BindGlobalFlags(root, &globalFlags)
	common.RegisterContextFlagCompletion(root, commandDeps)
	root.PersistentFlags().BoolP("help", "h", false, "help for command")

	root.AddGroup(
		&cobra.Group{ID: "credentials", Title: "Credential Commands:"},
		&cobra.Group{ID: "basic", Title: "Basic Commands:"},
		&cobra.Group{ID: "other", Title: "Other Commands:"},
	)

	for _, command := range credentialcmd.NewCommands(commandDeps, &globalFlags) {
		command.GroupID = "credentials"
		root.AddCommand(command)
	}

	basicCommands := []*cobra.Command{
		config.NewCommand(commandDeps, &globalFlags),
		repo.NewCommand(commandDeps, &globalFlags),
	}
	for _, command := range basicCommands {
		command.GroupID = "basic"
		root.AddCommand(command)
	}

	otherCommands := []*cobra.Command{
		completion.NewCommand(),
		version.NewCommand(&globalFlags),
	}
	for _, command := range otherCommands {
		command.GroupID = "other"
		root.AddCommand(command)
	}

	wrapUsageForMissingPositionalParameterErrors(root)

	return root
}

// wrapUsageForMissingPositionalParameterErrors prints usage when a command
// that takes a name was run without one.
func wrapUsageForMissingPositionalParameterErrors(command *cobra.Command) {
	command.Args = wrapCommandErrorHandlerWithUsage(command.Args)
	command.RunE = wrapCommandErrorHandlerWithUsage(command.RunE)
	for _, child := range command.Commands() {
		wrapUsageForMissingPositionalParameterErrors(child)
	}
}

func wrapCommandErrorHandlerWithUsage(handler func(*cobra.Command, []string) error) func(*cobra.Command, []string) error {
	if handler == nil {
		return nil
	}

	return func(command *cobra.Command, args []string) error {
		err := handler(command, args)
		if isMissingPositionalParameterError(command, err, args) {
			if rendered := strings.TrimRight(command.UsageString(), "\n"); rendered != "" {
				_, _ = fmt.Fprintln(command.ErrOrStderr(), rendered)
			}
		}
		return err
	}
}

func isMissingPositionalParameterError(command *cobra.Command, err error, args []string) bool {
	if err == nil || len(args) != 0 || !strings.Contains(command.Use, "<") {
		return false
	}
	if faults.IsCategory(err, faults.ValidationError) {
		return false
	}

	message := strings.ToLower(err.Error())
	return strings.Contains(message, "arg(s)") && strings.Contains(message, "received 0")
}
