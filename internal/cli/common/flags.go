package common

import (
	"github.com/spf13/cobra"

	"github.com/crmarques/credstore/config"
)

type GlobalFlags struct {
	Context    string
	Repository string
	Debug      bool
	NoStatus   bool
	NoColor    bool
	Output     string
}

func BindGlobalFlags(command *cobra.Command, flags *GlobalFlags) {
	command.PersistentFlags().StringVarP(&flags.Context, "context", "c", "", "context name")
	command.PersistentFlags().StringVarP(&flags.Repository, "repository", "s", "", "repository directory (overrides the context)")
	command.PersistentFlags().BoolVarP(&flags.Debug, "debug", "d", false, "enable debug output")
	command.PersistentFlags().BoolVarP(&flags.NoStatus, "no-status", "n", false, "hide status output")
	command.PersistentFlags().BoolVar(&flags.NoColor, "no-color", false, "disable color output")
	command.PersistentFlags().StringVarP(&flags.Output, "output", "o", OutputAuto, "output format: auto|text|json|yaml")
	RegisterOutputFlagCompletion(command)
}

func BindFilterFlag(command *cobra.Command, filter *string) {
	command.Flags().StringVar(filter, "filter", "", "jq expression applied to the JSON form of the output")
}

// Selection maps the global flags onto a context selection.
func Selection(flags *GlobalFlags) config.ContextSelection {
	if flags == nil {
		return config.ContextSelection{}
	}
	return config.ContextSelection{
		Name:           flags.Context,
		RepositoryPath: flags.Repository,
	}
}
