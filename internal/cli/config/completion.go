package config

import (
	"github.com/spf13/cobra"

	"github.com/crmarques/credstore/internal/cli/common"
)

func registerSingleContextArgCompletion(command *cobra.Command, deps common.CommandDependencies) {
	command.ValidArgsFunction = func(
		_ *cobra.Command,
		args []string,
		toComplete string,
	) ([]string, cobra.ShellCompDirective) {
		if len(args) > 0 {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		return common.CompleteContextNames(deps, toComplete)
	}
}
