package credential

import (
	"github.com/spf13/cobra"

	"github.com/crmarques/credstore/internal/cli/common"
)

func newDeleteCommand(deps common.CommandDependencies, globalFlags *common.GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:               "delete <name>",
		Aliases:           []string{"rm"},
		Short:             "Delete a credential",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: common.CredentialNameArgCompletionFunc(deps, globalFlags),
		RunE: func(command *cobra.Command, args []string) error {
			services, err := common.OpenRepository(command.Context(), deps, globalFlags)
			if err != nil {
				return err
			}
			return services.Store.Delete(command.Context(), args[0])
		},
	}
}
