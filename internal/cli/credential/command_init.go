package credential

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/crmarques/credstore/internal/cli/common"
)

func newInitCommand(deps common.CommandDependencies, globalFlags *common.GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create a new credential repository",
		Example: "  credstore init\n" +
			"  credstore --repository ~/work-creds init",
		Args: cobra.NoArgs,
		RunE: func(command *cobra.Command, _ []string) error {
			services, err := common.OpenRepository(command.Context(), deps, globalFlags)
			if err != nil {
				return err
			}
			if err := services.Store.Init(command.Context()); err != nil {
				return err
			}
			return common.WriteText(
				command,
				common.OutputText,
				fmt.Sprintf("Initialized credential repository in %s", services.Context.Repository.Path),
			)
		},
	}
}
