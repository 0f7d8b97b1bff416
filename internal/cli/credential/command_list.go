package credential

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/crmarques/credstore/internal/cli/common"
	"github.com/crmarques/credstore/repository"
)

func newListCommand(deps common.CommandDependencies, globalFlags *common.GlobalFlags) *cobra.Command {
	var filter string

	command := &cobra.Command{
		Use:   "list",
		Short: "List credential names",
		Example: "  credstore list\n" +
			"  credstore list -o json --filter '.[] | select(startswith(\"work/\"))'",
		Args: cobra.NoArgs,
		RunE: func(command *cobra.Command, _ []string) error {
			services, err := common.OpenRepository(command.Context(), deps, globalFlags)
			if err != nil {
				return err
			}

			names, err := services.Store.List(command.Context())
			if err != nil {
				return err
			}

			// plain text streams names as the walk produces them
			if filter == "" && isTextOutput(globalFlags.Output) {
				out := command.OutOrStdout()
				for name, err := range names {
					if err != nil {
						return err
					}
					if _, err := fmt.Fprintln(out, name); err != nil {
						return err
					}
				}
				return nil
			}

			items, err := repository.CollectNames(names)
			if err != nil {
				return err
			}
			return common.WriteFilteredOutput(command, globalFlags.Output, filter, items, func(w io.Writer, value []string) error {
				for _, name := range value {
					if _, err := fmt.Fprintln(w, name); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}

	common.BindFilterFlag(command, &filter)
	return command
}

func isTextOutput(format string) bool {
	return format == "" || format == common.OutputAuto || format == common.OutputText
}
