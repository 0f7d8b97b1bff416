package credential

import (
	"github.com/spf13/cobra"

	"github.com/crmarques/credstore/internal/cli/common"
)

// NewCommands returns the top-level credential commands.
func NewCommands(deps common.CommandDependencies, globalFlags *common.GlobalFlags) []*cobra.Command {
	return []*cobra.Command{
		newInitCommand(deps, globalFlags),
		newListCommand(deps, globalFlags),
		newGetCommand(deps, globalFlags),
		newSetCommand(deps, globalFlags),
		newDeleteCommand(deps, globalFlags),
	}
}
