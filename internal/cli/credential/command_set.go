package credential

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/crmarques/credstore/internal/cli/common"
)

func newSetCommand(deps common.CommandDependencies, globalFlags *common.GlobalFlags) *cobra.Command {
	var account string

	command := &cobra.Command{
		Use:   "set <name>",
		Short: "Create or replace a credential",
		Long: "Create or replace a credential. Account, password and passphrase are prompted for; " +
			"without a terminal they are read one per line from stdin.",
		Example: "  credstore set mail\n" +
			"  credstore set work/vpn --account alice\n" +
			"  printf 'alice\\nsecret\\npassphrase\\n' | credstore set mail",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: common.CredentialNameArgCompletionFunc(deps, globalFlags),
		RunE: func(command *cobra.Command, args []string) error {
			services, err := common.OpenRepository(command.Context(), deps, globalFlags)
			if err != nil {
				return err
			}

			prompter := common.NewPrompter(command)
			accountValue := strings.TrimSpace(account)
			if accountValue == "" {
				accountValue, err = prompter.Input("Account", true)
				if err != nil {
					return err
				}
			}

			password, err := prompter.Secret("Password", false)
			if err != nil {
				return err
			}
			passphrase, err := prompter.Secret("Passphrase", true)
			if err != nil {
				return err
			}

			return services.Store.Set(command.Context(), args[0], accountValue, password, passphrase)
		},
	}

	command.Flags().StringVarP(&account, "account", "a", "", "account name (prompted when omitted)")
	return command
}
