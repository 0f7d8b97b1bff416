package credential

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/crmarques/credstore/debugctx"
	"github.com/crmarques/credstore/internal/cli/common"
)

// credentialView omits Password only for --account-only; an empty stored
// password still renders.
type credentialView struct {
	Name     string  `json:"name" yaml:"name"`
	Account  string  `json:"account" yaml:"account"`
	Password *string `json:"password,omitempty" yaml:"password,omitempty"`
}

func newGetCommand(deps common.CommandDependencies, globalFlags *common.GlobalFlags) *cobra.Command {
	var accountOnly bool
	var filter string

	command := &cobra.Command{
		Use:   "get <name>",
		Short: "Decrypt and print a credential",
		Example: "  credstore get mail\n" +
			"  credstore get work/vpn --account-only\n" +
			"  echo \"$PASSPHRASE\" | credstore get mail -o json --filter .password",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: common.CredentialNameArgCompletionFunc(deps, globalFlags),
		RunE: func(command *cobra.Command, args []string) error {
			services, err := common.OpenRepository(command.Context(), deps, globalFlags)
			if err != nil {
				return err
			}

			record, err := services.Store.Get(command.Context(), args[0])
			if err != nil {
				return err
			}

			view := credentialView{Name: record.Name, Account: record.Account}
			if !accountOnly {
				cipher, err := common.RequireCipher(services)
				if err != nil {
					return err
				}
				passphrase, err := common.NewPrompter(command).Secret("Passphrase", true)
				if err != nil {
					return err
				}
				password, err := record.DecryptSecret(cipher, passphrase)
				if err != nil {
					return err
				}
				view.Password = &password
			}

			debugctx.Printf(command.Context(), "credential get name=%q account_only=%t", record.Name, accountOnly)
			return common.WriteFilteredOutput(command, globalFlags.Output, filter, view, func(w io.Writer, value credentialView) error {
				if accountOnly {
					_, err := fmt.Fprintln(w, value.Account)
					return err
				}
				password := ""
				if value.Password != nil {
					password = *value.Password
				}
				_, err := fmt.Fprintf(w, "Retrieved: %s -> '%s:%s'\n", value.Name, value.Account, password)
				return err
			})
		},
	}

	command.Flags().BoolVar(&accountOnly, "account-only", false, "print only the account without asking for the passphrase")
	common.BindFilterFlag(command, &filter)
	return command
}
