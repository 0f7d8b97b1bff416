package config

import (
	"github.com/spf13/cobra"

	configdomain "github.com/crmarques/credstore/config"
	"github.com/crmarques/credstore/internal/cli/common"
)

type addContextFlags struct {
	path        string
	kdfTime     int
	kdfMemory   int
	kdfThreads  int
	authorName  string
	authorEmail string
	use         bool
}

func newAddCommand(deps common.CommandDependencies) *cobra.Command {
	var flags addContextFlags

	command := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a context",
		Example: "  credstore config add personal --path ~/.creds\n" +
			"  credstore config add work --path ~/work/creds --kdf-memory 131072 --author-email ops@example.com --use",
		Args: cobra.ExactArgs(1),
		RunE: func(command *cobra.Command, args []string) error {
			contexts, err := common.RequireContexts(deps)
			if err != nil {
				return err
			}

			cfg := flags.context(args[0])
			if err := contexts.Validate(command.Context(), cfg); err != nil {
				return err
			}
			if err := contexts.Create(command.Context(), cfg); err != nil {
				return err
			}
			if flags.use {
				return contexts.SetCurrent(command.Context(), cfg.Name)
			}
			return nil
		},
	}

	command.Flags().StringVar(&flags.path, "path", "", "repository directory (defaults to "+configdomain.DefaultRepositoryPath+")")
	command.Flags().IntVar(&flags.kdfTime, "kdf-time", 0, "argon2id iterations")
	command.Flags().IntVar(&flags.kdfMemory, "kdf-memory", 0, "argon2id memory in KiB")
	command.Flags().IntVar(&flags.kdfThreads, "kdf-threads", 0, "argon2id parallelism")
	command.Flags().StringVar(&flags.authorName, "author-name", "", "commit author name")
	command.Flags().StringVar(&flags.authorEmail, "author-email", "", "commit author email")
	command.Flags().BoolVar(&flags.use, "use", false, "make the new context current")
	return command
}

func (f addContextFlags) context(name string) configdomain.Context {
	cfg := configdomain.Context{
		Name:       name,
		Repository: configdomain.Repository{Path: f.path},
	}
	if f.kdfTime != 0 || f.kdfMemory != 0 || f.kdfThreads != 0 {
		cfg.Cipher = &configdomain.Cipher{
			KDF: &configdomain.KDF{Time: f.kdfTime, Memory: f.kdfMemory, Threads: f.kdfThreads},
		}
	}
	if f.authorName != "" || f.authorEmail != "" {
		cfg.Git = &configdomain.Git{AuthorName: f.authorName, AuthorEmail: f.authorEmail}
	}
	return cfg
}
