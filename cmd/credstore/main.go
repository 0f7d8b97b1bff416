package main

import (
	"context"
	"os"

	"github.com/crmarques/credstore/config"
	"github.com/crmarques/credstore/core"
	"github.com/crmarques/credstore/internal/cli"
)

func main() {
	if err := cli.Execute(newDependencies(core.BootstrapConfig{})); err != nil {
		os.Exit(cli.ExitCodeForError(err))
	}
}

// newDependencies defers repository wiring until a command runs, so help,
// completion and config commands work before any repository exists.
func newDependencies(bootstrap core.BootstrapConfig) cli.Dependencies {
	return cli.Dependencies{
		Contexts:       core.NewContextService(bootstrap),
		OpenRepository: repositoryOpener(bootstrap),
	}
}

func repositoryOpener(bootstrap core.BootstrapConfig) cli.RepositoryOpener {
	return func(ctx context.Context, selection config.ContextSelection) (cli.RepositoryServices, error) {
		credstoreContext, err := core.NewCredstoreContext(ctx, bootstrap, selection)
		if err != nil {
			return cli.RepositoryServices{}, err
		}
		return cli.RepositoryServices{
			Context:   credstoreContext.Context,
			Cipher:    credstoreContext.Cipher,
			Store:     credstoreContext.Store,
			Committer: credstoreContext.Committer,
			History:   credstoreContext.History,
			Status:    credstoreContext.Status,
			Resetter:  credstoreContext.Resetter,
		}, nil
	}
}
