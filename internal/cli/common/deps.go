package common

import (
	"context"

	"github.com/crmarques/credstore/config"
	"github.com/crmarques/credstore/credential"
	"github.com/crmarques/credstore/repository"
)

// RepositoryServices are the per-context services behind credential and repo
// commands.
type RepositoryServices struct {
	Context   config.Context
	Cipher    credential.Cipher
	Store     repository.CredentialStore
	Committer repository.RepositoryCommitter
	History   repository.RepositoryHistoryReader
	Status    repository.RepositoryStatusReader
	Resetter  repository.RepositoryResetter
}

// RepositoryOpener resolves a selection into repository services. It runs
// after flag parsing so --context and --repository apply.
type RepositoryOpener func(ctx context.Context, selection config.ContextSelection) (RepositoryServices, error)

type CommandDependencies struct {
	Contexts       config.ContextService
	OpenRepository RepositoryOpener
}

func RequireContexts(deps CommandDependencies) (config.ContextService, error) {
	if deps.Contexts == nil {
		return nil, ValidationError("context service is not configured", nil)
	}
	return deps.Contexts, nil
}

func OpenRepository(ctx context.Context, deps CommandDependencies, globalFlags *GlobalFlags) (RepositoryServices, error) {
	if deps.OpenRepository == nil {
		return RepositoryServices{}, ValidationError("repository is not configured", nil)
	}

	services, err := deps.OpenRepository(ctx, Selection(globalFlags))
	if err != nil {
		return RepositoryServices{}, err
	}
	if services.Store == nil {
		return RepositoryServices{}, ValidationError("credential store is not configured", nil)
	}
	return services, nil
}

func RequireCipher(services RepositoryServices) (credential.Cipher, error) {
	if services.Cipher == nil {
		return nil, ValidationError("cipher is not configured", nil)
	}
	return services.Cipher, nil
}

func RequireCommitter(services RepositoryServices) (repository.RepositoryCommitter, error) {
	if services.Committer == nil {
		return nil, ValidationError("repository does not support commits", nil)
	}
	return services.Committer, nil
}

func RequireHistoryReader(services RepositoryServices) (repository.RepositoryHistoryReader, error) {
	if services.History == nil {
		return nil, ValidationError("repository does not support history", nil)
	}
	return services.History, nil
}

func RequireStatusReader(services RepositoryServices) (repository.RepositoryStatusReader, error) {
	if services.Status == nil {
		return nil, ValidationError("repository does not support status", nil)
	}
	return services.Status, nil
}

func RequireResetter(services RepositoryServices) (repository.RepositoryResetter, error) {
	if services.Resetter == nil {
		return nil, ValidationError("repository does not support reset", nil)
	}
	return services.Resetter, nil
}
