package core

import (
	"context"

	"github.com/crmarques/credstore/config"
	configfile "github.com/crmarques/credstore/internal/providers/config/file"
)

func NewContextService(opts BootstrapConfig) config.ContextService {
	return configfile.NewFileContextService(opts.ContextCatalogPath)
}

func NewCredstoreContext(ctx context.Context, opts BootstrapConfig, selection config.ContextSelection) (CredstoreContext, error) {
	contextService := NewContextService(opts)

	resolvedContext, err := contextService.ResolveContext(ctx, selection)
	if err != nil {
		return CredstoreContext{}, err
	}

	store, cipher, err := buildCredentialStore(ctx, resolvedContext)
	if err != nil {
		return CredstoreContext{}, err
	}

	return CredstoreContext{
		Contexts:  contextService,
		Context:   resolvedContext,
		Cipher:    cipher,
		Store:     store,
		Committer: store,
		History:   store,
		Status:    store,
		Resetter:  store,
	}, nil
}
