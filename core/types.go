package core

import (
	"github.com/crmarques/credstore/config"
	"github.com/crmarques/credstore/credential"
	"github.com/crmarques/credstore/repository"
)

// CredstoreContext bundles the services the CLI needs for one resolved
// context.
type CredstoreContext struct {
	Contexts config.ContextService
	Context  config.Context
	Cipher   credential.Cipher
	Store    repository.CredentialStore

	Committer repository.RepositoryCommitter
	History   repository.RepositoryHistoryReader
	Status    repository.RepositoryStatusReader
	Resetter  repository.RepositoryResetter
}

type BootstrapConfig struct {
	ContextCatalogPath string
}
