package core

import (
	"context"

	"github.com/crmarques/credstore/config"
	"github.com/crmarques/credstore/debugctx"
	"github.com/crmarques/credstore/faults"
	"github.com/crmarques/credstore/internal/providers/cipher/aead"
	gitrepository "github.com/crmarques/credstore/internal/providers/repository/git"
)

func buildCredentialStore(
	ctx context.Context,
	resolvedContext config.Context,
) (*gitrepository.GitCredentialRepository, *aead.AEADCipher, error) {
	if resolvedContext.Repository.Path == "" {
		return nil, nil, faults.NewTypedError(faults.ValidationError, "repository path must not be empty", nil)
	}

	cipher, err := aead.NewAEADCipher(resolvedContext.KDF())
	if err != nil {
		return nil, nil, err
	}

	authorName, authorEmail := resolvedContext.GitAuthor()
	debugctx.Printf(
		ctx,
		"core store context=%q repository=%q author=%q",
		resolvedContext.Name,
		resolvedContext.Repository.Path,
		authorName,
	)

	store := gitrepository.NewGitCredentialRepository(
		resolvedContext.Repository.Path,
		cipher,
		gitrepository.Author{Name: authorName, Email: authorEmail},
	)
	return store, cipher, nil
}
