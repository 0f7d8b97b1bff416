package repository

import (
	"context"
	"iter"

	"github.com/crmarques/credstore/credential"
)

// CredentialStore persists encrypted credential records under a repository
// root. Every operation except Exists and Init fails with a NotFoundError
// while the repository is uninitialized.
type CredentialStore interface {
	Exists(ctx context.Context) (bool, error)
	Init(ctx context.Context) error
	Check(ctx context.Context) error
	Get(ctx context.Context, name string) (credential.Record, error)
	Set(ctx context.Context, name string, account string, password string, passphrase string) error
	Delete(ctx context.Context, name string) error
	// List returns a lazy depth-first walk over fully-qualified credential
	// names. Each range over the sequence re-reads the filesystem; the first
	// error is yielded and ends the walk.
	List(ctx context.Context) (iter.Seq2[string, error], error)
}

// RepositoryCommitter snapshots the working tree. Store writes never commit
// on their own.
type RepositoryCommitter interface {
	Commit(ctx context.Context, message string) (bool, error)
}

type RepositoryHistoryReader interface {
	History(ctx context.Context, filter HistoryFilter) ([]HistoryEntry, error)
}

type RepositoryStatusReader interface {
	WorktreeStatus(ctx context.Context) ([]WorktreeStatusEntry, error)
}

type RepositoryResetter interface {
	Reset(ctx context.Context, policy ResetPolicy) error
}

// CollectNames drains a list sequence into a slice.
func CollectNames(names iter.Seq2[string, error]) ([]string, error) {
	items := []string{}
	for name, err := range names {
		if err != nil {
			return items, err
		}
		items = append(items, name)
	}
	return items, nil
}
