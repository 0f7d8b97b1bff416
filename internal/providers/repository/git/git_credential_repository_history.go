package git

import (
	"context"
	"errors"
	"io"
	"path"
	"slices"
	"strings"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/crmarques/credstore/internal/providers/repository/fsstore"
	"github.com/crmarques/credstore/repository"
)

func (r *GitCredentialRepository) History(ctx context.Context, filter repository.HistoryFilter) ([]repository.HistoryEntry, error) {
	repo, err := r.openRepository(ctx)
	if err != nil {
		return nil, err
	}

	logOptions := &gogit.LogOptions{Order: gogit.LogOrderCommitterTime}
	if strings.TrimSpace(filter.Name) != "" {
		normalizedName, err := fsstore.NormalizeName(filter.Name)
		if err != nil {
			return nil, err
		}
		logOptions.PathFilter = credentialPathFilter(normalizedName)
	}

	commits, err := repo.Log(logOptions)
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return []repository.HistoryEntry{}, nil
		}
		return nil, ioError("failed to read git history", err)
	}
	defer commits.Close()

	entries := []repository.HistoryEntry{}
	for {
		commit, nextErr := commits.Next()
		if nextErr != nil {
			if errors.Is(nextErr, io.EOF) {
				break
			}
			return nil, ioError("failed to iterate git history", nextErr)
		}

		entries = append(entries, historyEntryFromCommit(commit))
		if filter.MaxCount > 0 && len(entries) >= filter.MaxCount {
			break
		}
	}

	if filter.Reverse {
		slices.Reverse(entries)
	}
	return entries, nil
}

// credentialPathFilter matches the record file of a credential and every file
// below a group of the same name.
func credentialPathFilter(normalizedName string) func(string) bool {
	namePath := path.Join(repository.CredentialsDirName, normalizedName)
	recordPath := namePath + repository.CredentialFileExtension
	groupPrefix := namePath + "/"

	return func(changedPath string) bool {
		return changedPath == recordPath || strings.HasPrefix(changedPath, groupPrefix)
	}
}

func historyEntryFromCommit(commit *object.Commit) repository.HistoryEntry {
	message := strings.ReplaceAll(commit.Message, "\r\n", "\n")
	subject, body, _ := strings.Cut(message, "\n")

	return repository.HistoryEntry{
		Hash:    commit.Hash.String(),
		Author:  strings.TrimSpace(commit.Author.Name),
		Email:   strings.TrimSpace(commit.Author.Email),
		Date:    commit.Author.When,
		Subject: strings.TrimSpace(subject),
		Body:    strings.TrimSpace(body),
	}
}
