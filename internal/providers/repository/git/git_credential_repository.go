package git

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"os"
	"sort"
	"strings"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/crmarques/credstore/credential"
	"github.com/crmarques/credstore/debugctx"
	"github.com/crmarques/credstore/faults"
	"github.com/crmarques/credstore/internal/providers/repository/fsstore"
	"github.com/crmarques/credstore/repository"
)

var _ repository.CredentialStore = (*GitCredentialRepository)(nil)
var _ repository.RepositoryCommitter = (*GitCredentialRepository)(nil)
var _ repository.RepositoryHistoryReader = (*GitCredentialRepository)(nil)
var _ repository.RepositoryStatusReader = (*GitCredentialRepository)(nil)
var _ repository.RepositoryResetter = (*GitCredentialRepository)(nil)

const defaultCommitMessage = "credstore: update credentials"

type Author struct {
	Name  string
	Email string
}

// GitCredentialRepository is a credential store whose root is a git working
// tree. Store writes only touch the working tree; Commit snapshots it.
type GitCredentialRepository struct {
	local  *fsstore.LocalCredentialRepository
	author Author
	now    func() time.Time
}

func NewGitCredentialRepository(rootDir string, cipher credential.Cipher, author Author) *GitCredentialRepository {
	return &GitCredentialRepository{
		local:  fsstore.NewLocalCredentialRepository(rootDir, cipher),
		author: author,
		now:    time.Now,
	}
}

func (r *GitCredentialRepository) RootDir() string {
	return r.local.RootDir()
}

func (r *GitCredentialRepository) Exists(ctx context.Context) (bool, error) {
	return r.local.Exists(ctx)
}

func (r *GitCredentialRepository) Init(ctx context.Context) error {
	rootDir := r.local.RootDir()
	if _, err := os.Lstat(rootDir); err == nil {
		return faults.NewTypedError(faults.AlreadyExistsError, fmt.Sprintf("path %q already exists", rootDir), nil)
	} else if !errors.Is(err, os.ErrNotExist) {
		return ioError("failed to inspect repository directory", err)
	}

	if err := os.MkdirAll(rootDir, 0o700); err != nil {
		return ioError("failed to create repository directory", err)
	}

	debugctx.Printf(ctx, "git init root=%q", rootDir)
	if _, err := gogit.PlainInit(rootDir, false); err != nil {
		return ioError("failed to initialize git repository", err)
	}
	return r.local.EnsureNamespace(ctx)
}

func (r *GitCredentialRepository) Check(ctx context.Context) error {
	if err := r.local.Check(ctx); err != nil {
		return err
	}
	_, err := r.openRepository(ctx)
	return err
}

func (r *GitCredentialRepository) Get(ctx context.Context, name string) (credential.Record, error) {
	return r.local.Get(ctx, name)
}

func (r *GitCredentialRepository) Set(ctx context.Context, name string, account string, password string, passphrase string) error {
	return r.local.Set(ctx, name, account, password, passphrase)
}

func (r *GitCredentialRepository) Delete(ctx context.Context, name string) error {
	return r.local.Delete(ctx, name)
}

func (r *GitCredentialRepository) List(ctx context.Context) (iter.Seq2[string, error], error) {
	return r.local.List(ctx)
}

func (r *GitCredentialRepository) Commit(ctx context.Context, message string) (bool, error) {
	repo, err := r.openRepository(ctx)
	if err != nil {
		return false, err
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return false, ioError("failed to open git worktree", err)
	}

	status, err := worktree.Status()
	if err != nil {
		return false, ioError("failed to inspect git worktree status", err)
	}
	if status.IsClean() {
		return false, nil
	}

	if err := worktree.AddWithOptions(&gogit.AddOptions{All: true}); err != nil {
		return false, ioError("failed to stage git changes", err)
	}

	commitMessage := strings.TrimSpace(message)
	if commitMessage == "" {
		commitMessage = defaultCommitMessage
	}

	hash, err := worktree.Commit(commitMessage, &gogit.CommitOptions{
		All: true,
		Author: &object.Signature{
			Name:  r.author.Name,
			Email: r.author.Email,
			When:  r.now(),
		},
	})
	if err != nil {
		return false, ioError("failed to commit git changes", err)
	}

	debugctx.Printf(ctx, "git commit hash=%s", hash.String())
	return true, nil
}

func (r *GitCredentialRepository) WorktreeStatus(ctx context.Context) ([]repository.WorktreeStatusEntry, error) {
	repo, err := r.openRepository(ctx)
	if err != nil {
		return nil, err
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return nil, ioError("failed to open git worktree", err)
	}
	status, err := worktree.Status()
	if err != nil {
		return nil, ioError("failed to inspect git worktree status", err)
	}

	paths := make([]string, 0, len(status))
	for changedPath := range status {
		paths = append(paths, changedPath)
	}
	sort.Strings(paths)

	entries := make([]repository.WorktreeStatusEntry, 0, len(paths))
	for _, changedPath := range paths {
		fileStatus := status[changedPath]
		entries = append(entries, repository.WorktreeStatusEntry{
			Path:     changedPath,
			Staging:  statusCodeString(fileStatus.Staging),
			Worktree: statusCodeString(fileStatus.Worktree),
		})
	}
	return entries, nil
}

func (r *GitCredentialRepository) Reset(ctx context.Context, policy repository.ResetPolicy) error {
	repo, err := r.openRepository(ctx)
	if err != nil {
		return err
	}

	if _, err := repo.Head(); err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return faults.NewTypedError(faults.ValidationError, "repository has no commits to reset to", nil)
		}
		return ioError("failed to resolve git HEAD", err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return ioError("failed to open git worktree", err)
	}

	mode := gogit.MixedReset
	if policy.Hard {
		mode = gogit.HardReset
	}

	debugctx.Printf(ctx, "git reset hard=%t", policy.Hard)
	if err := worktree.Reset(&gogit.ResetOptions{Mode: mode}); err != nil {
		return ioError("failed to reset git worktree", err)
	}
	// a hard reset prunes directories it empties, credentials/ included
	return r.local.EnsureNamespace(ctx)
}

func (r *GitCredentialRepository) openRepository(ctx context.Context) (*gogit.Repository, error) {
	exists, err := r.local.Exists(ctx)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, faults.NewTypedError(
			faults.NotFoundError,
			fmt.Sprintf("repository %q does not exist; run init first", r.local.RootDir()),
			nil,
		)
	}

	repo, err := gogit.PlainOpen(r.local.RootDir())
	if err != nil {
		if errors.Is(err, gogit.ErrRepositoryNotExists) {
			return nil, ioError(fmt.Sprintf("repository %q is not a git working tree", r.local.RootDir()), err)
		}
		return nil, ioError("failed to open git repository", err)
	}
	return repo, nil
}

func statusCodeString(code gogit.StatusCode) string {
	if code == gogit.Unmodified {
		return " "
	}
	return string(code)
}

func ioError(message string, cause error) error {
	return faults.NewTypedError(faults.IOError, message, cause)
}
