package fsstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/crmarques/credstore/credential"
	"github.com/crmarques/credstore/debugctx"
	"github.com/crmarques/credstore/faults"
	"github.com/crmarques/credstore/repository"
)

var _ repository.CredentialStore = (*LocalCredentialRepository)(nil)

// LocalCredentialRepository stores one JSON record per credential under
// <root>/credentials. It knows nothing about version control.
type LocalCredentialRepository struct {
	rootDir string
	cipher  credential.Cipher
	readDir func(string) ([]os.DirEntry, error)
}

func NewLocalCredentialRepository(rootDir string, cipher credential.Cipher) *LocalCredentialRepository {
	return &LocalCredentialRepository{
		rootDir: filepath.Clean(rootDir),
		cipher:  cipher,
		readDir: os.ReadDir,
	}
}

func (r *LocalCredentialRepository) RootDir() string {
	return r.rootDir
}

func (r *LocalCredentialRepository) NamespaceDir() string {
	return filepath.Join(r.rootDir, repository.CredentialsDirName)
}

func (r *LocalCredentialRepository) Exists(_ context.Context) (bool, error) {
	info, err := os.Stat(r.rootDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, ioError("failed to inspect repository directory", err)
	}
	return info.IsDir(), nil
}

func (r *LocalCredentialRepository) Init(ctx context.Context) error {
	if err := r.ensureAbsent(ctx); err != nil {
		return err
	}

	debugctx.Printf(ctx, "fsstore init root=%q", r.rootDir)
	if err := os.MkdirAll(r.rootDir, 0o700); err != nil {
		return ioError("failed to create repository directory", err)
	}
	return r.EnsureNamespace(ctx)
}

// EnsureNamespace creates the credentials directory inside an existing root.
func (r *LocalCredentialRepository) EnsureNamespace(_ context.Context) error {
	if err := os.MkdirAll(r.NamespaceDir(), 0o700); err != nil {
		return ioError("failed to create credentials directory", err)
	}
	return nil
}

func (r *LocalCredentialRepository) Check(ctx context.Context) error {
	if err := r.requireRepository(ctx); err != nil {
		return err
	}

	info, err := os.Stat(r.NamespaceDir())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ioError(fmt.Sprintf("repository %q has no %s directory", r.rootDir, repository.CredentialsDirName), err)
		}
		return ioError("failed to inspect credentials directory", err)
	}
	if !info.IsDir() {
		return ioError(fmt.Sprintf("repository %q %s path is not a directory", r.rootDir, repository.CredentialsDirName), nil)
	}
	return nil
}

func (r *LocalCredentialRepository) ensureAbsent(ctx context.Context) error {
	if _, err := os.Lstat(r.rootDir); err == nil {
		return alreadyExistsError(fmt.Sprintf("path %q already exists", r.rootDir))
	} else if !errors.Is(err, os.ErrNotExist) {
		return ioError("failed to inspect repository directory", err)
	}
	debugctx.Printf(ctx, "fsstore repository absent root=%q", r.rootDir)
	return nil
}

func (r *LocalCredentialRepository) requireRepository(ctx context.Context) error {
	exists, err := r.Exists(ctx)
	if err != nil {
		return err
	}
	if !exists {
		return notFoundError(fmt.Sprintf("repository %q does not exist; run init first", r.rootDir))
	}
	return nil
}

func validationError(message string, cause error) error {
	return faults.NewTypedError(faults.ValidationError, message, cause)
}

func notFoundError(message string) error {
	return faults.NewTypedError(faults.NotFoundError, message, nil)
}

func alreadyExistsError(message string) error {
	return faults.NewTypedError(faults.AlreadyExistsError, message, nil)
}

func ioError(message string, cause error) error {
	return faults.NewTypedError(faults.IOError, message, cause)
}
