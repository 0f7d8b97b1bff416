package fsstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/crmarques/credstore/debugctx"
	"github.com/crmarques/credstore/internal/providers/shared/fsutil"
)

func (r *LocalCredentialRepository) Delete(ctx context.Context, name string) error {
	if err := r.requireRepository(ctx); err != nil {
		return err
	}

	normalizedName, err := NormalizeName(name)
	if err != nil {
		return err
	}
	targetPath, err := r.credentialFilePath(normalizedName)
	if err != nil {
		return err
	}

	info, err := os.Stat(targetPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return notFoundError(fmt.Sprintf("credential %q not found", normalizedName))
		}
		return ioError(fmt.Sprintf("failed to inspect credential %q", normalizedName), err)
	}
	if !info.Mode().IsRegular() {
		return notFoundError(fmt.Sprintf("credential %q not found", normalizedName))
	}

	debugctx.Printf(ctx, "fsstore delete name=%q file=%q", normalizedName, targetPath)
	if err := os.Remove(targetPath); err != nil {
		return ioError(fmt.Sprintf("failed to remove credential %q", normalizedName), err)
	}

	if err := fsutil.CleanupEmptyParents(filepath.Dir(targetPath), r.NamespaceDir()); err != nil {
		return ioError("failed to remove empty group directories", err)
	}
	return nil
}
