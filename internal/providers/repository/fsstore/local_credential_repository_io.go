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
	"github.com/crmarques/credstore/internal/providers/shared/fsutil"
)

func (r *LocalCredentialRepository) Get(ctx context.Context, name string) (credential.Record, error) {
	if err := r.requireRepository(ctx); err != nil {
		return credential.Record{}, err
	}

	normalizedName, err := NormalizeName(name)
	if err != nil {
		return credential.Record{}, err
	}
	targetPath, err := r.credentialFilePath(normalizedName)
	if err != nil {
		return credential.Record{}, err
	}

	debugctx.Printf(ctx, "fsstore get name=%q file=%q", normalizedName, targetPath)
	info, err := os.Stat(targetPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return credential.Record{}, notFoundError(fmt.Sprintf("credential %q not found", normalizedName))
		}
		return credential.Record{}, ioError(fmt.Sprintf("failed to inspect credential %q", normalizedName), err)
	}
	// List never reports a directory as a record, so Get does not either
	if !info.Mode().IsRegular() {
		return credential.Record{}, notFoundError(fmt.Sprintf("credential %q not found", normalizedName))
	}

	data, err := os.ReadFile(targetPath)
	if err != nil {
		return credential.Record{}, ioError(fmt.Sprintf("failed to read credential %q", normalizedName), err)
	}

	record, err := credential.Unmarshal(data)
	if err != nil {
		return credential.Record{}, faults.NewTypedError(faults.ParseError, fmt.Sprintf("credential %q is malformed", normalizedName), err)
	}
	if record.Name != normalizedName {
		debugctx.Printf(ctx, "fsstore get name mismatch file=%q record_name=%q", normalizedName, record.Name)
	}
	return record, nil
}

func (r *LocalCredentialRepository) Set(ctx context.Context, name string, account string, password string, passphrase string) error {
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

	record, err := credential.New(r.cipher, normalizedName, account, password, passphrase)
	if err != nil {
		return err
	}
	encoded, err := record.Marshal()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(targetPath), 0o700); err != nil {
		return ioError(fmt.Sprintf("failed to create group directory for %q", normalizedName), err)
	}

	debugctx.Printf(ctx, "fsstore set name=%q file=%q", normalizedName, targetPath)
	if err := fsutil.WriteFileAtomic(targetPath, encoded, 0o600); err != nil {
		return ioError(fmt.Sprintf("failed to write credential %q", normalizedName), err)
	}
	return nil
}
