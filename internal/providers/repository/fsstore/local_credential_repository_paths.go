package fsstore

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/crmarques/credstore/internal/providers/shared/fsutil"
	"github.com/crmarques/credstore/repository"
)

// NormalizeName trims surrounding slashes and validates each group segment of
// a credential name.
func NormalizeName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	trimmed = strings.ReplaceAll(trimmed, `\`, "/")
	trimmed = strings.Trim(trimmed, "/")
	if trimmed == "" {
		return "", validationError("credential name must not be empty", nil)
	}

	parts := strings.Split(trimmed, "/")
	for idx, part := range parts {
		switch {
		case idx < len(parts)-1 && strings.HasSuffix(part, repository.CredentialFileExtension):
			return "", validationError(fmt.Sprintf("credential name %q has group segment %q ending in %s", name, part, repository.CredentialFileExtension), nil)
		case part == "" || part == "." || part == "..":
			return "", validationError(fmt.Sprintf("credential name %q contains invalid path segment", name), nil)
		case strings.HasPrefix(part, "."):
			return "", validationError(fmt.Sprintf("credential name %q contains hidden path segment %q", name, part), nil)
		case strings.ContainsRune(part, 0):
			return "", validationError(fmt.Sprintf("credential name %q contains a NUL byte", name), nil)
		}
	}

	return strings.Join(parts, "/"), nil
}

func (r *LocalCredentialRepository) credentialFilePath(normalizedName string) (string, error) {
	if r.rootDir == "" || r.rootDir == "." {
		return "", validationError("repository root directory must not be empty", nil)
	}

	namespaceDir := r.NamespaceDir()
	filePath := filepath.Join(namespaceDir, filepath.FromSlash(normalizedName)+repository.CredentialFileExtension)
	if !fsutil.IsPathUnderRoot(namespaceDir, filePath) {
		return "", validationError(fmt.Sprintf("credential name %q escapes the credentials directory", normalizedName), nil)
	}
	return filePath, nil
}
