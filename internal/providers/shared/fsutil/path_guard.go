package fsutil

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// IsPathUnderRoot reports whether candidate stays inside root once existing
// symlinks on both paths are resolved. Paths that do not exist yet are
// compared lexically from their deepest existing ancestor.
func IsPathUnderRoot(root string, candidate string) bool {
	rootResolved, err := resolveExistingPrefix(root)
	if err != nil {
		return false
	}
	candidateResolved, err := resolveExistingPrefix(candidate)
	if err != nil {
		return false
	}

	relPath, err := filepath.Rel(rootResolved, candidateResolved)
	if err != nil {
		return false
	}
	return relPath != ".." && !strings.HasPrefix(relPath, ".."+string(filepath.Separator))
}

// CleanupEmptyParents removes empty directories from startDir upwards and
// stops at rootDir, which is never removed.
func CleanupEmptyParents(startDir string, rootDir string) error {
	current := filepath.Clean(startDir)
	root := filepath.Clean(rootDir)

	for current != root && current != "." && current != string(filepath.Separator) {
		if !IsPathUnderRoot(root, current) {
			return nil
		}

		entries, err := os.ReadDir(current)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				current = filepath.Dir(current)
				continue
			}
			return err
		}
		if len(entries) > 0 {
			return nil
		}

		if err := os.Remove(current); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
		current = filepath.Dir(current)
	}
	return nil
}

func resolveExistingPrefix(path string) (string, error) {
	cleaned := filepath.Clean(path)
	if !filepath.IsAbs(cleaned) {
		absolute, err := filepath.Abs(cleaned)
		if err != nil {
			return "", err
		}
		cleaned = absolute
	}

	existing := cleaned
	missing := []string{}
	for {
		_, err := os.Lstat(existing)
		if err == nil {
			break
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", err
		}

		parent := filepath.Dir(existing)
		if parent == existing {
			break
		}
		missing = append([]string{filepath.Base(existing)}, missing...)
		existing = parent
	}

	resolved, err := filepath.EvalSymlinks(existing)
	if err != nil {
		return "", err
	}
	return filepath.Join(append([]string{resolved}, missing...)...), nil
}
