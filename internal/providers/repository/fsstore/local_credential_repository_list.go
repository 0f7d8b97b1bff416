package fsstore

import (
	"context"
	"fmt"
	"io/fs"
	"iter"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/crmarques/credstore/debugctx"
	"github.com/crmarques/credstore/internal/providers/shared/fsutil"
	"github.com/crmarques/credstore/repository"
)

// List walks the credentials directory depth-first in pre-order. Siblings are
// visited in lexical order (os.ReadDir sorts by file name). Symlinks are
// followed while their target stays inside the credentials directory, so
// every listed name is readable through Get.
func (r *LocalCredentialRepository) List(ctx context.Context) (iter.Seq2[string, error], error) {
	if err := r.requireRepository(ctx); err != nil {
		return nil, err
	}

	namespaceDir := r.NamespaceDir()
	return func(yield func(string, error) bool) {
		walker := listWalker{repo: r, ctx: ctx, namespaceDir: namespaceDir, yield: yield}
		walker.walkGroup(namespaceDir, "", nil)
	}, nil
}

type listWalker struct {
	repo         *LocalCredentialRepository
	ctx          context.Context
	namespaceDir string
	yield        func(string, error) bool
}

// walkGroup reports whether the walk should continue. ancestors holds the
// resolved directories on the current branch; a symlink back into one of
// them is not descended again.
func (w listWalker) walkGroup(dir string, group string, ancestors []string) bool {
	if w.ctx != nil {
		if err := w.ctx.Err(); err != nil {
			w.yield("", err)
			return false
		}
	}

	entries, err := w.repo.readDir(dir)
	if err != nil {
		w.yield("", ioError(fmt.Sprintf("failed to read group %q", displayGroup(group)), err))
		return false
	}

	resolvedDir, err := filepath.EvalSymlinks(dir)
	if err != nil {
		w.yield("", ioError(fmt.Sprintf("failed to resolve group %q", displayGroup(group)), err))
		return false
	}
	ancestors = append(slices.Clip(ancestors), resolvedDir)

	for _, entry := range entries {
		entryName := entry.Name()
		if strings.HasPrefix(entryName, ".") {
			continue
		}

		qualified := path.Join(group, entryName)
		entryPath := filepath.Join(dir, entryName)
		entryType := entry.Type()
		if entryType&fs.ModeSymlink != 0 {
			resolvedType, ok := w.resolveLink(entryPath, qualified, ancestors)
			if !ok {
				continue
			}
			entryType = resolvedType
		}

		switch {
		case entryType.IsDir() && strings.HasSuffix(entryName, repository.CredentialFileExtension):
			// group names never carry the record extension
			debugctx.Printf(w.ctx, "fsstore list skipped group=%q", qualified)
		case entryType.IsDir():
			if !w.walkGroup(entryPath, qualified, ancestors) {
				return false
			}
		case entryType.IsRegular() && strings.HasSuffix(entryName, repository.CredentialFileExtension):
			if !w.yield(strings.TrimSuffix(qualified, repository.CredentialFileExtension), nil) {
				return false
			}
		default:
			debugctx.Printf(w.ctx, "fsstore list skipped entry=%q", qualified)
		}
	}
	return true
}

// resolveLink returns the type of a symlink target that stays inside the
// credentials directory and does not loop back to a directory being walked.
func (w listWalker) resolveLink(entryPath string, qualified string, ancestors []string) (fs.FileMode, bool) {
	if !fsutil.IsPathUnderRoot(w.namespaceDir, entryPath) {
		debugctx.Printf(w.ctx, "fsstore list skipped link outside credentials entry=%q", qualified)
		return 0, false
	}

	info, err := os.Stat(entryPath)
	if err != nil {
		debugctx.Printf(w.ctx, "fsstore list skipped unresolvable link entry=%q err=%v", qualified, err)
		return 0, false
	}

	if info.IsDir() {
		target, err := filepath.EvalSymlinks(entryPath)
		if err != nil || slices.Contains(ancestors, target) {
			debugctx.Printf(w.ctx, "fsstore list skipped cyclic link entry=%q", qualified)
			return 0, false
		}
	}
	return info.Mode().Type(), true
}

func displayGroup(group string) string {
	if group == "" {
		return "/"
	}
	return group
}
