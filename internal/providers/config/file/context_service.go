package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/crmarques/credstore/config"
	"github.com/crmarques/credstore/debugctx"
	"github.com/crmarques/credstore/faults"
	"github.com/crmarques/credstore/internal/providers/shared/fsutil"
)

var _ config.ContextService = (*FileContextService)(nil)

type FileContextService struct {
	contextCatalogPath string
	getenv             func(string) string
}

func NewFileContextService(path string) *FileContextService {
	return &FileContextService{
		contextCatalogPath: path,
		getenv:             os.Getenv,
	}
}

func (m *FileContextService) Create(_ context.Context, cfg config.Context) error {
	cfg = normalizeConfig(cfg)
	if err := validateConfig(cfg); err != nil {
		return err
	}

	contextCatalog, err := m.loadCatalog()
	if err != nil {
		return err
	}

	if idx := findContextIndex(contextCatalog.Contexts, cfg.Name); idx >= 0 {
		return faults.NewTypedError(faults.AlreadyExistsError, fmt.Sprintf("context %q already exists", cfg.Name), nil)
	}

	contextCatalog.Contexts = append(contextCatalog.Contexts, cfg)
	if contextCatalog.CurrentCtx == "" {
		contextCatalog.CurrentCtx = cfg.Name
	}

	return m.saveCatalog(contextCatalog)
}

func (m *FileContextService) Update(_ context.Context, cfg config.Context) error {
	cfg = normalizeConfig(cfg)
	if err := validateConfig(cfg); err != nil {
		return err
	}

	contextCatalog, err := m.loadCatalog()
	if err != nil {
		return err
	}

	idx := findContextIndex(contextCatalog.Contexts, cfg.Name)
	if idx < 0 {
		return notFoundError(fmt.Sprintf("context %q not found", cfg.Name))
	}

	contextCatalog.Contexts[idx] = cfg
	return m.saveCatalog(contextCatalog)
}

// Delete removes a context. Deleting the current context moves current-ctx to
// the first remaining entry.
func (m *FileContextService) Delete(_ context.Context, name string) error {
	contextCatalog, err := m.loadCatalog()
	if err != nil {
		return err
	}

	idx := findContextIndex(contextCatalog.Contexts, name)
	if idx < 0 {
		return notFoundError(fmt.Sprintf("context %q not found", name))
	}

	contextCatalog.Contexts = append(contextCatalog.Contexts[:idx], contextCatalog.Contexts[idx+1:]...)
	if contextCatalog.CurrentCtx == name {
		contextCatalog.CurrentCtx = ""
		if len(contextCatalog.Contexts) > 0 {
			contextCatalog.CurrentCtx = contextCatalog.Contexts[0].Name
		}
	}

	return m.saveCatalog(contextCatalog)
}

func (m *FileContextService) List(_ context.Context) ([]config.Context, error) {
	contextCatalog, err := m.loadCatalog()
	if err != nil {
		return nil, err
	}

	contexts := make([]config.Context, len(contextCatalog.Contexts))
	copy(contexts, contextCatalog.Contexts)
	return contexts, nil
}

func (m *FileContextService) SetCurrent(_ context.Context, name string) error {
	contextCatalog, err := m.loadCatalog()
	if err != nil {
		return err
	}

	if findContextIndex(contextCatalog.Contexts, name) < 0 {
		return notFoundError(fmt.Sprintf("context %q not found", name))
	}

	contextCatalog.CurrentCtx = name
	return m.saveCatalog(contextCatalog)
}

func (m *FileContextService) GetCurrent(_ context.Context) (config.Context, error) {
	contextCatalog, err := m.loadCatalog()
	if err != nil {
		return config.Context{}, err
	}
	if contextCatalog.CurrentCtx == "" {
		return config.Context{}, notFoundError("current context not set")
	}

	idx := findContextIndex(contextCatalog.Contexts, contextCatalog.CurrentCtx)
	if idx < 0 {
		return config.Context{}, notFoundError(fmt.Sprintf("current context %q not found", contextCatalog.CurrentCtx))
	}

	return contextCatalog.Contexts[idx], nil
}

// ResolveContext picks the selected or current context and settles its
// repository path: the selection override wins, then CREDSTORE_REPOSITORY,
// then the context value, then the default path. With no catalog entries the
// built-in default context is used.
func (m *FileContextService) ResolveContext(ctx context.Context, selection config.ContextSelection) (config.Context, error) {
	contextCatalog, err := m.loadCatalog()
	if err != nil {
		return config.Context{}, err
	}

	effectiveName := selection.Name
	if effectiveName == "" {
		effectiveName = contextCatalog.CurrentCtx
	}

	var resolved config.Context
	switch {
	case effectiveName == "" || (len(contextCatalog.Contexts) == 0 && effectiveName == config.DefaultContextName):
		resolved = defaultContext()
	default:
		idx := findContextIndex(contextCatalog.Contexts, effectiveName)
		if idx < 0 {
			return config.Context{}, notFoundError(fmt.Sprintf("context %q not found", effectiveName))
		}
		resolved = normalizeConfig(contextCatalog.Contexts[idx])
	}

	repositoryPath := selection.RepositoryPath
	if repositoryPath == "" {
		repositoryPath = m.getenv(config.RepositoryPathEnvVar)
	}
	if repositoryPath == "" {
		repositoryPath = resolved.Repository.Path
	}
	if repositoryPath == "" {
		repositoryPath = config.DefaultRepositoryPath
	}

	resolvedPath, err := resolveRepositoryPath(repositoryPath)
	if err != nil {
		return config.Context{}, err
	}
	resolved.Repository.Path = resolvedPath

	if err := validateConfig(resolved); err != nil {
		return config.Context{}, err
	}

	debugctx.Printf(ctx, "context resolved name=%q repository=%q", resolved.Name, resolved.Repository.Path)
	return resolved, nil
}

func (m *FileContextService) Validate(_ context.Context, cfg config.Context) error {
	return validateConfig(normalizeConfig(cfg))
}

func (m *FileContextService) saveCatalog(contextCatalog config.ContextCatalog) error {
	compacted := contextCatalog
	compacted.Contexts = make([]config.Context, len(contextCatalog.Contexts))
	for idx, item := range contextCatalog.Contexts {
		compacted.Contexts[idx] = compactConfigForPersistence(item)
	}

	if err := validateCatalog(compacted); err != nil {
		return err
	}

	resolvedPath, err := m.resolveCatalogPath()
	if err != nil {
		return err
	}

	encoded, err := encodeCatalog(compacted)
	if err != nil {
		return internalError("failed to encode context catalog", err)
	}

	if err := os.MkdirAll(filepath.Dir(resolvedPath), 0o700); err != nil {
		return ioError("failed to create context config directory", err)
	}
	if err := fsutil.WriteFileAtomic(resolvedPath, encoded, 0o600); err != nil {
		return ioError("failed to write context catalog", err)
	}
	return nil
}

func (m *FileContextService) loadCatalog() (config.ContextCatalog, error) {
	resolvedPath, err := m.resolveCatalogPath()
	if err != nil {
		return config.ContextCatalog{}, err
	}

	contextCatalog, err := decodeCatalogFile(resolvedPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return config.ContextCatalog{}, nil
		}
		if faults.IsCategory(err, faults.ParseError) {
			return config.ContextCatalog{}, err
		}
		return config.ContextCatalog{}, ioError("failed to read context catalog", err)
	}
	if err := ensureUserOnlyReadWriteFile(resolvedPath); err != nil {
		return config.ContextCatalog{}, err
	}

	if err := validateCatalog(contextCatalog); err != nil {
		return config.ContextCatalog{}, err
	}

	return contextCatalog, nil
}

func (m *FileContextService) resolveCatalogPath() (string, error) {
	return resolveCatalogPath(m.contextCatalogPath)
}

func defaultContext() config.Context {
	return config.Context{
		Name:       config.DefaultContextName,
		Repository: config.Repository{Path: config.DefaultRepositoryPath},
	}
}

func findContextIndex(contexts []config.Context, name string) int {
	for idx, item := range contexts {
		if item.Name == name {
			return idx
		}
	}
	return -1
}

func ensureUserOnlyReadWriteFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return ioError("failed to inspect context catalog permissions", err)
	}

	if info.Mode().Perm() == 0o600 {
		return nil
	}
	if err := os.Chmod(path, 0o600); err != nil {
		return ioError("failed to update context catalog permissions", err)
	}
	return nil
}

func validationError(message string, cause error) error {
	return faults.NewTypedError(faults.ValidationError, message, cause)
}

func notFoundError(message string) error {
	return faults.NewTypedError(faults.NotFoundError, message, nil)
}

func parseError(message string, cause error) error {
	return faults.NewTypedError(faults.ParseError, message, cause)
}

func ioError(message string, cause error) error {
	return faults.NewTypedError(faults.IOError, message, cause)
}

func internalError(message string, cause error) error {
	return faults.NewTypedError(faults.InternalError, message, cause)
}
