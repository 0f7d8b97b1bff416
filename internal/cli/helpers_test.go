package cli

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"

	"github.com/crmarques/credstore/config"
	"github.com/crmarques/credstore/core"
	clitestkit "github.com/crmarques/credstore/internal/cli/testkit"
)

type testEnvironment struct {
	deps           Dependencies
	repositoryPath string
}

// newTestEnvironment wires real providers against a temp catalog holding one
// context with cheap key derivation.
func newTestEnvironment(t *testing.T) testEnvironment {
	t.Helper()

	tempDir := t.TempDir()
	bootstrap := core.BootstrapConfig{ContextCatalogPath: filepath.Join(tempDir, "contexts.yaml")}
	repositoryPath := filepath.Join(tempDir, "creds")

	contexts := core.NewContextService(bootstrap)
	err := contexts.Create(context.Background(), config.Context{
		Name:       "test",
		Repository: config.Repository{Path: repositoryPath},
		Cipher:     &config.Cipher{KDF: &config.KDF{Time: 1, Memory: 1024, Threads: 1}},
		Git:        &config.Git{AuthorName: "Test Author", AuthorEmail: "test@example.com"},
	})
	if err != nil {
		t.Fatalf("failed to create test context: %v", err)
	}

	return testEnvironment{
		deps: Dependencies{
			Contexts: contexts,
			OpenRepository: func(ctx context.Context, selection config.ContextSelection) (RepositoryServices, error) {
				credstoreContext, err := core.NewCredstoreContext(ctx, bootstrap, selection)
				if err != nil {
					return RepositoryServices{}, err
				}
				return RepositoryServices{
					Context:   credstoreContext.Context,
					Cipher:    credstoreContext.Cipher,
					Store:     credstoreContext.Store,
					Committer: credstoreContext.Committer,
					History:   credstoreContext.History,
					Status:    credstoreContext.Status,
					Resetter:  credstoreContext.Resetter,
				}, nil
			},
		},
		repositoryPath: repositoryPath,
	}
}

func (e testEnvironment) run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	return clitestkit.ExecuteCommandForTestWithStreams(NewRootCommand(e.deps), stdin, args...)
}

// mustRun fails the test when the command errors and returns its stdout.
func (e testEnvironment) mustRun(t *testing.T, stdin string, args ...string) string {
	t.Helper()
	stdout, stderr, err := e.run(t, stdin, args...)
	if err != nil {
		t.Fatalf("credstore %v returned error: %v (stderr %q)", args, err, stderr)
	}
	return stdout
}

func commandByPath(root *cobra.Command, path ...string) *cobra.Command {
	command := root
	for _, name := range path {
		found := false
		for _, child := range command.Commands() {
			if child.Name() != name {
				continue
			}
			command = child
			found = true
			break
		}
		if !found {
			return nil
		}
	}
	return command
}
