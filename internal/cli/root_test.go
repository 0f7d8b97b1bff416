package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/crmarques/credstore/faults"
	clitestkit "github.com/crmarques/credstore/internal/cli/testkit"
)

func TestRequiredCommandPathsRegistered(t *testing.T) {
	t.Parallel()

	root := NewRootCommand(Dependencies{})
	registered := map[string]bool{}
	for _, path := range clitestkit.RegisteredPaths(root, nil) {
		registered[clitestkit.JoinPath(path)] = true
	}

	required := []string{
		"init", "list", "get", "set", "delete",
		"repo", "repo check", "repo status", "repo commit", "repo history", "repo reset", "repo tree",
		"config", "config list", "config current", "config show", "config add", "config use", "config delete",
		"completion", "completion bash", "completion zsh", "completion fish", "completion powershell",
		"version",
	}
	for _, path := range required {
		if !registered[path] {
			t.Fatalf("expected command path %q to be registered", path)
		}
	}
}

func TestRootWithoutArgsShowsHelp(t *testing.T) {
	t.Parallel()

	output, err := clitestkit.ExecuteCommandForTest(NewRootCommand(Dependencies{}), "")
	if err != nil {
		t.Fatalf("root returned error: %v", err)
	}
	for _, want := range []string{"Credential Commands:", "Basic Commands:", "Other Commands:", "--repository"} {
		if !strings.Contains(output, want) {
			t.Fatalf("expected help to contain %q, got:\n%s", want, output)
		}
	}
	if strings.Contains(output, "\n\n\n") {
		t.Fatalf("help output contains excessive blank lines:\n%s", output)
	}
}

func TestCredentialLifecycle(t *testing.T) {
	t.Parallel()

	env := newTestEnvironment(t)

	output := env.mustRun(t, "", "init")
	if output != "Initialized credential repository in "+env.repositoryPath+"\n" {
		t.Fatalf("unexpected init output %q", output)
	}
	if _, err := os.Stat(filepath.Join(env.repositoryPath, ".git")); err != nil {
		t.Fatalf("expected git working tree: %v", err)
	}

	env.mustRun(t, "alice\ns3cr3t\npw1\n", "set", "mail")

	output = env.mustRun(t, "pw1\n", "get", "mail")
	if output != "Retrieved: mail -> 'alice:s3cr3t'\n" {
		t.Fatalf("unexpected get output %q", output)
	}

	_, _, err := env.run(t, "pw2\n", "get", "mail")
	if !faults.IsCategory(err, faults.DecryptionError) {
		t.Fatalf("expected DecryptionError for wrong passphrase, got %v", err)
	}
	if code := ExitCodeForError(err); code != 4 {
		t.Fatalf("expected exit code 4, got %d", code)
	}

	env.mustRun(t, "alice\nrotated\npw1\n", "set", "mail")
	env.mustRun(t, "s3cr3t\npw1\n", "set", "work/vpn", "--account", "bob")

	output = env.mustRun(t, "", "list")
	if output != "mail\nwork/vpn\n" {
		t.Fatalf("unexpected list output %q", output)
	}

	env.mustRun(t, "", "delete", "mail")
	output = env.mustRun(t, "", "list")
	if output != "work/vpn\n" {
		t.Fatalf("unexpected list output after delete %q", output)
	}

	_, _, err = env.run(t, "", "get", "mail", "--account-only")
	if !faults.IsCategory(err, faults.NotFoundError) {
		t.Fatalf("expected NotFoundError for deleted credential, got %v", err)
	}
}

func TestGetStructuredOutput(t *testing.T) {
	t.Parallel()

	env := newTestEnvironment(t)
	env.mustRun(t, "", "init")
	env.mustRun(t, "alice\ns3cr3t\npw1\n", "set", "mail")

	output := env.mustRun(t, "", "get", "mail", "--account-only")
	if output != "alice\n" {
		t.Fatalf("unexpected account-only output %q", output)
	}

	output = env.mustRun(t, "pw1\n", "get", "mail", "-o", "json")
	var decoded map[string]string
	if err := json.Unmarshal([]byte(output), &decoded); err != nil {
		t.Fatalf("get json output did not decode: %v", err)
	}
	if decoded["name"] != "mail" || decoded["account"] != "alice" || decoded["password"] != "s3cr3t" {
		t.Fatalf("unexpected get json %#v", decoded)
	}

	output = env.mustRun(t, "pw1\n", "get", "mail", "--filter", ".password")
	if output != "s3cr3t\n" {
		t.Fatalf("unexpected filtered output %q", output)
	}
}

func TestListFilter(t *testing.T) {
	t.Parallel()

	env := newTestEnvironment(t)
	env.mustRun(t, "", "init")
	for _, name := range []string{"mail", "work/db", "work/vpn"} {
		env.mustRun(t, "s3cr3t\npw\n", "set", name, "-a", "alice")
	}

	output := env.mustRun(t, "", "list", "--filter", `.[] | select(startswith("work/"))`)
	if output != "work/db\nwork/vpn\n" {
		t.Fatalf("unexpected filtered list %q", output)
	}

	output = env.mustRun(t, "", "list", "-o", "json")
	var names []string
	if err := json.Unmarshal([]byte(output), &names); err != nil {
		t.Fatalf("list json output did not decode: %v", err)
	}
	if len(names) != 3 {
		t.Fatalf("expected 3 names, got %#v", names)
	}

	_, _, err := env.run(t, "", "list", "--filter", ".[")
	if !faults.IsCategory(err, faults.ValidationError) {
		t.Fatalf("expected ValidationError for bad filter, got %v", err)
	}
}

func TestCommandsBeforeInitReportNotFound(t *testing.T) {
	t.Parallel()

	env := newTestEnvironment(t)
	for _, args := range [][]string{{"list"}, {"get", "mail"}, {"set", "mail", "-a", "alice"}, {"repo", "status"}} {
		_, _, err := env.run(t, "pw\npw\n", args...)
		if !faults.IsCategory(err, faults.NotFoundError) {
			t.Fatalf("credstore %v: expected NotFoundError, got %v", args, err)
		}
		if code := ExitCodeForError(err); code != 3 {
			t.Fatalf("credstore %v: expected exit code 3, got %d", args, code)
		}
	}

	env.mustRun(t, "", "init")
	_, _, err := env.run(t, "", "init")
	if !faults.IsCategory(err, faults.AlreadyExistsError) {
		t.Fatalf("expected AlreadyExistsError for second init, got %v", err)
	}
}

func TestSetRequiresInput(t *testing.T) {
	t.Parallel()

	env := newTestEnvironment(t)
	env.mustRun(t, "", "init")

	_, _, err := env.run(t, "alice\n", "set", "mail")
	if !faults.IsCategory(err, faults.ValidationError) {
		t.Fatalf("expected ValidationError for missing passphrase, got %v", err)
	}
	_, _, err = env.run(t, "\n", "set", "mail")
	if !faults.IsCategory(err, faults.ValidationError) {
		t.Fatalf("expected ValidationError for empty account, got %v", err)
	}
	_, _, err = env.run(t, "alice\npw\npw\n", "set", "../escape")
	if !faults.IsCategory(err, faults.ValidationError) {
		t.Fatalf("expected ValidationError for escaping name, got %v", err)
	}
}

func TestRepoCommitAndHistory(t *testing.T) {
	t.Parallel()

	env := newTestEnvironment(t)
	env.mustRun(t, "", "init")
	env.mustRun(t, "alice\ns3cr3t\npw\n", "set", "mail")

	output := env.mustRun(t, "", "repo", "status")
	if output != "worktree:\n?? credentials/mail.cred\n" {
		t.Fatalf("unexpected status output %q", output)
	}

	output = env.mustRun(t, "", "repo", "commit", "-m", "add mail")
	if output != "committed=true\n" {
		t.Fatalf("unexpected commit output %q", output)
	}
	output = env.mustRun(t, "", "repo", "commit")
	if output != "committed=false reason=no_changes\n" {
		t.Fatalf("unexpected clean commit output %q", output)
	}

	output = env.mustRun(t, "", "repo", "history", "mail", "-o", "json")
	var entries []map[string]any
	if err := json.Unmarshal([]byte(output), &entries); err != nil {
		t.Fatalf("history json did not decode: %v", err)
	}
	if len(entries) != 1 || entries[0]["subject"] != "add mail" || entries[0]["author"] != "Test Author" {
		t.Fatalf("unexpected history %#v", entries)
	}

	output = env.mustRun(t, "", "repo", "check")
	if output != "repository="+env.repositoryPath+" credentials=1 status=ok\n" {
		t.Fatalf("unexpected check output %q", output)
	}
}

func TestRepoHardResetDiscardsUncommittedCredential(t *testing.T) {
	t.Parallel()

	env := newTestEnvironment(t)
	env.mustRun(t, "", "init")
	env.mustRun(t, "alice\ns3cr3t\npw\n", "set", "mail")
	env.mustRun(t, "", "repo", "commit")
	env.mustRun(t, "alice\nchanged\npw\n", "set", "mail")

	env.mustRun(t, "", "repo", "reset", "--hard")

	output := env.mustRun(t, "pw\n", "get", "mail")
	if output != "Retrieved: mail -> 'alice:s3cr3t'\n" {
		t.Fatalf("expected committed password after hard reset, got %q", output)
	}
}

func TestRepositoryFlagOverridesContext(t *testing.T) {
	t.Parallel()

	env := newTestEnvironment(t)
	otherRepository := filepath.Join(t.TempDir(), "other")

	output := env.mustRun(t, "", "--repository", otherRepository, "init")
	if !strings.Contains(output, otherRepository) {
		t.Fatalf("expected init in %q, got %q", otherRepository, output)
	}
	if _, err := os.Stat(env.repositoryPath); !os.IsNotExist(err) {
		t.Fatalf("expected context repository to stay absent, got %v", err)
	}

	_, _, err := env.run(t, "", "--context", "missing", "list")
	if !faults.IsCategory(err, faults.NotFoundError) {
		t.Fatalf("expected NotFoundError for unknown context, got %v", err)
	}
}

func TestOutputPolicyValidation(t *testing.T) {
	t.Parallel()

	env := newTestEnvironment(t)
	for _, args := range [][]string{
		{"repo", "check", "-o", "json"},
		{"config", "show", "-o", "json"},
		{"list", "-o", "xml"},
	} {
		_, _, err := env.run(t, "", args...)
		if !faults.IsCategory(err, faults.ValidationError) {
			t.Fatalf("credstore %v: expected ValidationError, got %v", args, err)
		}
	}
}

func TestDebugFlagPrintsTraceOutput(t *testing.T) {
	t.Parallel()

	env := newTestEnvironment(t)
	env.mustRun(t, "", "init")

	_, stderr, err := env.run(t, "", "--debug", "list")
	if err != nil {
		t.Fatalf("list returned error: %v", err)
	}
	if !strings.Contains(stderr, "root flags") || !strings.Contains(stderr, "context resolved") {
		t.Fatalf("expected debug trace on stderr, got %q", stderr)
	}
}

func TestMissingPositionalParameterPrintsUsage(t *testing.T) {
	t.Parallel()

	env := newTestEnvironment(t)
	_, stderr, err := env.run(t, "", "get")
	if err == nil {
		t.Fatal("expected error for missing name")
	}
	if !strings.Contains(stderr, "Usage:") || !strings.Contains(stderr, "credstore get <name>") {
		t.Fatalf("expected usage on stderr, got %q", stderr)
	}
}

func TestSetPromptHelpMentionsStdin(t *testing.T) {
	t.Parallel()

	set := commandByPath(NewRootCommand(Dependencies{}), "set")
	if set == nil {
		t.Fatal("expected set command")
	}
	if !strings.Contains(set.Long, "stdin") {
		t.Fatalf("expected set help to describe stdin input, got %q", set.Long)
	}
}
