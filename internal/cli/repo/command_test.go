package repo

import (
	"bytes"
	"context"
	"iter"
	"strings"
	"testing"
	"time"

	"github.com/crmarques/credstore/config"
	"github.com/crmarques/credstore/credential"
	"github.com/crmarques/credstore/faults"
	"github.com/crmarques/credstore/internal/cli/common"
	clitestkit "github.com/crmarques/credstore/internal/cli/testkit"
	"github.com/crmarques/credstore/repository"
)

type fakeRepository struct {
	names      []string
	checkErr   error
	committed  bool
	commitMsgs []string
	history    []repository.HistoryEntry
	filters    []repository.HistoryFilter
	status     []repository.WorktreeStatusEntry
	resets     []repository.ResetPolicy
}

func (f *fakeRepository) Exists(context.Context) (bool, error) { return true, nil }
func (f *fakeRepository) Init(context.Context) error           { return nil }
func (f *fakeRepository) Check(context.Context) error          { return f.checkErr }

func (f *fakeRepository) Get(_ context.Context, name string) (credential.Record, error) {
	return credential.Record{}, faults.NewTypedError(faults.NotFoundError, "credential "+name+" not found", nil)
}

func (f *fakeRepository) Set(context.Context, string, string, string, string) error { return nil }
func (f *fakeRepository) Delete(context.Context, string) error                      { return nil }

func (f *fakeRepository) List(context.Context) (iter.Seq2[string, error], error) {
	return func(yield func(string, error) bool) {
		for _, name := range f.names {
			if !yield(name, nil) {
				return
			}
		}
	}, nil
}

func (f *fakeRepository) Commit(_ context.Context, message string) (bool, error) {
	f.commitMsgs = append(f.commitMsgs, message)
	return f.committed, nil
}

func (f *fakeRepository) History(_ context.Context, filter repository.HistoryFilter) ([]repository.HistoryEntry, error) {
	f.filters = append(f.filters, filter)
	return f.history, nil
}

func (f *fakeRepository) WorktreeStatus(context.Context) ([]repository.WorktreeStatusEntry, error) {
	return f.status, nil
}

func (f *fakeRepository) Reset(_ context.Context, policy repository.ResetPolicy) error {
	f.resets = append(f.resets, policy)
	return nil
}

func executeRepoCommand(t *testing.T, fake *fakeRepository, args ...string) (string, error) {
	t.Helper()

	globalFlags := &common.GlobalFlags{Output: common.OutputAuto}
	deps := common.CommandDependencies{
		OpenRepository: func(context.Context, config.ContextSelection) (common.RepositoryServices, error) {
			return common.RepositoryServices{
				Context:   config.Context{Name: "test", Repository: config.Repository{Path: "/srv/creds"}},
				Store:     fake,
				Committer: fake,
				History:   fake,
				Status:    fake,
				Resetter:  fake,
			}, nil
		},
	}

	command := NewCommand(deps, globalFlags)
	command.PersistentFlags().StringVarP(&globalFlags.Output, "output", "o", common.OutputAuto, "output format")
	return clitestkit.ExecuteCommandForTest(command, "", args...)
}

func TestRepoCheckReportsCredentialCount(t *testing.T) {
	t.Parallel()

	output, err := executeRepoCommand(t, &fakeRepository{names: []string{"mail", "work/vpn"}}, "check")
	if err != nil {
		t.Fatalf("check returned error: %v", err)
	}
	if output != "repository=/srv/creds credentials=2 status=ok\n" {
		t.Fatalf("unexpected check output %q", output)
	}
}

func TestRepoCheckPropagatesLayoutErrors(t *testing.T) {
	t.Parallel()

	fake := &fakeRepository{checkErr: faults.NewTypedError(faults.IOError, "missing credentials directory", nil)}
	_, err := executeRepoCommand(t, fake, "check")
	if !faults.IsCategory(err, faults.IOError) {
		t.Fatalf("expected IOError, got %v", err)
	}
}

func TestRepoCommitPassesMessage(t *testing.T) {
	t.Parallel()

	fake := &fakeRepository{committed: true}
	output, err := executeRepoCommand(t, fake, "commit", "-m", "rotate mail")
	if err != nil {
		t.Fatalf("commit returned error: %v", err)
	}
	if output != "committed=true\n" {
		t.Fatalf("unexpected commit output %q", output)
	}
	if len(fake.commitMsgs) != 1 || fake.commitMsgs[0] != "rotate mail" {
		t.Fatalf("unexpected commit messages %#v", fake.commitMsgs)
	}

	clean := &fakeRepository{}
	output, err = executeRepoCommand(t, clean, "commit")
	if err != nil {
		t.Fatalf("commit returned error: %v", err)
	}
	if output != "committed=false reason=no_changes\n" {
		t.Fatalf("unexpected clean commit output %q", output)
	}
}

func TestRepoHistoryFlagsBuildFilter(t *testing.T) {
	t.Parallel()

	fake := &fakeRepository{
		history: []repository.HistoryEntry{
			{Hash: "0123456789abcdef0123", Subject: "add mail"},
		},
	}
	output, err := executeRepoCommand(t, fake, "history", "work/mail", "--max-count", "3", "--reverse", "--oneline")
	if err != nil {
		t.Fatalf("history returned error: %v", err)
	}
	if output != "0123456789ab add mail\n" {
		t.Fatalf("unexpected history output %q", output)
	}

	want := repository.HistoryFilter{MaxCount: 3, Name: "work/mail", Reverse: true}
	if len(fake.filters) != 1 || fake.filters[0] != want {
		t.Fatalf("unexpected filters %#v", fake.filters)
	}
}

func TestRepoHistoryRejectsNegativeMaxCount(t *testing.T) {
	t.Parallel()

	_, err := executeRepoCommand(t, &fakeRepository{}, "history", "--max-count", "-1")
	if !faults.IsCategory(err, faults.ValidationError) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestRepoHistoryJSONOutput(t *testing.T) {
	t.Parallel()

	fake := &fakeRepository{}
	output, err := executeRepoCommand(t, fake, "history", "-o", "json")
	if err != nil {
		t.Fatalf("history returned error: %v", err)
	}
	if strings.TrimSpace(output) != "[]" {
		t.Fatalf("expected empty json array, got %q", output)
	}
}

func TestRepoStatusAndReset(t *testing.T) {
	t.Parallel()

	fake := &fakeRepository{
		status: []repository.WorktreeStatusEntry{{Path: "credentials/mail.cred", Staging: "?", Worktree: "?"}},
	}
	output, err := executeRepoCommand(t, fake, "status")
	if err != nil {
		t.Fatalf("status returned error: %v", err)
	}
	if output != "worktree:\n?? credentials/mail.cred\n" {
		t.Fatalf("unexpected status output %q", output)
	}

	if _, err := executeRepoCommand(t, fake, "reset", "--hard"); err != nil {
		t.Fatalf("reset returned error: %v", err)
	}
	if len(fake.resets) != 1 || !fake.resets[0].Hard {
		t.Fatalf("expected one hard reset, got %#v", fake.resets)
	}
}

func TestRenderRepoWorktreeStatusTextClean(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	if err := renderRepoWorktreeStatusText(&out, nil); err != nil {
		t.Fatalf("render returned error: %v", err)
	}
	if out.String() != "worktree=clean\n" {
		t.Fatalf("unexpected clean output %q", out.String())
	}
}

func TestRenderRepoHistoryTextFull(t *testing.T) {
	t.Parallel()

	entries := []repository.HistoryEntry{
		{
			Hash:    "abc",
			Author:  "Ops",
			Email:   "ops@example.com",
			Date:    time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
			Subject: "add mail",
			Body:    "first line\nsecond line",
		},
		{Hash: "def", Author: "Ops", Email: "ops@example.com", Date: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), Subject: "init"},
	}

	var out bytes.Buffer
	if err := renderRepoHistoryText(&out, entries, false); err != nil {
		t.Fatalf("render returned error: %v", err)
	}

	want := "commit abc\n" +
		"Author: Ops <ops@example.com>\n" +
		"Date:   2026-01-02T03:04:05Z\n" +
		"\n    add mail\n" +
		"    first line\n" +
		"    second line\n" +
		"\n" +
		"commit def\n" +
		"Author: Ops <ops@example.com>\n" +
		"Date:   2026-01-01T00:00:00Z\n" +
		"\n    init\n"
	if out.String() != want {
		t.Fatalf("unexpected history text:\n%s\nwant:\n%s", out.String(), want)
	}
}

func TestRenderRepoTreeText(t *testing.T) {
	t.Parallel()

	got := renderRepoTreeText([]string{"mail", "work/vpn", "work/db/prod", "work/db/staging"})
	want := strings.Join([]string{
		"mail",
		"work",
		"├── db",
		"│   ├── prod",
		"│   └── staging",
		"└── vpn",
	}, "\n")
	if got != want {
		t.Fatalf("unexpected tree:\n%s\nwant:\n%s", got, want)
	}
}
