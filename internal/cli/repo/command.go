package repo

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/crmarques/credstore/internal/cli/common"
	"github.com/crmarques/credstore/repository"
)

type repoCommitOutput struct {
	Committed bool `json:"committed" yaml:"committed"`
}

type repoCheckOutput struct {
	Path        string `json:"path" yaml:"path"`
	Credentials int    `json:"credentials" yaml:"credentials"`
}

func NewCommand(deps common.CommandDependencies, globalFlags *common.GlobalFlags) *cobra.Command {
	command := &cobra.Command{
		Use:   "repo",
		Short: "Inspect and version the credential repository",
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, _ []string) error {
			return command.Help()
		},
	}

	command.AddCommand(
		newCheckCommand(deps, globalFlags),
		newStatusCommand(deps, globalFlags),
		newCommitCommand(deps, globalFlags),
		newHistoryCommand(deps, globalFlags),
		newResetCommand(deps, globalFlags),
		newTreeCommand(deps, globalFlags),
	)

	return command
}

func newCheckCommand(deps common.CommandDependencies, globalFlags *common.GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify the repository layout",
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, _ []string) error {
			services, err := common.OpenRepository(command.Context(), deps, globalFlags)
			if err != nil {
				return err
			}
			if err := services.Store.Check(command.Context()); err != nil {
				return err
			}

			names, err := services.Store.List(command.Context())
			if err != nil {
				return err
			}
			items, err := repository.CollectNames(names)
			if err != nil {
				return err
			}

			value := repoCheckOutput{Path: services.Context.Repository.Path, Credentials: len(items)}
			return common.WriteOutput(command, globalFlags.Output, value, func(w io.Writer, output repoCheckOutput) error {
				_, err := fmt.Fprintf(w, "repository=%s credentials=%d status=ok\n", output.Path, output.Credentials)
				return err
			})
		},
	}
}

func newStatusCommand(deps common.CommandDependencies, globalFlags *common.GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show uncommitted changes",
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, _ []string) error {
			services, err := common.OpenRepository(command.Context(), deps, globalFlags)
			if err != nil {
				return err
			}
			reader, err := common.RequireStatusReader(services)
			if err != nil {
				return err
			}

			entries, err := reader.WorktreeStatus(command.Context())
			if err != nil {
				return err
			}
			if entries == nil {
				entries = []repository.WorktreeStatusEntry{}
			}
			return common.WriteOutput(command, globalFlags.Output, entries, renderRepoWorktreeStatusText)
		},
	}
}

func newCommitCommand(deps common.CommandDependencies, globalFlags *common.GlobalFlags) *cobra.Command {
	var message string

	command := &cobra.Command{
		Use:   "commit",
		Short: "Commit every pending credential change",
		Example: "  credstore repo commit\n" +
			"  credstore repo commit -m \"rotate mail password\"",
		Args: cobra.NoArgs,
		RunE: func(command *cobra.Command, _ []string) error {
			services, err := common.OpenRepository(command.Context(), deps, globalFlags)
			if err != nil {
				return err
			}
			committer, err := common.RequireCommitter(services)
			if err != nil {
				return err
			}

			committed, err := committer.Commit(command.Context(), message)
			if err != nil {
				return err
			}
			return common.WriteOutput(command, globalFlags.Output, repoCommitOutput{Committed: committed}, renderRepoCommitText)
		},
	}

	command.Flags().StringVarP(&message, "message", "m", "", "commit message")
	return command
}

func newHistoryCommand(deps common.CommandDependencies, globalFlags *common.GlobalFlags) *cobra.Command {
	var maxCount int
	var reverse bool
	var oneline bool

	command := &cobra.Command{
		Use:   "history [name]",
		Short: "Show commit history, optionally for one credential or group",
		Example: "  credstore repo history\n" +
			"  credstore repo history work/mail --oneline --max-count 5",
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: common.CredentialNameArgCompletionFunc(deps, globalFlags),
		RunE: func(command *cobra.Command, args []string) error {
			if maxCount < 0 {
				return common.ValidationError("flag --max-count must be greater than or equal to zero", nil)
			}

			services, err := common.OpenRepository(command.Context(), deps, globalFlags)
			if err != nil {
				return err
			}
			reader, err := common.RequireHistoryReader(services)
			if err != nil {
				return err
			}

			filter := repository.HistoryFilter{MaxCount: maxCount, Reverse: reverse}
			if len(args) == 1 {
				filter.Name = args[0]
			}

			entries, err := reader.History(command.Context(), filter)
			if err != nil {
				return err
			}
			if entries == nil {
				entries = []repository.HistoryEntry{}
			}
			return common.WriteOutput(command, globalFlags.Output, entries, func(w io.Writer, value []repository.HistoryEntry) error {
				return renderRepoHistoryText(w, value, oneline)
			})
		},
	}

	command.Flags().IntVar(&maxCount, "max-count", 0, "limit the number of commits (0 means no limit)")
	command.Flags().BoolVar(&reverse, "reverse", false, "show oldest commits first")
	command.Flags().BoolVar(&oneline, "oneline", false, "show one commit per line")
	return command
}

func newResetCommand(deps common.CommandDependencies, globalFlags *common.GlobalFlags) *cobra.Command {
	var hard bool

	command := &cobra.Command{
		Use:   "reset",
		Short: "Reset the working tree to the last commit",
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, _ []string) error {
			services, err := common.OpenRepository(command.Context(), deps, globalFlags)
			if err != nil {
				return err
			}
			resetter, err := common.RequireResetter(services)
			if err != nil {
				return err
			}
			return resetter.Reset(command.Context(), repository.ResetPolicy{Hard: hard})
		},
	}

	command.Flags().BoolVarP(&hard, "hard", "H", false, "discard uncommitted credential changes")
	return command
}

func newTreeCommand(deps common.CommandDependencies, globalFlags *common.GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "tree",
		Short: "Show credentials grouped as a tree",
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, _ []string) error {
			services, err := common.OpenRepository(command.Context(), deps, globalFlags)
			if err != nil {
				return err
			}

			names, err := services.Store.List(command.Context())
			if err != nil {
				return err
			}
			items, err := repository.CollectNames(names)
			if err != nil {
				return err
			}

			rendered := renderRepoTreeText(items)
			if rendered == "" {
				return nil
			}
			return common.WriteText(command, globalFlags.Output, rendered)
		},
	}
}

func renderRepoWorktreeStatusText(w io.Writer, entries []repository.WorktreeStatusEntry) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "worktree=clean")
		return err
	}
	if _, err := fmt.Fprintln(w, "worktree:"); err != nil {
		return err
	}
	for _, entry := range entries {
		staging := " "
		worktree := " "
		if entry.Staging != "" {
			staging = entry.Staging
		}
		if entry.Worktree != "" {
			worktree = entry.Worktree
		}
		if _, err := fmt.Fprintf(w, "%s%s %s\n", staging, worktree, entry.Path); err != nil {
			return err
		}
	}
	return nil
}

func renderRepoCommitText(w io.Writer, value repoCommitOutput) error {
	if value.Committed {
		_, err := fmt.Fprintln(w, "committed=true")
		return err
	}
	_, err := fmt.Fprintln(w, "committed=false reason=no_changes")
	return err
}

func renderRepoHistoryText(w io.Writer, entries []repository.HistoryEntry, oneline bool) error {
	for idx, entry := range entries {
		if oneline {
			shortHash := strings.TrimSpace(entry.Hash)
			if len(shortHash) > 12 {
				shortHash = shortHash[:12]
			}
			if _, err := fmt.Fprintf(w, "%s %s\n", shortHash, strings.TrimSpace(entry.Subject)); err != nil {
				return err
			}
			continue
		}

		if idx > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "commit %s\n", strings.TrimSpace(entry.Hash)); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "Author: %s <%s>\n", strings.TrimSpace(entry.Author), strings.TrimSpace(entry.Email)); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "Date:   %s\n", entry.Date.Format(time.RFC3339)); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "\n    %s\n", strings.TrimSpace(entry.Subject)); err != nil {
			return err
		}
		if strings.TrimSpace(entry.Body) == "" {
			continue
		}
		for _, line := range strings.Split(strings.ReplaceAll(entry.Body, "\r\n", "\n"), "\n") {
			if _, err := fmt.Fprintf(w, "    %s\n", line); err != nil {
				return err
			}
		}
	}
	return nil
}

type repoTreeNode struct {
	children map[string]*repoTreeNode
}

// renderRepoTreeText draws credential names as an indented tree. Groups and
// credentials share one namespace, so a name that is also a group prefix
// appears once with its children below it.
func renderRepoTreeText(names []string) string {
	root := &repoTreeNode{children: map[string]*repoTreeNode{}}

	for _, name := range names {
		trimmed := strings.Trim(strings.TrimSpace(name), "/")
		if trimmed == "" {
			continue
		}

		current := root
		for _, segment := range strings.Split(trimmed, "/") {
			if segment == "" {
				continue
			}
			child, found := current.children[segment]
			if !found {
				child = &repoTreeNode{children: map[string]*repoTreeNode{}}
				current.children[segment] = child
			}
			current = child
		}
	}

	lines := make([]string, 0, len(names))
	for _, name := range sortedRepoTreeChildren(root) {
		lines = append(lines, name)
		appendRepoTreeChildLines(&lines, root.children[name], "")
	}
	return strings.Join(lines, "\n")
}

func appendRepoTreeChildLines(lines *[]string, node *repoTreeNode, prefix string) {
	children := sortedRepoTreeChildren(node)
	for idx, name := range children {
		connector := "├── "
		nextPrefix := prefix + "│   "
		if idx == len(children)-1 {
			connector = "└── "
			nextPrefix = prefix + "    "
		}

		*lines = append(*lines, prefix+connector+name)
		appendRepoTreeChildLines(lines, node.children[name], nextPrefix)
	}
}

func sortedRepoTreeChildren(node *repoTreeNode) []string {
	if node == nil || len(node.children) == 0 {
		return nil
	}

	names := make([]string, 0, len(node.children))
	for name := range node.children {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
