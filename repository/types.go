package repository

import "time"

// CredentialsDirName is the namespace root inside a repository.
const CredentialsDirName = "credentials"

// CredentialFileExtension is appended to a credential name to form its file.
const CredentialFileExtension = ".cred"

type ResetPolicy struct {
	Hard bool
}

type HistoryFilter struct {
	MaxCount int
	// Name limits history to commits touching a credential or a group.
	Name    string
	Reverse bool
}

type HistoryEntry struct {
	Hash    string    `json:"hash" yaml:"hash"`
	Author  string    `json:"author" yaml:"author"`
	Email   string    `json:"email" yaml:"email"`
	Date    time.Time `json:"date" yaml:"date"`
	Subject string    `json:"subject" yaml:"subject"`
	Body    string    `json:"body,omitempty" yaml:"body,omitempty"`
}

type WorktreeStatusEntry struct {
	Path     string `json:"path" yaml:"path"`
	Staging  string `json:"staging" yaml:"staging"`
	Worktree string `json:"worktree" yaml:"worktree"`
}
