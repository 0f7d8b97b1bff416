package config

type ContextSelection struct {
	Name string
	// RepositoryPath overrides the selected context's repository path.
	RepositoryPath string
}

const (
	ContextFileEnvVar         = "CREDSTORE_CONTEXTS_FILE"
	RepositoryPathEnvVar      = "CREDSTORE_REPOSITORY"
	DefaultContextCatalogPath = "~/.credstore/contexts.yaml"
	DefaultRepositoryPath     = "~/.creds"
	DefaultContextName        = "default"
	DefaultGitAuthorName      = "credstore"
	DefaultGitAuthorEmail     = "credstore@local"
)

type ContextCatalog struct {
	Contexts   []Context `json:"contexts" yaml:"contexts"`
	CurrentCtx string    `json:"current-ctx" yaml:"current-ctx"`
}

type Context struct {
	Name       string     `json:"name" yaml:"name"`
	Repository Repository `json:"repository" yaml:"repository"`
	Cipher     *Cipher    `json:"cipher,omitempty" yaml:"cipher,omitempty"`
	Git        *Git       `json:"git,omitempty" yaml:"git,omitempty"`
}

type Repository struct {
	Path string `json:"path" yaml:"path"`
}

type Cipher struct {
	KDF *KDF `json:"kdf,omitempty" yaml:"kdf,omitempty"`
}

// Argon2id cost ceilings. Tokens above them are refused before any key is
// derived, so a tampered header cannot force an oversized derivation.
const (
	MaxKDFTime    = 16
	MaxKDFMemory  = 512 * 1024
	MaxKDFThreads = 255
)

// KDF holds Argon2id cost parameters. Memory is expressed in KiB; zero values
// fall back to provider defaults.
type KDF struct {
	Time    int `json:"time,omitempty" yaml:"time,omitempty"`
	Memory  int `json:"memory,omitempty" yaml:"memory,omitempty"`
	Threads int `json:"threads,omitempty" yaml:"threads,omitempty"`
}

type Git struct {
	AuthorName  string `json:"author-name,omitempty" yaml:"author-name,omitempty"`
	AuthorEmail string `json:"author-email,omitempty" yaml:"author-email,omitempty"`
}

func (c Context) KDF() *KDF {
	if c.Cipher == nil {
		return nil
	}
	return c.Cipher.KDF
}

func (c Context) GitAuthor() (string, string) {
	name := DefaultGitAuthorName
	email := DefaultGitAuthorEmail
	if c.Git != nil {
		if c.Git.AuthorName != "" {
			name = c.Git.AuthorName
		}
		if c.Git.AuthorEmail != "" {
			email = c.Git.AuthorEmail
		}
	}
	return name, email
}
