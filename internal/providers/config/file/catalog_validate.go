package file

import (
	"fmt"
	"strings"

	"github.com/crmarques/credstore/config"
)

const (
	maxKDFTime    = config.MaxKDFTime
	maxKDFMemory  = config.MaxKDFMemory
	maxKDFThreads = config.MaxKDFThreads
)

func validateCatalog(contextCatalog config.ContextCatalog) error {
	if len(contextCatalog.Contexts) == 0 {
		if contextCatalog.CurrentCtx != "" {
			return validationError("current-ctx must be empty when contexts list is empty", nil)
		}
		return nil
	}

	seen := map[string]struct{}{}
	for _, item := range contextCatalog.Contexts {
		if err := validateConfig(item); err != nil {
			return err
		}
		if _, exists := seen[item.Name]; exists {
			return validationError(fmt.Sprintf("duplicate context name %q", item.Name), nil)
		}
		seen[item.Name] = struct{}{}
	}

	if contextCatalog.CurrentCtx == "" {
		return validationError("current-ctx must be set when contexts are defined", nil)
	}
	if _, exists := seen[contextCatalog.CurrentCtx]; !exists {
		return validationError(fmt.Sprintf("current-ctx %q does not match any context", contextCatalog.CurrentCtx), nil)
	}

	return nil
}

func validateConfig(cfg config.Context) error {
	cfg = normalizeConfig(cfg)

	if cfg.Name == "" {
		return validationError("context name must not be empty", nil)
	}
	if strings.ContainsAny(cfg.Name, " \t\r\n") {
		return validationError(fmt.Sprintf("context name %q must not contain whitespace", cfg.Name), nil)
	}

	if err := validateKDF(cfg.KDF()); err != nil {
		return err
	}

	if cfg.Git != nil && cfg.Git.AuthorEmail != "" && !strings.Contains(cfg.Git.AuthorEmail, "@") {
		return validationError("git.author-email must be an email address", nil)
	}

	return nil
}

func validateKDF(kdf *config.KDF) error {
	if kdf == nil {
		return nil
	}
	if kdf.Time < 0 || kdf.Memory < 0 || kdf.Threads < 0 {
		return validationError("cipher.kdf values must be non-negative", nil)
	}
	if kdf.Time > maxKDFTime {
		return validationError(fmt.Sprintf("cipher.kdf.time must not exceed %d", maxKDFTime), nil)
	}
	if kdf.Memory > maxKDFMemory {
		return validationError(fmt.Sprintf("cipher.kdf.memory must not exceed %d KiB", maxKDFMemory), nil)
	}
	if kdf.Threads > maxKDFThreads {
		return validationError(fmt.Sprintf("cipher.kdf.threads must not exceed %d", maxKDFThreads), nil)
	}
	if kdf.Memory > 0 && kdf.Threads > 0 && kdf.Memory < 8*kdf.Threads {
		return validationError("cipher.kdf.memory must be at least 8 KiB per thread", nil)
	}
	return nil
}

func normalizeConfig(cfg config.Context) config.Context {
	cfg.Name = strings.TrimSpace(cfg.Name)
	cfg.Repository.Path = strings.TrimSpace(cfg.Repository.Path)
	if cfg.Git != nil {
		git := *cfg.Git
		git.AuthorName = strings.TrimSpace(git.AuthorName)
		git.AuthorEmail = strings.TrimSpace(git.AuthorEmail)
		cfg.Git = &git
	}
	return cfg
}

func compactConfigForPersistence(cfg config.Context) config.Context {
	if cfg.Cipher != nil && (cfg.Cipher.KDF == nil || *cfg.Cipher.KDF == (config.KDF{})) {
		cfg.Cipher = nil
	}
	if cfg.Git != nil && *cfg.Git == (config.Git{}) {
		cfg.Git = nil
	}
	return cfg
}
