package common

import (
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/crmarques/credstore/faults"
)

func TestPrompterReadsLinesInOrder(t *testing.T) {
	t.Parallel()

	command := &cobra.Command{}
	command.SetIn(strings.NewReader("  alice  \r\n pass word \nkey"))
	prompter := NewPrompter(command)

	account, err := prompter.Input("Account:", true)
	if err != nil {
		t.Fatalf("Input returned error: %v", err)
	}
	if account != "alice" {
		t.Fatalf("expected trimmed account, got %q", account)
	}

	password, err := prompter.Secret("Password:", false)
	if err != nil {
		t.Fatalf("Secret returned error: %v", err)
	}
	if password != " pass word " {
		t.Fatalf("expected password to keep inner whitespace, got %q", password)
	}

	passphrase, err := prompter.Secret("Passphrase:", true)
	if err != nil {
		t.Fatalf("Secret returned error: %v", err)
	}
	if passphrase != "key" {
		t.Fatalf("expected final unterminated line, got %q", passphrase)
	}

	_, err = prompter.Secret("Passphrase:", true)
	if !faults.IsCategory(err, faults.ValidationError) {
		t.Fatalf("expected validation error at end of input, got %v", err)
	}
}

func TestPrompterRejectsEmptyRequiredValue(t *testing.T) {
	t.Parallel()

	command := &cobra.Command{}
	command.SetIn(strings.NewReader("\n\n"))
	prompter := NewPrompter(command)

	_, err := prompter.Input("Account", true)
	if !faults.IsCategory(err, faults.ValidationError) {
		t.Fatalf("expected validation error for empty account, got %v", err)
	}

	password, err := prompter.Secret("Password", false)
	if err != nil {
		t.Fatalf("optional secret returned error: %v", err)
	}
	if password != "" {
		t.Fatalf("expected empty password, got %q", password)
	}
}
