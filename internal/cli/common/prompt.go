package common

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

// Prompter asks for values through huh on a terminal. Otherwise it reads one
// line of stdin per value, in call order.
type Prompter struct {
	command     *cobra.Command
	interactive bool
	reader      *bufio.Reader
}

func NewPrompter(command *cobra.Command) *Prompter {
	return &Prompter{
		command:     command,
		interactive: IsInteractiveTerminal(command),
		reader:      bufio.NewReader(command.InOrStdin()),
	}
}

// Input prompts for a visible value; surrounding whitespace is trimmed.
func (p *Prompter) Input(title string, required bool) (string, error) {
	value, err := p.ask(title, required, false)
	if err != nil {
		return "", err
	}
	value = strings.TrimSpace(value)
	if required && value == "" {
		return "", ValidationError(fmt.Sprintf("%s is required", normalizePrompt(title)), nil)
	}
	return value, nil
}

// Secret prompts for a hidden value. Only the line terminator is stripped.
func (p *Prompter) Secret(title string, required bool) (string, error) {
	value, err := p.ask(title, required, true)
	if err != nil {
		return "", err
	}
	if required && value == "" {
		return "", ValidationError(fmt.Sprintf("%s is required", normalizePrompt(title)), nil)
	}
	return value, nil
}

func (p *Prompter) ask(title string, required bool, hidden bool) (string, error) {
	if !p.interactive {
		return p.readLine(title)
	}

	value := ""
	field := huh.NewInput().
		Title(normalizePrompt(title)).
		Value(&value)
	if hidden {
		field.EchoMode(huh.EchoModePassword)
	}
	if required {
		field.Validate(huh.ValidateNotEmpty())
	}

	form := huh.NewForm(huh.NewGroup(field)).
		WithInput(p.command.InOrStdin()).
		WithOutput(p.command.ErrOrStderr()).
		WithShowHelp(false)

	err := form.Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return "", ValidationError("interactive prompt interrupted", nil)
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

func (p *Prompter) readLine(title string) (string, error) {
	line, err := p.reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", ioError("failed to read input", err)
	}
	if errors.Is(err, io.EOF) && line == "" {
		return "", ValidationError(fmt.Sprintf("input is required: %s", normalizePrompt(title)), nil)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func normalizePrompt(prompt string) string {
	title := strings.TrimSpace(prompt)
	title = strings.TrimSuffix(title, ":")
	if title == "" {
		return "Input"
	}
	return title
}
