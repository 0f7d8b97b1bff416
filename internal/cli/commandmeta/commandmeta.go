package commandmeta

import "strings"

type OutputPolicy uint8

const (
	OutputPolicyStructured OutputPolicy = iota
	OutputPolicyTextOnly
	OutputPolicyYAMLDefaultTextOrYAML
)

// EmitsExecutionStatusPath reports whether a command prints the [OK]/[ERROR]
// status line on stderr.
func EmitsExecutionStatusPath(path string) bool {
	switch strings.TrimSpace(path) {
	case "credstore init",
		"credstore set",
		"credstore delete",
		"credstore repo commit",
		"credstore repo reset",
		"credstore config add",
		"credstore config use",
		"credstore config delete":
		return true
	default:
		return false
	}
}

func OutputPolicyForPath(path string) OutputPolicy {
	switch strings.TrimSpace(path) {
	case "credstore config show":
		return OutputPolicyYAMLDefaultTextOrYAML
	case "credstore repo check",
		"credstore repo tree",
		"credstore completion bash",
		"credstore completion zsh",
		"credstore completion fish",
		"credstore completion powershell":
		return OutputPolicyTextOnly
	default:
		return OutputPolicyStructured
	}
}
