package tui

import (
	"os"

	"golang.org/x/term"
)

// ciEnvs are environment variables set by common CI systems.
var ciEnvs = []string{
	"CI",
	"CONTINUOUS_INTEGRATION",
	"GITHUB_ACTIONS",
	"GITLAB_CI",
	"JENKINS_HOME",
	"BUILDKITE",
	"DRONE",
	"TF_BUILD",
}

// IsInteractive reports whether prompts and spinners may be shown.
// It returns false when stdout is not a terminal or a CI
// environment is detected.
func IsInteractive() bool {
	if !IsTTY() {
		return false
	}
	for _, env := range ciEnvs {
		if os.Getenv(env) != "" {
			return false
		}
	}
	return true
}

// IsTTY checks if stdout is a terminal.
func IsTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd())) //nolint:gosec // G115: fd is a small value, no overflow risk
}
