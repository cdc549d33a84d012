package core

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
)

// Command describes a single external tool invocation.
type Command struct {
	Name  string
	Args  []string
	Dir   string
	Stdin io.Reader
}

// String renders the command line the way it would be typed in a shell.
func (c Command) String() string {
	return strings.Join(append([]string{c.Name}, c.Args...), " ")
}

// CommandResult holds the captured output of a finished command.
type CommandResult struct {
	Stdout []byte
	Stderr []byte
}

// CommandRunner runs external tools. Implementations return a *ToolError
// when the tool exits non-zero or cannot be started.
type CommandRunner interface {
	Run(ctx context.Context, cmd Command) (CommandResult, error)
}

// ToolError reports a failed external tool invocation together with
// everything it printed, so the build log shows why rpm or cpio gave up.
type ToolError struct {
	Command string
	Stdout  string
	Stderr  string
	Err     error
}

func (e *ToolError) Error() string {
	stdout := strings.TrimSpace(e.Stdout)
	if stdout == "" {
		stdout = "(no output on stdout)"
	}
	stderr := strings.TrimSpace(e.Stderr)
	if stderr == "" {
		stderr = "(no output on stderr)"
	}
	return fmt.Sprintf("command %q failed: %v\n\tstdout: %s\n\tstderr: %s", e.Command, e.Err, stdout, stderr)
}

func (e *ToolError) Unwrap() error {
	return e.Err
}

// ErrNoOutput is the cause recorded when a tool succeeds but prints nothing.
var ErrNoOutput = errors.New("no output")

// OSCommandRunner implements CommandRunner with os/exec.
type OSCommandRunner struct {
	execCommand func(ctx context.Context, name string, arg ...string) *exec.Cmd
}

// NewOSCommandRunner creates an OSCommandRunner backed by exec.CommandContext.
func NewOSCommandRunner() *OSCommandRunner {
	return &OSCommandRunner{
		execCommand: exec.CommandContext,
	}
}

// Verify OSCommandRunner implements CommandRunner.
var _ CommandRunner = (*OSCommandRunner)(nil)

func (r *OSCommandRunner) Run(ctx context.Context, c Command) (CommandResult, error) {
	cmd := r.execCommand(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	if c.Stdin != nil {
		cmd.Stdin = c.Stdin
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := CommandResult{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = fmt.Errorf("%w: %w", ctxErr, err)
		}
		return result, &ToolError{
			Command: c.String(),
			Stdout:  stdout.String(),
			Stderr:  stderr.String(),
			Err:     err,
		}
	}
	return result, nil
}

// MockCommandRunner is a CommandRunner for tests. It records every call and
// delegates to RunFn when set; otherwise it returns an empty result.
type MockCommandRunner struct {
	RunFn func(ctx context.Context, cmd Command) (CommandResult, error)

	mu    sync.Mutex
	calls []Command
}

// Verify MockCommandRunner implements CommandRunner.
var _ CommandRunner = (*MockCommandRunner)(nil)

func (m *MockCommandRunner) Run(ctx context.Context, cmd Command) (CommandResult, error) {
	m.mu.Lock()
	m.calls = append(m.calls, cmd)
	m.mu.Unlock()
	if m.RunFn != nil {
		return m.RunFn(ctx, cmd)
	}
	return CommandResult{}, nil
}

// Calls returns the commands run so far, in order.
func (m *MockCommandRunner) Calls() []Command {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Command, len(m.calls))
	copy(out, m.calls)
	return out
}
