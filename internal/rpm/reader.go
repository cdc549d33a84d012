// Package rpm reads package metadata (declared name and version) from the
// installed-package database and from package archive files.
package rpm

import (
	"context"
	"strings"

	"github.com/indaco/pkgstamp/internal/core"
)

// MetadataReader answers the three questions version resolution needs.
// Implementations must return an error (typically *core.ToolError) when the
// package is not installed or the archive cannot be read.
type MetadataReader interface {
	// InstalledVersion returns the version of the installed package name.
	InstalledVersion(ctx context.Context, name string) (string, error)
	// ArchiveName returns the package name declared inside the archive at path.
	ArchiveName(ctx context.Context, path string) (string, error)
	// ArchiveVersion returns the version declared inside the archive at path.
	ArchiveVersion(ctx context.Context, path string) (string, error)
}

// DefaultCommand is the query tool used when none is configured.
const DefaultCommand = "rpm"

// CLIReader implements MetadataReader by running the rpm query tool.
type CLIReader struct {
	runner  core.CommandRunner
	command string
	root    string
}

// Verify CLIReader implements MetadataReader.
var _ MetadataReader = (*CLIReader)(nil)

// Option configures a CLIReader.
type Option func(*CLIReader)

// WithCommand overrides the rpm binary (name or path).
func WithCommand(command string) Option {
	return func(r *CLIReader) {
		if command != "" {
			r.command = command
		}
	}
}

// WithRoot makes installed-package queries use the database below root
// (rpm --root), for pipelines that build inside a chroot.
func WithRoot(root string) Option {
	return func(r *CLIReader) {
		r.root = root
	}
}

// NewCLIReader creates a CLIReader running commands through runner.
func NewCLIReader(runner core.CommandRunner, opts ...Option) *CLIReader {
	r := &CLIReader{
		runner:  runner,
		command: DefaultCommand,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *CLIReader) InstalledVersion(ctx context.Context, name string) (string, error) {
	args := []string{"-q", "--queryformat", "%{VERSION}", name}
	if r.root != "" {
		args = append([]string{"--root", r.root}, args...)
	}
	return r.query(ctx, args)
}

func (r *CLIReader) ArchiveName(ctx context.Context, path string) (string, error) {
	return r.query(ctx, []string{"-qp", "--queryformat", "%{NAME}", path})
}

func (r *CLIReader) ArchiveVersion(ctx context.Context, path string) (string, error) {
	return r.query(ctx, []string{"-qp", "--queryformat", "%{VERSION}", path})
}

// query runs one bounded rpm invocation. Empty output counts as a failure.
func (r *CLIReader) query(ctx context.Context, args []string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, core.TimeoutQuery)
	defer cancel()

	cmd := core.Command{Name: r.command, Args: args}
	res, err := r.runner.Run(ctx, cmd)
	if err != nil {
		return "", err
	}

	out := strings.TrimSpace(string(res.Stdout))
	if out == "" {
		return "", &core.ToolError{
			Command: cmd.String(),
			Stderr:  string(res.Stderr),
			Err:     core.ErrNoOutput,
		}
	}
	return out, nil
}
