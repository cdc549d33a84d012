// Package clix holds the plumbing shared by pkgstamp commands: construction
// of the metadata reader, scanner and resolver from the effective
// configuration, common flags, and argument checks.
package clix

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"

	"github.com/indaco/pkgstamp/internal/config"
	"github.com/indaco/pkgstamp/internal/core"
	"github.com/indaco/pkgstamp/internal/precision"
	"github.com/indaco/pkgstamp/internal/resolver"
	"github.com/indaco/pkgstamp/internal/rpm"
	"github.com/indaco/pkgstamp/internal/scanner"
)

// NewRunnerFn builds the runner for external tools. Tests replace it.
var NewRunnerFn = func() core.CommandRunner {
	return core.NewOSCommandRunner()
}

// NewFileSystemFn builds the filesystem used by commands. Tests replace it.
var NewFileSystemFn = func() core.FileSystem {
	return core.NewOSFileSystem()
}

// Env bundles the collaborators a command needs.
type Env struct {
	Runner   core.CommandRunner
	FS       core.FileSystem
	Reader   rpm.MetadataReader
	Scanner  *scanner.Scanner
	Resolver *resolver.Resolver

	// ReposDir is the effective repository tree (flag over config).
	ReposDir string
}

// NewEnv wires the collaborators from cfg, letting the shared flags
// (--repos-dir, --workers) override it when set on cmd.
func NewEnv(cmd *cli.Command, cfg *config.Config) *Env {
	runner := NewRunnerFn()
	fsys := NewFileSystemFn()
	reader := rpm.NewCLIReader(runner,
		rpm.WithCommand(cfg.QueryCommand),
		rpm.WithRoot(cfg.RPMRoot),
	)
	scan := scanner.New(reader,
		scanner.WithFileSystem(fsys),
		scanner.WithExtension(cfg.ArchiveExt),
		scanner.WithWorkers(Workers(cmd, cfg)),
	)
	return &Env{
		Runner:   runner,
		FS:       fsys,
		Reader:   reader,
		Scanner:  scan,
		Resolver: resolver.New(reader, scan),
		ReposDir: ReposDir(cmd, cfg),
	}
}

/* ------------------------------------------------------------------------- */
/* SHARED FLAGS                                                              */
/* ------------------------------------------------------------------------- */

// ReposDirFlag returns the --repos-dir flag.
func ReposDirFlag() cli.Flag {
	return &cli.StringFlag{
		Name:        "repos-dir",
		Usage:       "Repository tree scanned when the package is not installed",
		DefaultText: config.DefaultReposDir,
		Local:       true,
	}
}

// WorkersFlag returns the --workers flag.
func WorkersFlag() cli.Flag {
	return &cli.IntFlag{
		Name:        "workers",
		Usage:       "Concurrent archive queries (1 scans sequentially)",
		DefaultText: "1",
		Local:       true,
	}
}

// PackageFlag returns the --package flag.
func PackageFlag(required bool) cli.Flag {
	return &cli.StringFlag{
		Name:     "package",
		Usage:    "Package whose version is looked up",
		Required: required,
		Local:    true,
	}
}

// ParseVersionFlag returns the --parse-version flag.
func ParseVersionFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "parse-version",
		Usage: fmt.Sprintf("Truncate the version to one of %v", precision.Values()),
		Local: true,
	}
}

// ReposDir returns --repos-dir when set, otherwise the configured directory.
func ReposDir(cmd *cli.Command, cfg *config.Config) string {
	if cmd.IsSet("repos-dir") {
		return cmd.String("repos-dir")
	}
	return cfg.ReposDir
}

// Workers returns --workers when set, otherwise the configured value.
func Workers(cmd *cli.Command, cfg *config.Config) int {
	if cmd.IsSet("workers") {
		return cmd.Int("workers")
	}
	return cfg.Workers
}

// ParsePrecision validates --parse-version. ok is false when the flag is empty.
func ParsePrecision(cmd *cli.Command) (p precision.Precision, ok bool, err error) {
	value := cmd.String("parse-version")
	if value == "" {
		return 0, false, nil
	}
	p, err = precision.Parse(value)
	if err != nil {
		return 0, false, err
	}
	return p, true, nil
}

/* ------------------------------------------------------------------------- */
/* ARGUMENT CHECKS                                                           */
/* ------------------------------------------------------------------------- */

// RequireFile fails unless path names an existing regular file.
func RequireFile(ctx context.Context, fsys core.FileSystem, path string) error {
	info, err := fsys.Stat(ctx, path)
	if err != nil || info.IsDir() {
		return fmt.Errorf("file %s not found", path)
	}
	return nil
}

// RequireDir fails unless path names an existing directory.
func RequireDir(ctx context.Context, fsys core.FileSystem, path string) error {
	info, err := fsys.Stat(ctx, path)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("output directory %s not found", path)
	}
	return nil
}

// OutputPath is the file written for input inside outdir.
func OutputPath(outdir, input string) string {
	return filepath.Join(outdir, filepath.Base(input))
}

// SameFile reports whether a and b refer to the same path once made absolute.
func SameFile(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return absA == absB
}

// Exists reports whether path exists. Stat errors other than "not exist"
// count as existing.
func Exists(ctx context.Context, fsys core.FileSystem, path string) bool {
	_, err := fsys.Stat(ctx, path)
	return err == nil || !errors.Is(err, os.ErrNotExist)
}
