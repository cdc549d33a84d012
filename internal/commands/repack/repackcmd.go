// Package repack implements repack mode: bundle the payloads of every
// matching package archive into a single tar, tar.gz or zip archive.
package repack

import (
	"context"
	"errors"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/indaco/pkgstamp/internal/clix"
	"github.com/indaco/pkgstamp/internal/config"
	"github.com/indaco/pkgstamp/internal/printer"
	"github.com/indaco/pkgstamp/internal/repack"
	"github.com/indaco/pkgstamp/internal/tui"
)

// ModeFlags returns the flags that select repack mode on the root command.
func ModeFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "packages",
			Usage: "Comma separated package name substrings to repack",
			Local: true,
		},
		&cli.StringFlag{
			Name:  "archive",
			Usage: "Archive file name; .tar, .tar.gz, .tgz or .zip",
			Local: true,
		},
		&cli.StringFlag{
			Name:  "staging-dir",
			Usage: "Directory payloads are extracted to (default: temporary)",
			Local: true,
		},
	}
}

// IsRequested reports whether the root command was invoked in repack mode.
func IsRequested(cmd *cli.Command) bool {
	return cmd.IsSet("packages") || cmd.IsSet("archive")
}

// Run returns the "repack" command.
func Run(cfg *config.Config) *cli.Command {
	cmdFlags := ModeFlags()
	cmdFlags = append(cmdFlags,
		&cli.StringFlag{
			Name:  "outdir",
			Usage: "Output directory receiving the archive",
			Local: true,
		},
		clix.ReposDirFlag(),
	)

	return &cli.Command{
		Name:      "repack",
		Usage:     "Extract matching package archives and bundle their payloads",
		UsageText: "pkgstamp repack --packages <a,b> --archive <name> --outdir <dir>",
		Flags:     cmdFlags,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return Execute(ctx, cmd, cfg)
		},
	}
}

// Execute runs repack mode with the flags set on cmd.
func Execute(ctx context.Context, cmd *cli.Command, cfg *config.Config) error {
	env := clix.NewEnv(cmd, cfg)

	packages := repack.ParsePackages(cmd.String("packages"))
	archive := cmd.String("archive")
	outdir := cmd.String("outdir")
	switch {
	case len(packages) == 0:
		return errors.New("--packages is required")
	case archive == "":
		return errors.New("--archive is required")
	case outdir == "":
		return errors.New("--outdir is required")
	}
	if err := clix.RequireDir(ctx, env.FS, outdir); err != nil {
		return err
	}

	staging := cfg.StagingDir
	if cmd.IsSet("staging-dir") {
		staging = cmd.String("staging-dir")
	}

	req := repack.Request{
		Packages:   packages,
		ReposDir:   env.ReposDir,
		Archive:    archive,
		OutDir:     outdir,
		StagingDir: staging,
	}

	var dest string
	err := tui.RunWithSpinner(ctx, "Repacking packages", func(ctx context.Context) error {
		var repackErr error
		dest, repackErr = repack.New(env.Runner, env.Scanner, env.FS).Repack(ctx, req)
		return repackErr
	})
	if err != nil {
		return err
	}

	printer.PrintSuccess(fmt.Sprintf("Wrote %s", dest))
	return nil
}
