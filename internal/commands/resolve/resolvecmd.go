// Package resolve implements "pkgstamp resolve", which prints the version a
// stamping run would use.
package resolve

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/indaco/pkgstamp/internal/clix"
	"github.com/indaco/pkgstamp/internal/config"
	"github.com/indaco/pkgstamp/internal/printer"
	"github.com/indaco/pkgstamp/internal/resolver"
	"github.com/indaco/pkgstamp/internal/tui"
)

// Run returns the "resolve" command.
func Run(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "resolve",
		Usage:     "Print the version of an installed or locally available package",
		UsageText: "pkgstamp resolve --package <name> [--parse-version <depth>] [--source]",
		Flags: []cli.Flag{
			clix.PackageFlag(true),
			clix.ParseVersionFlag(),
			&cli.BoolFlag{
				Name:  "source",
				Usage: "Also print where the version came from",
				Local: true,
			},
			clix.ReposDirFlag(),
			clix.WorkersFlag(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runResolve(ctx, cmd, cfg)
		},
	}
}

func runResolve(ctx context.Context, cmd *cli.Command, cfg *config.Config) error {
	prec, truncate, err := clix.ParsePrecision(cmd)
	if err != nil {
		return err
	}

	env := clix.NewEnv(cmd, cfg)
	name := cmd.String("package")

	var res *resolver.Resolution
	err = tui.RunWithSpinner(ctx, "Resolving "+name+" version", func(ctx context.Context) error {
		var lookupErr error
		res, lookupErr = env.Resolver.Lookup(ctx, name, env.ReposDir)
		return lookupErr
	})
	if err != nil {
		return err
	}

	version := res.Version
	if truncate {
		version = prec.Apply(version)
	}
	printer.Println(version)

	if cmd.Bool("source") {
		switch res.Source {
		case resolver.SourceArchive:
			printer.PrintFaint("source: " + string(res.Source) + " " + res.Archive)
		default:
			printer.PrintFaint("source: " + string(res.Source))
		}
	}
	return nil
}
