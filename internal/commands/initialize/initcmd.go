// Package initialize implements "pkgstamp init", which writes the effective
// configuration to a .pkgstamp.yaml file.
package initialize

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/indaco/pkgstamp/internal/clix"
	"github.com/indaco/pkgstamp/internal/config"
	"github.com/indaco/pkgstamp/internal/printer"
	"github.com/indaco/pkgstamp/internal/tui"
)

// Run returns the "init" command.
func Run(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "init",
		Usage:     "Write the effective configuration to " + config.DefaultFile,
		UsageText: "pkgstamp init [--path <file>] [--force]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "path",
				Usage: "Configuration file to write",
				Value: config.DefaultFile,
				Local: true,
			},
			&cli.BoolFlag{
				Name:  "force",
				Usage: "Overwrite an existing file without asking",
				Local: true,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runInit(ctx, cmd, cfg)
		},
	}
}

func runInit(ctx context.Context, cmd *cli.Command, cfg *config.Config) error {
	path := cmd.String("path")

	if clix.Exists(ctx, clix.NewFileSystemFn(), path) && !cmd.Bool("force") {
		if !tui.IsInteractive() {
			return fmt.Errorf("%s already exists, use --force to overwrite", path)
		}
		ok, err := tui.Confirm("Overwrite "+path+"?", "")
		if err != nil {
			return err
		}
		if !ok {
			printer.PrintWarning(fmt.Sprintf("Kept existing %s", path))
			return nil
		}
	}

	if err := config.NewConfigSaver(nil, nil, nil).SaveTo(cfg, path); err != nil {
		return err
	}
	printer.PrintSuccess(fmt.Sprintf("Wrote %s", path))
	return nil
}
