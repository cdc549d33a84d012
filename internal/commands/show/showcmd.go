// Package show implements "pkgstamp show", which prints the value currently
// stamped into a file.
package show

import (
	"context"
	"errors"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/indaco/pkgstamp/internal/clix"
	"github.com/indaco/pkgstamp/internal/config"
	"github.com/indaco/pkgstamp/internal/printer"
	"github.com/indaco/pkgstamp/internal/stamp"
)

// Run returns the "show" command.
func Run(_ *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Print the value currently stamped into a file",
		UsageText: "pkgstamp show --file <path> [--format <fmt>] [--field <path> | --regex <expr>]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "file",
				Usage:    "File to read",
				Required: true,
				Local:    true,
			},
			&cli.StringFlag{
				Name:        "format",
				Usage:       fmt.Sprintf("File format, one of %v", stamp.Formats()),
				DefaultText: "guessed from the file name",
				Local:       true,
			},
			&cli.StringFlag{
				Name:  "field",
				Usage: "Dot-path of the field for json, yaml and toml files",
				Local: true,
			},
			&cli.StringFlag{
				Name:  "regex",
				Usage: "Expression whose first group (or whole match) is printed",
				Local: true,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runShow(ctx, cmd)
		},
	}
}

func runShow(ctx context.Context, cmd *cli.Command) error {
	fsys := clix.NewFileSystemFn()
	path := cmd.String("file")
	if err := clix.RequireFile(ctx, fsys, path); err != nil {
		return err
	}

	format := stamp.FormatForFile(path)
	if cmd.IsSet("format") {
		f, err := stamp.ParseFormat(cmd.String("format"))
		if err != nil {
			return err
		}
		format = f
	}

	fc := stamp.FileConfig{
		Path:    path,
		Format:  format,
		Field:   cmd.String("field"),
		Pattern: cmd.String("regex"),
	}
	switch {
	case format == stamp.FormatRegex && fc.Pattern == "":
		return errors.New("--regex is required")
	case format.IsStructured() && fc.Field == "":
		return fmt.Errorf("--field is required for --format %s", format)
	}

	res, err := stamp.NewReader(fsys).Read(ctx, fc)
	if err != nil {
		return err
	}
	printer.Println(res.Value)
	return nil
}
