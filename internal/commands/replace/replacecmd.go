// Package replace implements the default pkgstamp action: stamp a package
// version or a literal replacement into a copy of a recipe file.
package replace

import (
	"context"
	"errors"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/indaco/pkgstamp/internal/clix"
	"github.com/indaco/pkgstamp/internal/config"
	"github.com/indaco/pkgstamp/internal/logging"
	"github.com/indaco/pkgstamp/internal/printer"
	"github.com/indaco/pkgstamp/internal/resolver"
	"github.com/indaco/pkgstamp/internal/stamp"
	"github.com/indaco/pkgstamp/internal/tui"
)

// ErrAborted is returned when the user declines to overwrite the output file.
var ErrAborted = errors.New("aborted: output file left untouched")

// Flags returns the flags of the default action.
func Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "file",
			Usage: "File to update",
			Local: true,
		},
		&cli.StringFlag{
			Name:  "regex",
			Usage: "Regular expression whose matches are replaced",
			Local: true,
		},
		&cli.StringFlag{
			Name:  "outdir",
			Usage: "Output directory receiving the updated copy",
			Local: true,
		},
		clix.PackageFlag(false),
		&cli.StringFlag{
			Name:  "replacement",
			Usage: "Literal replacement string for every match (\\1, \\g<name> and $1 are not expanded)",
			Local: true,
		},
		clix.ParseVersionFlag(),
		&cli.BoolFlag{
			Name:  "first",
			Usage: "Replace only the first match",
			Local: true,
		},
		&cli.StringFlag{
			Name:        "format",
			Usage:       fmt.Sprintf("How the value is written, one of %v", stamp.Formats()),
			DefaultText: string(stamp.FormatRegex),
			Local:       true,
		},
		&cli.StringFlag{
			Name:  "field",
			Usage: "Dot-path of the field to set for json, yaml and toml files",
			Local: true,
		},
		clix.ReposDirFlag(),
		clix.WorkersFlag(),
		&cli.BoolFlag{
			Name:  "force",
			Usage: "Overwrite an existing output file without asking",
			Local: true,
		},
	}
}

// Action returns the default action.
func Action(cfg *config.Config) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		return runReplace(ctx, cmd, cfg)
	}
}

func runReplace(ctx context.Context, cmd *cli.Command, cfg *config.Config) error {
	env := clix.NewEnv(cmd, cfg)

	target, err := buildTarget(ctx, cmd, env)
	if err != nil {
		return err
	}

	replacement, err := replacementValue(ctx, cmd, env)
	if err != nil {
		return err
	}

	if !clix.SameFile(target.Input, target.Output) && clix.Exists(ctx, env.FS, target.Output) {
		ok, err := tui.ConfirmOverwrite(target.Output, cmd.Bool("force"))
		if err != nil {
			return err
		}
		if !ok {
			return ErrAborted
		}
	}

	if err := stamp.NewStamper(env.FS).Apply(ctx, target, replacement); err != nil {
		return err
	}

	printer.PrintSuccess(fmt.Sprintf("Wrote %s (%s)", target.Output, replacement))
	return nil
}

// buildTarget validates the file arguments in the order the service checks
// them: input file, output directory, then format-specific flags.
func buildTarget(ctx context.Context, cmd *cli.Command, env *clix.Env) (stamp.Target, error) {
	input := cmd.String("file")
	outdir := cmd.String("outdir")
	if input == "" {
		return stamp.Target{}, errors.New("--file is required")
	}
	if outdir == "" {
		return stamp.Target{}, errors.New("--outdir is required")
	}
	if err := clix.RequireFile(ctx, env.FS, input); err != nil {
		return stamp.Target{}, err
	}
	if err := clix.RequireDir(ctx, env.FS, outdir); err != nil {
		return stamp.Target{}, err
	}

	format, err := stamp.ParseFormat(cmd.String("format"))
	if err != nil {
		return stamp.Target{}, err
	}

	target := stamp.Target{
		Input:   input,
		Output:  clix.OutputPath(outdir, input),
		Format:  format,
		Pattern: cmd.String("regex"),
		First:   cmd.Bool("first"),
		Field:   cmd.String("field"),
	}

	switch {
	case format == stamp.FormatRegex && target.Pattern == "":
		return stamp.Target{}, errors.New("--regex is required")
	case format.IsStructured() && target.Field == "":
		return stamp.Target{}, fmt.Errorf("--field is required for --format %s", format)
	}
	return target, nil
}

// replacementValue returns the literal --replacement, or the resolved version
// of --package truncated by --parse-version.
func replacementValue(ctx context.Context, cmd *cli.Command, env *clix.Env) (string, error) {
	pkg := cmd.String("package")
	hasReplacement := cmd.IsSet("replacement")

	switch {
	case pkg != "" && hasReplacement:
		return "", errors.New("--package and --replacement are mutually exclusive")
	case hasReplacement:
		return cmd.String("replacement"), nil
	case pkg == "":
		return "", errors.New("either --package or --replacement is required")
	}

	prec, truncate, err := clix.ParsePrecision(cmd)
	if err != nil {
		return "", err
	}

	var res *resolver.Resolution
	err = tui.RunWithSpinner(ctx, "Resolving "+pkg+" version", func(ctx context.Context) error {
		var lookupErr error
		res, lookupErr = env.Resolver.Lookup(ctx, pkg, env.ReposDir)
		return lookupErr
	})
	if err != nil {
		return "", err
	}

	version := res.Version
	if truncate {
		version = prec.Apply(version)
	}

	logging.FromContext(ctx).Info().
		Str("package", pkg).
		Str("source", string(res.Source)).
		Str("resolved", res.Version).
		Str("replacement", version).
		Msg("resolved package version")
	return version, nil
}
