// Package candidates implements "pkgstamp candidates", a table of every
// archive that declares the requested package.
package candidates

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/indaco/pkgstamp/internal/clix"
	"github.com/indaco/pkgstamp/internal/config"
	"github.com/indaco/pkgstamp/internal/printer"
	"github.com/indaco/pkgstamp/internal/scanner"
	"github.com/indaco/pkgstamp/internal/tui"
)

// Run returns the "candidates" command.
func Run(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "candidates",
		Usage:     "List package archives declaring a package, marking the one selected",
		UsageText: "pkgstamp candidates --package <name> [--repos-dir <dir>]",
		Flags: []cli.Flag{
			clix.PackageFlag(true),
			clix.ReposDirFlag(),
			clix.WorkersFlag(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runCandidates(ctx, cmd, cfg)
		},
	}
}

func runCandidates(ctx context.Context, cmd *cli.Command, cfg *config.Config) error {
	env := clix.NewEnv(cmd, cfg)
	name := cmd.String("package")

	var found []scanner.Candidate
	err := tui.RunWithSpinner(ctx, "Scanning "+env.ReposDir, func(ctx context.Context) error {
		var scanErr error
		found, scanErr = env.Scanner.Candidates(ctx, name, env.ReposDir)
		return scanErr
	})
	if err != nil {
		return err
	}

	if len(found) == 0 {
		printer.PrintWarning(fmt.Sprintf("No archive under %s declares package %q", env.ReposDir, name))
		return nil
	}

	printer.PrintTable([]string{"", "ARCHIVE", "VERSION"}, rows(found))
	return nil
}

// rows renders candidates in traversal order, marking the selected one.
func rows(found []scanner.Candidate) [][]string {
	best := scanner.Max(found)
	out := make([][]string, 0, len(found))
	for i := range found {
		mark := ""
		if &found[i] == best {
			mark = "*"
		}
		out = append(out, []string{mark, found[i].Path, found[i].Version.String()})
	}
	return out
}
