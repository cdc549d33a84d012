package cli

import (
	"context"
	"fmt"
	"slices"
	"strings"

	urfavecli "github.com/urfave/cli/v3"

	"github.com/indaco/pkgstamp/internal/commands/candidates"
	"github.com/indaco/pkgstamp/internal/commands/initialize"
	"github.com/indaco/pkgstamp/internal/commands/repack"
	"github.com/indaco/pkgstamp/internal/commands/replace"
	"github.com/indaco/pkgstamp/internal/commands/resolve"
	"github.com/indaco/pkgstamp/internal/commands/show"
	"github.com/indaco/pkgstamp/internal/config"
	"github.com/indaco/pkgstamp/internal/logging"
	"github.com/indaco/pkgstamp/internal/printer"
	"github.com/indaco/pkgstamp/internal/tui"
	"github.com/indaco/pkgstamp/internal/version"
)

// New builds and returns the root CLI command. The configuration is loaded in
// the Before hook so --config is honored; subcommands share the loaded value.
func New() *urfavecli.Command {
	cfg := config.Default()

	var (
		configPath string
		logLevel   string
		noColor    bool
	)

	flags := []urfavecli.Flag{
		&urfavecli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "Path to the configuration file",
			DefaultText: config.DefaultFile,
			Destination: &configPath,
		},
		&urfavecli.StringFlag{
			Name:        "log-level",
			Usage:       fmt.Sprintf("Diagnostics level, one of [%s]", strings.Join(logging.Levels, "|")),
			DefaultText: config.DefaultLogLevel,
			Destination: &logLevel,
		},
		&urfavecli.BoolFlag{
			Name:        "no-color",
			Usage:       "Disable colored output",
			Destination: &noColor,
		},
	}
	flags = append(flags, replace.Flags()...)
	flags = append(flags, repack.ModeFlags()...)

	return &urfavecli.Command{
		Name:    "pkgstamp",
		Version: fmt.Sprintf("v%s", version.GetVersion()),
		Usage:   "Stamp a package version or a literal string into a recipe file",
		UsageText: "pkgstamp --file <file> --regex <expr> --outdir <dir> (--package <name> | --replacement <text>) [--parse-version <depth>]\n" +
			"pkgstamp --packages <a,b> --archive <name> --outdir <dir>\n" +
			"pkgstamp <command> [flags]",
		EnableShellCompletion: true,
		Flags:                 flags,
		Before: func(ctx context.Context, cmd *urfavecli.Command) (context.Context, error) {
			printer.SetNoColor(noColor)

			loaded, err := config.LoadConfigFn(configPath)
			if err != nil {
				return ctx, err
			}
			*cfg = *loaded

			if logLevel != "" {
				if !slices.Contains(logging.Levels, strings.ToLower(logLevel)) {
					return ctx, fmt.Errorf("invalid value for --log-level %q: expected one of [%s]", logLevel, strings.Join(logging.Levels, "|"))
				}
				cfg.LogLevel = logLevel
			}
			tui.SetTheme(cfg.Theme)

			logger := logging.New(cfg.LogLevel, nil, noColor)
			return logging.WithLogger(ctx, logger), nil
		},
		Action: func(ctx context.Context, cmd *urfavecli.Command) error {
			if repack.IsRequested(cmd) {
				return repack.Execute(ctx, cmd, cfg)
			}
			return replace.Action(cfg)(ctx, cmd)
		},
		Commands: []*urfavecli.Command{
			resolve.Run(cfg),
			candidates.Run(cfg),
			show.Run(cfg),
			repack.Run(cfg),
			initialize.Run(cfg),
		},
	}
}
