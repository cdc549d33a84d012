// Package logging builds the zerolog logger used for diagnostics and carries
// it through context.Context. User-facing output goes through printer instead.
package logging

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// DefaultLevel is used when no level is configured.
const DefaultLevel = "warn"

// Levels lists the accepted --log-level values.
var Levels = []string{"trace", "debug", "info", "warn", "error", "disabled"}

// ParseLevel converts a level name into a zerolog level.
// Empty or unknown names fall back to DefaultLevel.
func ParseLevel(level string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl, _ = zerolog.ParseLevel(DefaultLevel)
	}
	return lvl
}

// New returns a console logger writing to w at the given level.
// A nil w writes to stderr so diagnostics never mix with stamped output.
func New(level string, w io.Writer, noColor bool) zerolog.Logger {
	if w == nil {
		w = os.Stderr
	}
	console := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.TimeOnly,
		NoColor:    noColor,
	}
	return zerolog.New(console).
		Level(ParseLevel(level)).
		With().
		Timestamp().
		Logger()
}

// WithLogger attaches logger to ctx.
func WithLogger(ctx context.Context, logger zerolog.Logger) context.Context {
	return logger.WithContext(ctx)
}

// FromContext returns the logger stored in ctx, or a disabled logger.
func FromContext(ctx context.Context) *zerolog.Logger {
	return zerolog.Ctx(ctx)
}
