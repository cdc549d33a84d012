package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/indaco/pkgstamp/internal/logging"
	"github.com/indaco/pkgstamp/internal/tui"
)

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error

	if c.Workers < 1 {
		errs = append(errs, fmt.Errorf("workers must be at least 1, got %d", c.Workers))
	}
	if !strings.HasPrefix(c.ArchiveExt, ".") {
		errs = append(errs, fmt.Errorf("archive-ext %q must start with a dot", c.ArchiveExt))
	}
	if strings.ContainsAny(c.QueryCommand, " \t") {
		errs = append(errs, fmt.Errorf("query-command %q must be a single executable", c.QueryCommand))
	}
	if !slices.Contains(logging.Levels, strings.ToLower(c.LogLevel)) {
		errs = append(errs, fmt.Errorf("log-level %q: expected one of [%s]", c.LogLevel, strings.Join(logging.Levels, "|")))
	}

	if c.Theme != "" && !tui.IsValidTheme(c.Theme) {
		errs = append(errs, fmt.Errorf("theme %q: expected one of [%s]", c.Theme, strings.Join(tui.ValidThemes, "|")))
	}

	return errors.Join(errs...)
}
