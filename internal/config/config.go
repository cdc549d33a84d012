package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/indaco/pkgstamp/internal/core"
	"github.com/indaco/pkgstamp/internal/logging"
)

// DefaultFile is the configuration file looked up in the working directory.
const DefaultFile = ".pkgstamp.yaml"

// Environment variables overriding the configuration file.
const (
	EnvReposDir     = "PKGSTAMP_REPOS_DIR"
	EnvQueryCommand = "PKGSTAMP_QUERY_COMMAND"
	EnvLogLevel     = "PKGSTAMP_LOG_LEVEL"
	EnvWorkers      = "PKGSTAMP_WORKERS"
)

// Defaults.
const (
	DefaultReposDir     = "./repos"
	DefaultArchiveExt   = ".rpm"
	DefaultQueryCommand = "rpm"
	DefaultWorkers      = 1
	DefaultLogLevel     = logging.DefaultLevel
)

// Config is the main configuration structure for pkgstamp.
type Config struct {
	// ReposDir is the local repository tree scanned when a package is not installed.
	ReposDir string `yaml:"repos-dir"`

	// ArchiveExt is the filename suffix of package archives.
	ArchiveExt string `yaml:"archive-ext"`

	// QueryCommand is the rpm binary used for metadata queries.
	QueryCommand string `yaml:"query-command"`

	// RPMRoot, when set, queries the installed database below this root.
	RPMRoot string `yaml:"rpm-root,omitempty"`

	// Workers bounds concurrent archive queries. 1 scans sequentially.
	Workers int `yaml:"workers"`

	// LogLevel is one of trace, debug, info, warn, error, disabled.
	LogLevel string `yaml:"log-level"`

	// StagingDir is where repack extracts payloads. Empty uses a temporary directory.
	StagingDir string `yaml:"staging-dir,omitempty"`

	// Theme names the prompt theme.
	Theme string `yaml:"theme,omitempty"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		ReposDir:     DefaultReposDir,
		ArchiveExt:   DefaultArchiveExt,
		QueryCommand: DefaultQueryCommand,
		Workers:      DefaultWorkers,
		LogLevel:     DefaultLogLevel,
	}
}

// LoadConfigFn is the loader used by the CLI; tests may replace it.
var LoadConfigFn = Load

// Load builds the effective configuration: defaults, then the YAML file at
// path, then environment variables. An empty path looks for DefaultFile and
// silently falls back to defaults when it does not exist; an explicit path
// must exist.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		decoder := yaml.NewDecoder(bytes.NewReader(data), yaml.Strict())
		if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("invalid config %q: %w", path, err)
		}
	case os.IsNotExist(err) && !explicit:
		// fall back to defaults
	default:
		return nil, fmt.Errorf("failed to read config %q: %w", path, err)
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	cfg.fillDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %q: %w", path, err)
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if envPath := os.Getenv(EnvReposDir); envPath != "" {
		cleanPath := filepath.Clean(envPath)
		// Reject relative paths with traversal (use absolute paths instead)
		if strings.Contains(cleanPath, "..") {
			return fmt.Errorf("invalid %s: path traversal not allowed, use absolute path instead", EnvReposDir)
		}
		cfg.ReposDir = cleanPath
	}
	if cmd := os.Getenv(EnvQueryCommand); cmd != "" {
		cfg.QueryCommand = cmd
	}
	if level := os.Getenv(EnvLogLevel); level != "" {
		cfg.LogLevel = level
	}
	if workers := os.Getenv(EnvWorkers); workers != "" {
		n, err := strconv.Atoi(workers)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvWorkers, workers, err)
		}
		cfg.Workers = n
	}
	return nil
}

// fillDefaults restores defaults for keys explicitly set to empty values.
func (c *Config) fillDefaults() {
	if c.ReposDir == "" {
		c.ReposDir = DefaultReposDir
	}
	if c.ArchiveExt == "" {
		c.ArchiveExt = DefaultArchiveExt
	}
	if c.QueryCommand == "" {
		c.QueryCommand = DefaultQueryCommand
	}
	if c.Workers == 0 {
		c.Workers = DefaultWorkers
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
}

// ConfigFilePerm defines secure file permissions for config files (owner read/write only).
const ConfigFilePerm = core.PermOwnerRW
