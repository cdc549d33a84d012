package stamp

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"
	"github.com/tidwall/gjson"

	"github.com/indaco/pkgstamp/internal/core"
)

// Reader reads the value currently stamped in a file.
type Reader struct {
	fs core.FileSystem
}

// NewReader creates a new Reader with the given filesystem.
func NewReader(fs core.FileSystem) *Reader {
	return &Reader{fs: fs}
}

// Read returns the value addressed by cfg.
func (r *Reader) Read(ctx context.Context, cfg FileConfig) (*Result, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("file path is required")
	}
	if cfg.Format == "" {
		cfg.Format = FormatRegex
	}
	if !cfg.Format.IsValid() {
		return nil, fmt.Errorf("invalid format: %s", cfg.Format)
	}

	data, err := r.fs.ReadFile(ctx, cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %q: %w", cfg.Path, err)
	}

	var value string
	switch cfg.Format {
	case FormatJSON:
		value, err = readJSON(data, cfg.Path, cfg.Field)
	case FormatYAML:
		value, err = readYAML(data, cfg.Path, cfg.Field)
	case FormatTOML:
		value, err = readTOML(data, cfg.Path, cfg.Field)
	case FormatRaw:
		value = strings.TrimSpace(string(data))
	case FormatRegex:
		value, err = readRegex(data, cfg.Path, cfg.Pattern)
	}
	if err != nil {
		return nil, err
	}

	return &Result{
		Value:  value,
		Path:   cfg.Path,
		Format: cfg.Format,
		Field:  cfg.Field,
	}, nil
}

func readJSON(data []byte, path, field string) (string, error) {
	if field == "" {
		return "", fmt.Errorf("field is required for JSON format")
	}
	if !gjson.ValidBytes(data) {
		return "", fmt.Errorf("failed to parse JSON in %q", path)
	}

	res := gjson.GetBytes(data, field)
	if !res.Exists() {
		return "", fmt.Errorf("in file %q: field %q not found", path, field)
	}
	if res.Type != gjson.String {
		return "", fmt.Errorf("field %q in %q is not a string", field, path)
	}
	return res.String(), nil
}

func readYAML(data []byte, path, field string) (string, error) {
	if field == "" {
		return "", fmt.Errorf("field is required for YAML format")
	}

	var obj map[string]any
	if err := yaml.Unmarshal(data, &obj); err != nil {
		return "", fmt.Errorf("failed to parse YAML in %q: %w", path, err)
	}
	return stringField(obj, path, field)
}

func readTOML(data []byte, path, field string) (string, error) {
	if field == "" {
		return "", fmt.Errorf("field is required for TOML format")
	}

	var obj map[string]any
	if err := toml.Unmarshal(data, &obj); err != nil {
		return "", fmt.Errorf("failed to parse TOML in %q: %w", path, err)
	}
	return stringField(obj, path, field)
}

// readRegex returns the first capturing group of the first match, or the
// whole match when the pattern has no group.
func readRegex(data []byte, path, pattern string) (string, error) {
	if pattern == "" {
		return "", fmt.Errorf("pattern is required for regex format")
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return "", fmt.Errorf("invalid regex pattern %q: %w", pattern, err)
	}

	matches := re.FindSubmatch(data)
	switch {
	case matches == nil:
		return "", fmt.Errorf("pattern %q does not match contents of %q", pattern, path)
	case len(matches) >= 2:
		return string(matches[1]), nil
	default:
		return string(matches[0]), nil
	}
}

func stringField(obj map[string]any, path, field string) (string, error) {
	value, err := getNestedValue(obj, field)
	if err != nil {
		return "", fmt.Errorf("in file %q: %w", path, err)
	}
	s, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("field %q in %q is not a string", field, path)
	}
	return s, nil
}

// getNestedValue retrieves a value from a nested map using dot notation.
func getNestedValue(obj map[string]any, field string) (any, error) {
	parts := strings.Split(field, ".")
	current := any(obj)

	for i, part := range parts {
		currentMap, ok := current.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("field %q is not an object at path %q", strings.Join(parts[:i], "."), part)
		}
		value, exists := currentMap[part]
		if !exists {
			return nil, fmt.Errorf("field %q not found", field)
		}
		current = value
	}
	return current, nil
}
