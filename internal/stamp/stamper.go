package stamp

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"
	"github.com/tidwall/sjson"

	"github.com/indaco/pkgstamp/internal/core"
	"github.com/indaco/pkgstamp/internal/logging"
)

// Stamper writes a replacement into a copy of a recipe file.
type Stamper struct {
	fs core.FileSystem
}

// NewStamper creates a new Stamper with the given filesystem.
func NewStamper(fs core.FileSystem) *Stamper {
	return &Stamper{fs: fs}
}

// Apply reads t.Input, stamps replacement into it and writes the result to
// t.Output. The input is never modified unless Output names the same file.
func (s *Stamper) Apply(ctx context.Context, t Target, replacement string) error {
	out, err := s.Render(ctx, t, replacement)
	if err != nil {
		return err
	}
	if err := s.fs.WriteFile(ctx, t.Output, out, core.PermPublicRead); err != nil {
		return fmt.Errorf("failed to write file %q: %w", t.Output, err)
	}
	return nil
}

// Render returns the stamped content of t.Input without writing it.
func (s *Stamper) Render(ctx context.Context, t Target, replacement string) ([]byte, error) {
	if t.Input == "" {
		return nil, fmt.Errorf("file path is required")
	}
	format := t.format()
	if !format.IsValid() {
		return nil, fmt.Errorf("invalid format: %s", format)
	}

	// Raw output does not depend on the input content.
	if format == FormatRaw {
		return rawContent(replacement), nil
	}

	data, err := s.fs.ReadFile(ctx, t.Input)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %q: %w", t.Input, err)
	}

	switch format {
	case FormatJSON:
		return stampJSON(data, t.Input, t.Field, replacement)
	case FormatYAML:
		return stampYAML(data, t.Input, t.Field, replacement)
	case FormatTOML:
		return stampTOML(data, t.Input, t.Field, replacement)
	default:
		return stampRegex(ctx, data, t, replacement)
	}
}

// stampRegex substitutes every match of t.Pattern, or only the first when
// t.First is set. The replacement is literal: "$1" is not expanded.
func stampRegex(ctx context.Context, data []byte, t Target, replacement string) ([]byte, error) {
	if t.Pattern == "" {
		return nil, fmt.Errorf("pattern is required for regex format")
	}
	re, err := regexp.Compile(t.Pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid regex pattern %q: %w", t.Pattern, err)
	}

	loc := re.FindIndex(data)
	if loc == nil {
		logging.FromContext(ctx).Warn().
			Str("file", t.Input).
			Str("regex", t.Pattern).
			Msg("pattern does not match, copying file unchanged")
		return data, nil
	}

	if !t.First {
		return re.ReplaceAllLiteral(data, []byte(replacement)), nil
	}

	var buf bytes.Buffer
	buf.Grow(len(data) - (loc[1] - loc[0]) + len(replacement))
	buf.Write(data[:loc[0]])
	buf.WriteString(replacement)
	buf.Write(data[loc[1]:])
	return buf.Bytes(), nil
}

// stampJSON uses sjson so only the addressed field changes and key order is kept.
func stampJSON(data []byte, path, field, value string) ([]byte, error) {
	if field == "" {
		return nil, fmt.Errorf("field is required for JSON format")
	}

	updated, err := sjson.SetBytes(data, field, value)
	if err != nil {
		return nil, fmt.Errorf("failed to set %q in %q: %w", field, path, err)
	}
	if len(updated) > 0 && updated[len(updated)-1] != '\n' {
		updated = append(updated, '\n')
	}
	return updated, nil
}

func stampYAML(data []byte, path, field, value string) ([]byte, error) {
	if field == "" {
		return nil, fmt.Errorf("field is required for YAML format")
	}

	var obj map[string]any
	if err := yaml.Unmarshal(data, &obj); err != nil {
		return nil, fmt.Errorf("failed to parse YAML in %q: %w", path, err)
	}
	if obj == nil {
		obj = make(map[string]any)
	}
	if err := setNestedValue(obj, field, value); err != nil {
		return nil, fmt.Errorf("in file %q: %w", path, err)
	}

	updated, err := yaml.Marshal(obj)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal YAML for %q: %w", path, err)
	}
	return updated, nil
}

func stampTOML(data []byte, path, field, value string) ([]byte, error) {
	if field == "" {
		return nil, fmt.Errorf("field is required for TOML format")
	}

	var obj map[string]any
	if err := toml.Unmarshal(data, &obj); err != nil {
		return nil, fmt.Errorf("failed to parse TOML in %q: %w", path, err)
	}
	if obj == nil {
		obj = make(map[string]any)
	}
	if err := setNestedValue(obj, field, value); err != nil {
		return nil, fmt.Errorf("in file %q: %w", path, err)
	}

	updated, err := toml.Marshal(obj)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal TOML for %q: %w", path, err)
	}
	return updated, nil
}

func rawContent(value string) []byte {
	if !strings.HasSuffix(value, "\n") {
		value += "\n"
	}
	return []byte(value)
}

// setNestedValue sets a value in a nested map using dot notation, creating
// intermediate tables as needed.
func setNestedValue(obj map[string]any, field string, value any) error {
	parts := strings.Split(field, ".")
	current := obj

	for i := 0; i < len(parts)-1; i++ {
		part := parts[i]

		next, exists := current[part]
		if !exists {
			child := make(map[string]any)
			current[part] = child
			current = child
			continue
		}

		nextMap, ok := next.(map[string]any)
		if !ok {
			return fmt.Errorf("field %q is not an object at path %q", strings.Join(parts[:i+1], "."), part)
		}
		current = nextMap
	}

	current[parts[len(parts)-1]] = value
	return nil
}
