package stamp

import (
	"fmt"
	"strings"
)

// Format selects how a replacement is written into a file.
type Format string

const (
	// FormatRegex substitutes regex matches anywhere in the text (Dockerfile, kiwi, spec files).
	FormatRegex Format = "regex"

	// FormatJSON sets a dot-path field in a JSON document.
	FormatJSON Format = "json"

	// FormatYAML sets a dot-path field in a YAML document.
	FormatYAML Format = "yaml"

	// FormatTOML sets a dot-path field in a TOML document.
	FormatTOML Format = "toml"

	// FormatRaw replaces the whole file with the value.
	FormatRaw Format = "raw"
)

// Formats lists the accepted --format values.
func Formats() []string {
	return []string{string(FormatRegex), string(FormatJSON), string(FormatYAML), string(FormatTOML), string(FormatRaw)}
}

func (f Format) String() string {
	return string(f)
}

// IsValid returns true if the format is a known valid format.
func (f Format) IsValid() bool {
	switch f {
	case FormatRegex, FormatJSON, FormatYAML, FormatTOML, FormatRaw:
		return true
	default:
		return false
	}
}

// IsStructured reports whether the format addresses a field by dot path.
func (f Format) IsStructured() bool {
	return f == FormatJSON || f == FormatYAML || f == FormatTOML
}

// ParseFormat converts a flag value to a Format. The empty string selects FormatRegex.
func ParseFormat(s string) (Format, error) {
	if s == "" {
		return FormatRegex, nil
	}
	f := Format(strings.ToLower(s))
	if !f.IsValid() {
		return "", fmt.Errorf("invalid format %q: expected one of [%s]", s, strings.Join(Formats(), "|"))
	}
	return f, nil
}

// FormatForFile guesses the format from a filename. Recipe files without a
// structured extension are treated as regex targets.
func FormatForFile(filename string) Format {
	lower := strings.ToLower(filename)
	switch {
	case strings.HasSuffix(lower, ".json"):
		return FormatJSON
	case strings.HasSuffix(lower, ".yaml"), strings.HasSuffix(lower, ".yml"):
		return FormatYAML
	case strings.HasSuffix(lower, ".toml"):
		return FormatTOML
	case strings.HasSuffix(lower, "/version"), lower == "version", strings.HasSuffix(lower, ".version"):
		return FormatRaw
	default:
		return FormatRegex
	}
}

// Target describes one stamping operation.
type Target struct {
	// Input is the file read.
	Input string

	// Output is the file written. It may equal Input.
	Output string

	// Format defaults to FormatRegex when empty.
	Format Format

	// Pattern is the regular expression for FormatRegex.
	Pattern string

	// First limits FormatRegex to the first match.
	First bool

	// Field is the dot-notation path for structured formats.
	// Example: "version", "package.version", "image.tag"
	Field string
}

func (t Target) format() Format {
	if t.Format == "" {
		return FormatRegex
	}
	return t.Format
}

// FileConfig describes where to read the current value from.
type FileConfig struct {
	Path    string
	Format  Format
	Field   string
	Pattern string
}

// Result is a value read from a file.
type Result struct {
	Value  string
	Path   string
	Format Format
	Field  string
}
