// Package precision reduces a version string to a requested depth
// (major, minor, patch, patch_update) or extracts the VCS offset that
// snapshot packages carry after a git/svn/cvs marker.
package precision

import (
	"fmt"
	"regexp"
	"strings"
)

// Precision is the closed set of truncation levels understood by --parse-version.
type Precision int

const (
	// Major keeps the first numeric run: "3.14.1" -> "3".
	Major Precision = iota + 1
	// Minor keeps up to two dot-separated numeric runs: "3.14.1" -> "3.14".
	Minor
	// Patch keeps up to three dot-separated numeric runs: "3.14.1.2" -> "3.14.1".
	Patch
	// PatchUpdate keeps up to four dot-separated numeric runs: "14.2.1.468+g99" -> "14.2.1.468".
	PatchUpdate
	// Offset extracts the revision after a VCS marker: "3.14.1+git5.g9265358" -> "5".
	Offset
)

// Separators and VCS markers recognized by the offset pattern.
const (
	offsetSeparators = `+\-.~`
	offsetVCSMarkers = `git|svn|cvs`
)

var (
	majorRegex       = regexp.MustCompile(`^(\d+)`)
	minorRegex       = regexp.MustCompile(`^(\d+(?:\.\d+){0,1})`)
	patchRegex       = regexp.MustCompile(`^(\d+(?:\.\d+){0,2})`)
	patchUpdateRegex = regexp.MustCompile(`^(\d+(?:\.\d+){0,3})`)
	offsetRegex      = regexp.MustCompile(`^(?:\d+(?:\.\d+){0,3})[` + offsetSeparators + `](?:` + offsetVCSMarkers + `)(\d+)`)
)

var names = map[Precision]string{
	Major:       "major",
	Minor:       "minor",
	Patch:       "patch",
	PatchUpdate: "patch_update",
	Offset:      "offset",
}

// Values returns the accepted names in precedence order.
func Values() []string {
	return []string{"major", "minor", "patch", "patch_update", "offset"}
}

// String returns the flag value for p.
func (p Precision) String() string {
	if name, ok := names[p]; ok {
		return name
	}
	return fmt.Sprintf("Precision(%d)", int(p))
}

// IsValid returns true if p is one of the declared levels.
func (p Precision) IsValid() bool {
	_, ok := names[p]
	return ok
}

// InvalidPrecisionError is returned by Parse for an unknown level name.
type InvalidPrecisionError struct {
	Value string
}

func (e *InvalidPrecisionError) Error() string {
	return fmt.Sprintf("invalid value for --parse-version %q: expected one of [%s]", e.Value, strings.Join(Values(), "|"))
}

// Parse converts a flag value into a Precision.
func Parse(s string) (Precision, error) {
	for p, name := range names {
		if name == s {
			return p, nil
		}
	}
	return 0, &InvalidPrecisionError{Value: s}
}

// pattern returns the anchored expression bound to p. Its first capture
// group is the truncated result.
func (p Precision) pattern() *regexp.Regexp {
	switch p {
	case Major:
		return majorRegex
	case Minor:
		return minorRegex
	case Patch:
		return patchRegex
	case PatchUpdate:
		return patchUpdateRegex
	case Offset:
		return offsetRegex
	default:
		return nil
	}
}

// Truncate applies p to version. When the pattern does not match (the version
// does not start with a digit, or Offset finds no VCS marker) the version is
// returned unchanged.
func Truncate(p Precision, version string) string {
	re := p.pattern()
	if re == nil {
		return version
	}
	m := re.FindStringSubmatch(version)
	if len(m) < 2 {
		return version
	}
	return m[1]
}

// Apply is the method form of Truncate.
func (p Precision) Apply(version string) string {
	return Truncate(p, version)
}
