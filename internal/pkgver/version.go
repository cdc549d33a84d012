// Package pkgver parses package version strings (as found in RPM headers)
// into values with a total order, so the archive scanner can pick the
// highest version among several candidates.
package pkgver

import (
	"strings"
)

// segmentKind orders the kinds of segment that can appear at the same
// position of two versions. The declaration order is the precedence order.
type segmentKind int

const (
	kindTilde      segmentKind = iota // "~", sorts before everything, even the end
	kindPreRelease                    // dev, alpha, beta, pre, preview, rc
	kindEnd                           // no segment left
	kindCaret                         // "^", after the end but before any other segment
	kindAlpha
	kindNumeric
)

type segment struct {
	kind segmentKind
	text string
}

var endSegment = segment{kind: kindEnd}

// preReleaseRank ranks the alphabetic labels treated as pre-release markers.
var preReleaseRank = map[string]int{
	"dev":     0,
	"alpha":   1,
	"beta":    2,
	"pre":     3,
	"preview": 3,
	"rc":      4,
}

// Version is a parsed package version.
// The zero value is the minimum sentinel: it sorts below every version that
// contains at least one numeric segment.
type Version struct {
	raw      string
	segments []segment
	numeric  bool
}

// Parse converts a raw version string into a Version. It never fails:
// a string without digits yields a Version that sorts below any version with
// a numeric segment.
//
// Digit runs become numeric segments, letter runs alphabetic segments, "~"
// and "^" are kept as markers and every other byte separates segments.
func Parse(raw string) Version {
	s := strings.TrimSpace(raw)
	v := Version{raw: s}

	for i := 0; i < len(s); {
		c := s[i]
		switch {
		case c == '~':
			v.segments = append(v.segments, segment{kind: kindTilde})
			i++
		case c == '^':
			v.segments = append(v.segments, segment{kind: kindCaret})
			i++
		case isDigit(c):
			j := i
			for j < len(s) && isDigit(s[j]) {
				j++
			}
			v.segments = append(v.segments, segment{kind: kindNumeric, text: strings.TrimLeft(s[i:j], "0")})
			v.numeric = true
			i = j
		case isAlpha(c):
			j := i
			for j < len(s) && isAlpha(s[j]) {
				j++
			}
			word := s[i:j]
			kind := kindAlpha
			if _, ok := preReleaseRank[strings.ToLower(word)]; ok {
				kind = kindPreRelease
			}
			v.segments = append(v.segments, segment{kind: kind, text: word})
			i = j
		default:
			i++
		}
	}

	return v
}

// String returns the version as it was parsed (surrounding whitespace trimmed).
func (v Version) String() string {
	return v.raw
}

// IsZero reports whether v has no numeric segment, i.e. it is the
// minimum sentinel produced for empty or unparsable input.
func (v Version) IsZero() bool {
	return !v.numeric
}

// Compare returns -1 if v < other, 0 if v == other and +1 if v > other.
//
// Segments are compared left to right. At a given position a tilde sorts
// lowest, then pre-release labels, then the end of the version, then a caret,
// then alphabetic and finally numeric segments. So "1.0~rc1" < "1.0rc1" <
// "1.0" < "1.0^1" < "1.0.git5" < "1.0.1". Versions whose segments are all
// equal are ordered by their raw strings, which makes Compare a total order.
func (v Version) Compare(other Version) int {
	if v.numeric != other.numeric {
		if v.numeric {
			return 1
		}
		return -1
	}

	n := max(len(v.segments), len(other.segments))
	for i := range n {
		if c := compareSegment(v.at(i), other.at(i)); c != 0 {
			return c
		}
	}

	return strings.Compare(v.raw, other.raw)
}

// Compare is the function form of Version.Compare, usable with slices.SortFunc.
func Compare(a, b Version) int {
	return a.Compare(b)
}

func (v Version) at(i int) segment {
	if i < len(v.segments) {
		return v.segments[i]
	}
	return endSegment
}

func compareSegment(a, b segment) int {
	if a.kind != b.kind {
		return compareInt(int(a.kind), int(b.kind))
	}

	switch a.kind {
	case kindNumeric:
		// Leading zeros are stripped, so the longer run is the larger number.
		if c := compareInt(len(a.text), len(b.text)); c != 0 {
			return c
		}
		return strings.Compare(a.text, b.text)
	case kindAlpha:
		return strings.Compare(a.text, b.text)
	case kindPreRelease:
		ra := preReleaseRank[strings.ToLower(a.text)]
		rb := preReleaseRank[strings.ToLower(b.text)]
		if c := compareInt(ra, rb); c != 0 {
			return c
		}
		return strings.Compare(a.text, b.text)
	default:
		return 0
	}
}

func compareInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
