// Package stamp writes a replacement string into recipe files, either by
// substituting regular expression matches or by setting a field in a
// JSON, YAML or TOML document, and reads the current value back.
package stamp
