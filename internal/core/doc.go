// Package core holds the small abstractions shared across pkgstamp: a
// context-aware filesystem, a command runner for external package tools,
// and the permission and timeout constants used by both.
//
// Production code uses NewOSFileSystem and NewOSCommandRunner; tests swap in
// MockFileSystem and MockCommandRunner so no real files or subprocesses are
// touched.
package core
