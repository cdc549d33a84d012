package core

import (
	"os"
	"time"
)

// FileMode aliases os.FileMode so callers do not need to import os for permissions.
type FileMode = os.FileMode

const (
	// PermOwnerRW is used for files only the invoking user should touch (config, logs).
	PermOwnerRW FileMode = 0o600

	// PermPublicRead is used for generated recipe files and archives that the
	// build service reads back after the source service finishes.
	PermPublicRead FileMode = 0o644

	// PermDir is used for staging directories.
	PermDir FileMode = 0o755
)

const (
	// TimeoutQuery bounds a single package metadata query (rpm -q / rpm -qp).
	TimeoutQuery = 30 * time.Second

	// TimeoutExtract bounds the extraction of a single archive payload.
	TimeoutExtract = 5 * time.Minute
)
