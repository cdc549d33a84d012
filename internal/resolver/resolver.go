// Package resolver determines the version of a package, first from the
// installed-package database and then from a local archive repository.
package resolver

import (
	"context"
	"errors"
	"fmt"

	"github.com/indaco/pkgstamp/internal/logging"
	"github.com/indaco/pkgstamp/internal/rpm"
	"github.com/indaco/pkgstamp/internal/scanner"
)

// ErrPackageVersionNotFound is matched by PackageVersionNotFoundError.
var ErrPackageVersionNotFound = errors.New("package version not found")

// PackageVersionNotFoundError reports that a package is neither installed
// nor present in the archive repository.
type PackageVersionNotFoundError struct {
	Package string
}

func (e *PackageVersionNotFoundError) Error() string {
	return fmt.Sprintf("package version not found for %q", e.Package)
}

func (e *PackageVersionNotFoundError) Is(target error) bool {
	return target == ErrPackageVersionNotFound
}

// Source tells where a resolved version came from.
type Source string

const (
	SourceInstalled Source = "installed"
	SourceArchive   Source = "archive"
)

// Resolution is the outcome of a successful lookup.
type Resolution struct {
	Version string
	Source  Source
	// Archive is the archive path when Source is SourceArchive.
	Archive string
}

// ArchiveScanner is the subset of *scanner.Scanner the resolver needs.
type ArchiveScanner interface {
	Scan(ctx context.Context, name, root string) (*scanner.Candidate, error)
}

// Resolver combines the installed query with the archive fallback.
type Resolver struct {
	reader  rpm.MetadataReader
	scanner ArchiveScanner
}

// New creates a Resolver.
func New(reader rpm.MetadataReader, archives ArchiveScanner) *Resolver {
	return &Resolver{reader: reader, scanner: archives}
}

// Resolve returns the version string of name.
func (r *Resolver) Resolve(ctx context.Context, name, archiveDir string) (string, error) {
	res, err := r.Lookup(ctx, name, archiveDir)
	if err != nil {
		return "", err
	}
	return res.Version, nil
}

// Lookup returns the version of name together with its source. The archive
// directory is only scanned when the installed query fails for any reason.
func (r *Resolver) Lookup(ctx context.Context, name, archiveDir string) (*Resolution, error) {
	log := logging.FromContext(ctx)

	version, err := r.reader.InstalledVersion(ctx, name)
	if err == nil && version != "" {
		log.Debug().Str("package", name).Str("version", version).Msg("found installed package")
		return &Resolution{Version: version, Source: SourceInstalled}, nil
	}
	log.Debug().Str("package", name).Err(err).Str("repos_dir", archiveDir).Msg("package not installed, scanning archives")

	candidate, err := r.scanner.Scan(ctx, name, archiveDir)
	if err != nil {
		if errors.Is(err, scanner.ErrNotFound) {
			return nil, &PackageVersionNotFoundError{Package: name}
		}
		return nil, fmt.Errorf("scanning archives for %q: %w", name, err)
	}

	if candidate.Version.IsZero() {
		return nil, &PackageVersionNotFoundError{Package: name}
	}
	return &Resolution{Version: candidate.Version.String(), Source: SourceArchive, Archive: candidate.Path}, nil
}
