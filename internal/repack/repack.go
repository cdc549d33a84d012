// Package repack extracts the payload of package archives into a staging
// directory and bundles the result into a single tar, tar.gz or zip file.
package repack

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/indaco/pkgstamp/internal/core"
	"github.com/indaco/pkgstamp/internal/logging"
)

// ArchiveLister finds archive files by package-name substring.
// *scanner.Scanner satisfies it.
type ArchiveLister interface {
	Files(ctx context.Context, name, root string) ([]string, error)
}

// Request describes one repack run.
type Request struct {
	// Packages are filename substrings; every matching archive is extracted.
	Packages []string
	// ReposDir is the repository tree searched for archives.
	ReposDir string
	// Archive is the output file name. Its extension selects the format.
	Archive string
	// OutDir receives the archive.
	OutDir string
	// StagingDir holds the extracted payload. When empty a temporary
	// directory is created and removed afterwards.
	StagingDir string
}

// Repacker runs rpm2cpio and cpio for each matching archive.
type Repacker struct {
	runner core.CommandRunner
	lister ArchiveLister
	fs     core.FileSystem
}

// New creates a Repacker.
func New(runner core.CommandRunner, lister ArchiveLister, fs core.FileSystem) *Repacker {
	return &Repacker{runner: runner, lister: lister, fs: fs}
}

// ParsePackages splits a comma separated --packages value, dropping blanks.
func ParsePackages(value string) []string {
	var out []string
	for _, p := range strings.Split(value, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Repack extracts every archive matching req.Packages and returns the path of
// the bundle written to req.OutDir.
func (r *Repacker) Repack(ctx context.Context, req Request) (string, error) {
	if len(req.Packages) == 0 {
		return "", fmt.Errorf("at least one package is required")
	}
	format, err := ParseArchiveFormat(req.Archive)
	if err != nil {
		return "", err
	}

	staging := req.StagingDir
	if staging == "" {
		tmp, err := os.MkdirTemp("", "pkgstamp-repack-")
		if err != nil {
			return "", fmt.Errorf("failed to create staging directory: %w", err)
		}
		defer os.RemoveAll(tmp)
		staging = tmp
	} else if err := r.fs.MkdirAll(ctx, staging, core.PermDir); err != nil {
		return "", fmt.Errorf("failed to create staging directory %q: %w", staging, err)
	}

	log := logging.FromContext(ctx)
	for _, pkg := range req.Packages {
		files, err := r.lister.Files(ctx, pkg, req.ReposDir)
		if err != nil {
			return "", err
		}
		if len(files) == 0 {
			log.Warn().Str("package", pkg).Str("repos_dir", req.ReposDir).Msg("no archive matches package")
			continue
		}
		for _, file := range files {
			if err := r.extract(ctx, file, staging); err != nil {
				return "", err
			}
		}
	}

	dest := filepath.Join(req.OutDir, filepath.Base(req.Archive))
	if err := WriteArchive(ctx, format, staging, dest); err != nil {
		return "", err
	}
	log.Info().Str("archive", dest).Str("format", format.String()).Msg("archive written")
	return dest, nil
}

// extract unpacks one archive payload into dir: rpm2cpio <file> | cpio -idmv.
func (r *Repacker) extract(ctx context.Context, file, dir string) error {
	ctx, cancel := context.WithTimeout(ctx, core.TimeoutExtract)
	defer cancel()

	realPath, err := r.fs.EvalSymlinks(ctx, file)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", file, err)
	}

	payload, err := r.runner.Run(ctx, core.Command{Name: "rpm2cpio", Args: []string{realPath}})
	if err != nil {
		return err
	}

	res, err := r.runner.Run(ctx, core.Command{
		Name:  "cpio",
		Args:  []string{"-idmv"},
		Dir:   dir,
		Stdin: bytes.NewReader(payload.Stdout),
	})
	if err != nil {
		return err
	}

	logging.FromContext(ctx).Debug().
		Str("archive", realPath).
		Int("entries", bytes.Count(res.Stderr, []byte("\n"))).
		Msg("extracted payload")
	return nil
}
