// Package scanner finds the highest version of a package among the archive
// files of a local repository tree.
//
// Filenames are only a pre-filter: every archive whose name ends with the
// archive extension and contains the package name is opened through an
// rpm.MetadataReader, and only archives declaring exactly that package name
// take part in the maximum. The first archive seen wins version ties.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/indaco/pkgstamp/internal/core"
	"github.com/indaco/pkgstamp/internal/logging"
	"github.com/indaco/pkgstamp/internal/pkgver"
	"github.com/indaco/pkgstamp/internal/rpm"
)

// DefaultExtension is the archive suffix matched when none is configured.
const DefaultExtension = ".rpm"

// ErrNotFound is returned when no archive declares the requested package.
var ErrNotFound = errors.New("no matching package archive found")

// Candidate is an archive that declares the requested package.
type Candidate struct {
	// Path is the archive path as found during traversal.
	Path string
	// RealPath is Path with symlinks resolved; metadata is read from it.
	RealPath string
	// Name is the declared package name.
	Name string
	// Version is the declared version.
	Version pkgver.Version
}

// Scanner walks a repository tree and queries archive metadata.
type Scanner struct {
	reader    rpm.MetadataReader
	fs        core.FileSystem
	extension string
	workers   int
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithFileSystem sets the filesystem the tree is read from.
func WithFileSystem(fsys core.FileSystem) Option {
	return func(s *Scanner) {
		s.fs = fsys
	}
}

// WithExtension sets the archive filename suffix.
func WithExtension(ext string) Option {
	return func(s *Scanner) {
		if ext != "" {
			s.extension = ext
		}
	}
}

// WithWorkers bounds the number of concurrent metadata queries.
// Values below 2 keep the scan sequential.
func WithWorkers(n int) Option {
	return func(s *Scanner) {
		s.workers = max(n, 1)
	}
}

// New creates a Scanner reading metadata through reader.
func New(reader rpm.MetadataReader, opts ...Option) *Scanner {
	s := &Scanner{
		reader:    reader,
		fs:        core.NewOSFileSystem(),
		extension: DefaultExtension,
		workers:   1,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scan returns the candidate with the highest declared version of name under
// root. It returns an error wrapping ErrNotFound when no archive matches.
// Any metadata query failure aborts the scan.
func (s *Scanner) Scan(ctx context.Context, name, root string) (*Candidate, error) {
	candidates, err := s.Candidates(ctx, name, root)
	if err != nil {
		return nil, err
	}

	best := Max(candidates)
	if best == nil {
		return nil, fmt.Errorf("package %q in %s: %w", name, root, ErrNotFound)
	}

	logging.FromContext(ctx).Debug().
		Str("package", name).
		Str("archive", best.Path).
		Str("version", best.Version.String()).
		Int("candidates", len(candidates)).
		Msg("selected archive")
	return best, nil
}

// Max returns the candidate with the greatest version. A later candidate
// replaces the retained one only when strictly greater, so the earliest
// wins ties. It returns nil for an empty slice.
func Max(candidates []Candidate) *Candidate {
	var best *Candidate
	for i := range candidates {
		if best == nil || candidates[i].Version.Compare(best.Version) > 0 {
			best = &candidates[i]
		}
	}
	return best
}

// Candidates returns every archive under root that declares exactly name,
// in traversal order. A missing root yields no candidates.
func (s *Scanner) Candidates(ctx context.Context, name, root string) ([]Candidate, error) {
	files, err := s.prefilter(ctx, name, root)
	if err != nil {
		return nil, err
	}

	var results []*Candidate
	if s.workers > 1 && len(files) > 1 {
		results, err = s.inspectParallel(ctx, name, files)
	} else {
		results, err = s.inspectSequential(ctx, name, files)
	}
	if err != nil {
		return nil, err
	}

	candidates := make([]Candidate, 0, len(results))
	for _, c := range results {
		if c != nil {
			candidates = append(candidates, *c)
		}
	}
	return candidates, nil
}

// Files returns the archive paths under root whose filename ends with the
// configured extension and contains name.
func (s *Scanner) Files(ctx context.Context, name, root string) ([]string, error) {
	return s.prefilter(ctx, name, root)
}

func (s *Scanner) prefilter(ctx context.Context, name, root string) ([]string, error) {
	var matches []string
	err := s.walk(ctx, root, func(path string) {
		base := filepath.Base(path)
		if strings.HasSuffix(base, s.extension) && strings.Contains(base, name) {
			matches = append(matches, path)
		}
	})
	if err != nil {
		return nil, err
	}
	return matches, nil
}

// walk calls visit for every non-directory entry below root, in lexical order
// per directory. Symlinked directories are listed but not descended into.
func (s *Scanner) walk(ctx context.Context, root string, visit func(path string)) error {
	entries, err := s.fs.ReadDir(ctx, root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("reading %s: %w", root, err)
	}

	for _, entry := range entries {
		path := filepath.Join(root, entry.Name())
		switch {
		case entry.IsDir():
			if err := s.walk(ctx, path, visit); err != nil {
				return err
			}
		case entry.Type()&os.ModeSymlink != 0:
			info, statErr := s.fs.Stat(ctx, path)
			if statErr != nil {
				logging.FromContext(ctx).Debug().Str("path", path).Err(statErr).Msg("skipping dangling symlink")
				continue
			}
			if !info.IsDir() {
				visit(path)
			}
		default:
			visit(path)
		}
	}
	return nil
}

func (s *Scanner) inspectSequential(ctx context.Context, name string, files []string) ([]*Candidate, error) {
	results := make([]*Candidate, len(files))
	for i, path := range files {
		c, err := s.inspect(ctx, name, path)
		if err != nil {
			return nil, err
		}
		results[i] = c
	}
	return results, nil
}

// inspectParallel queries candidates concurrently. Each result lands at its
// traversal index so the reduction order matches the sequential scan.
func (s *Scanner) inspectParallel(ctx context.Context, name string, files []string) ([]*Candidate, error) {
	results := make([]*Candidate, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, path := range files {
		g.Go(func() error {
			c, err := s.inspect(gctx, name, path)
			if err != nil {
				return err
			}
			results[i] = c
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// inspect returns nil when the archive declares a different package.
func (s *Scanner) inspect(ctx context.Context, name, path string) (*Candidate, error) {
	realPath, err := s.fs.EvalSymlinks(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", path, err)
	}

	declared, err := s.reader.ArchiveName(ctx, realPath)
	if err != nil {
		return nil, fmt.Errorf("reading package name from %s: %w", realPath, err)
	}
	if declared != name {
		logging.FromContext(ctx).Trace().
			Str("archive", path).
			Str("declared", declared).
			Msg("name mismatch")
		return nil, nil
	}

	raw, err := s.reader.ArchiveVersion(ctx, realPath)
	if err != nil {
		return nil, fmt.Errorf("reading package version from %s: %w", realPath, err)
	}

	return &Candidate{
		Path:     path,
		RealPath: realPath,
		Name:     declared,
		Version:  pkgver.Parse(raw),
	}, nil
}
