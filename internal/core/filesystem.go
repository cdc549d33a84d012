package core

import (
	"context"
	"os"
	"path/filepath"
)

// FileSystem abstracts the file operations pkgstamp performs so that readers,
// writers and the archive scanner can be tested against an in-memory tree.
// Every method checks the context before touching the disk.
type FileSystem interface {
	ReadFile(ctx context.Context, path string) ([]byte, error)
	WriteFile(ctx context.Context, path string, data []byte, perm FileMode) error
	Stat(ctx context.Context, path string) (os.FileInfo, error)
	ReadDir(ctx context.Context, path string) ([]os.DirEntry, error)
	MkdirAll(ctx context.Context, path string, perm FileMode) error
	EvalSymlinks(ctx context.Context, path string) (string, error)
}

// Marshaler serializes a value, used to inject YAML encoding in tests.
type Marshaler interface {
	Marshal(v any) ([]byte, error)
}

// OSFileSystem implements FileSystem on top of the os package.
type OSFileSystem struct{}

// NewOSFileSystem returns the production FileSystem.
func NewOSFileSystem() *OSFileSystem {
	return &OSFileSystem{}
}

// Verify OSFileSystem implements FileSystem.
var _ FileSystem = (*OSFileSystem)(nil)

func (OSFileSystem) ReadFile(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return os.ReadFile(path)
}

func (OSFileSystem) WriteFile(ctx context.Context, path string, data []byte, perm FileMode) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return os.WriteFile(path, data, perm)
}

func (OSFileSystem) Stat(ctx context.Context, path string) (os.FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return os.Stat(path)
}

// ReadDir returns the directory entries sorted by filename.
func (OSFileSystem) ReadDir(ctx context.Context, path string) ([]os.DirEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return os.ReadDir(path)
}

func (OSFileSystem) MkdirAll(ctx context.Context, path string, perm FileMode) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return os.MkdirAll(path, perm)
}

// EvalSymlinks returns the absolute path of path with all symlinks resolved.
func (OSFileSystem) EvalSymlinks(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(abs)
}
