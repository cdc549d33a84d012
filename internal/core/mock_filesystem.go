package core

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// MockFileSystem is an in-memory FileSystem for tests.
// Files registered with SetFile implicitly create their parent directories.
// ReadErr, WriteErr and StatErr, when set, are returned by the matching calls.
type MockFileSystem struct {
	mu    sync.RWMutex
	files map[string][]byte
	modes map[string]FileMode
	dirs  map[string]bool
	links map[string]string

	ReadErr  error
	WriteErr error
	StatErr  error
}

// Verify MockFileSystem implements FileSystem.
var _ FileSystem = (*MockFileSystem)(nil)

// NewMockFileSystem returns an empty in-memory filesystem containing only "/".
func NewMockFileSystem() *MockFileSystem {
	return &MockFileSystem{
		files: make(map[string][]byte),
		modes: make(map[string]FileMode),
		dirs:  map[string]bool{"/": true},
		links: make(map[string]string),
	}
}

// SetFile stores data at path.
func (m *MockFileSystem) SetFile(path string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := filepath.Clean(path)
	m.files[p] = data
	m.modes[p] = PermPublicRead
	m.addParentsLocked(p)
}

// GetFile returns the contents stored at path.
func (m *MockFileSystem) GetFile(path string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.files[filepath.Clean(path)]
	return data, ok
}

// FileMode returns the permissions the file at path was last written with.
func (m *MockFileSystem) FileMode(path string) (FileMode, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	mode, ok := m.modes[filepath.Clean(path)]
	return mode, ok
}

// SetDir registers an empty directory.
func (m *MockFileSystem) SetDir(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := filepath.Clean(path)
	m.dirs[p] = true
	m.addParentsLocked(p)
}

// SetSymlink registers link as a symlink pointing at target.
// Relative targets are resolved against the link's directory.
func (m *MockFileSystem) SetSymlink(link, target string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := filepath.Clean(link)
	if !filepath.IsAbs(target) {
		target = filepath.Join(filepath.Dir(p), target)
	}
	m.links[p] = filepath.Clean(target)
	m.addParentsLocked(p)
}

func (m *MockFileSystem) addParentsLocked(p string) {
	for d := filepath.Dir(p); ; d = filepath.Dir(d) {
		m.dirs[d] = true
		if d == "/" || d == "." {
			return
		}
	}
}

func (m *MockFileSystem) ReadFile(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.ReadErr != nil {
		return nil, m.ReadErr
	}
	resolved, err := m.EvalSymlinks(ctx, path)
	if err != nil {
		return nil, &os.PathError{Op: "open", Path: path, Err: os.ErrNotExist}
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.files[resolved]
	if !ok {
		return nil, &os.PathError{Op: "open", Path: path, Err: os.ErrNotExist}
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (m *MockFileSystem) WriteFile(ctx context.Context, path string, data []byte, perm FileMode) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if m.WriteErr != nil {
		return m.WriteErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p := filepath.Clean(path)
	if m.dirs[p] {
		return &os.PathError{Op: "open", Path: path, Err: fs.ErrInvalid}
	}
	stored := make([]byte, len(data))
	copy(stored, data)
	m.files[p] = stored
	m.modes[p] = perm
	m.addParentsLocked(p)
	return nil
}

func (m *MockFileSystem) Stat(ctx context.Context, path string) (os.FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.StatErr != nil {
		return nil, m.StatErr
	}
	resolved, err := m.EvalSymlinks(ctx, path)
	if err != nil {
		return nil, &os.PathError{Op: "stat", Path: path, Err: os.ErrNotExist}
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	name := filepath.Base(filepath.Clean(path))
	if data, ok := m.files[resolved]; ok {
		return mockFileInfo{name: name, size: int64(len(data)), mode: m.modes[resolved]}, nil
	}
	if m.dirs[resolved] {
		return mockFileInfo{name: name, mode: fs.ModeDir | PermDir, dir: true}, nil
	}
	return nil, &os.PathError{Op: "stat", Path: path, Err: os.ErrNotExist}
}

// ReadDir lists the immediate children of path sorted by name, like os.ReadDir.
func (m *MockFileSystem) ReadDir(ctx context.Context, path string) ([]os.DirEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	dir := filepath.Clean(path)
	if !m.dirs[dir] {
		return nil, &os.PathError{Op: "open", Path: path, Err: os.ErrNotExist}
	}

	seen := make(map[string]os.DirEntry)
	for p := range m.files {
		if p != dir && filepath.Dir(p) == dir {
			seen[p] = mockDirEntry{name: filepath.Base(p)}
		}
	}
	for p := range m.links {
		if filepath.Dir(p) == dir {
			seen[p] = mockDirEntry{name: filepath.Base(p), mode: fs.ModeSymlink}
		}
	}
	for p := range m.dirs {
		if p != dir && filepath.Dir(p) == dir {
			seen[p] = mockDirEntry{name: filepath.Base(p), mode: fs.ModeDir, dir: true}
		}
	}

	entries := make([]os.DirEntry, 0, len(seen))
	for _, e := range seen {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
	return entries, nil
}

func (m *MockFileSystem) MkdirAll(ctx context.Context, path string, perm FileMode) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if m.WriteErr != nil {
		return m.WriteErr
	}
	m.SetDir(path)
	return nil
}

// EvalSymlinks follows registered symlinks until it reaches a file or directory.
func (m *MockFileSystem) EvalSymlinks(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	p := filepath.Clean(path)
	for range 40 {
		target, ok := m.links[p]
		if !ok {
			if _, isFile := m.files[p]; isFile || m.dirs[p] {
				return p, nil
			}
			return "", &os.PathError{Op: "lstat", Path: path, Err: os.ErrNotExist}
		}
		p = target
	}
	return "", &os.PathError{Op: "lstat", Path: path, Err: fs.ErrInvalid}
}

type mockDirEntry struct {
	name string
	mode fs.FileMode
	dir  bool
}

func (e mockDirEntry) Name() string      { return e.name }
func (e mockDirEntry) IsDir() bool       { return e.dir }
func (e mockDirEntry) Type() fs.FileMode { return e.mode.Type() }
func (e mockDirEntry) Info() (fs.FileInfo, error) {
	return mockFileInfo{name: e.name, mode: e.mode, dir: e.dir}, nil
}

type mockFileInfo struct {
	name string
	size int64
	mode fs.FileMode
	dir  bool
}

func (i mockFileInfo) Name() string       { return i.name }
func (i mockFileInfo) Size() int64        { return i.size }
func (i mockFileInfo) Mode() fs.FileMode  { return i.mode }
func (i mockFileInfo) ModTime() time.Time { return time.Time{} }
func (i mockFileInfo) IsDir() bool        { return i.dir }
func (i mockFileInfo) Sys() any           { return nil }
