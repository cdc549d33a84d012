package rpm

import (
	"context"
	"errors"
	"sync"
)

// ErrNotInstalled is returned by MockMetadataReader when no installed version is configured.
var ErrNotInstalled = errors.New("package is not installed")

// MockMetadataReader is a MetadataReader for tests. Function fields take
// precedence; otherwise lookups fall back to the Installed and Archives maps.
// Every call is counted so tests can assert which capability was used.
type MockMetadataReader struct {
	InstalledVersionFn func(ctx context.Context, name string) (string, error)
	ArchiveNameFn      func(ctx context.Context, path string) (string, error)
	ArchiveVersionFn   func(ctx context.Context, path string) (string, error)

	// Installed maps package name to installed version.
	Installed map[string]string
	// Archives maps archive path to its declared metadata.
	Archives map[string]ArchiveMetadata

	mu    sync.Mutex
	calls []string
}

// ArchiveMetadata is the declared name and version of a mock archive.
type ArchiveMetadata struct {
	Name    string
	Version string
}

// Verify MockMetadataReader implements MetadataReader.
var _ MetadataReader = (*MockMetadataReader)(nil)

func (m *MockMetadataReader) record(call string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, call)
}

// Calls returns the recorded calls as "Method:arg" strings.
func (m *MockMetadataReader) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.calls))
	copy(out, m.calls)
	return out
}

// InstalledVersion implements MetadataReader.
func (m *MockMetadataReader) InstalledVersion(ctx context.Context, name string) (string, error) {
	m.record("InstalledVersion:" + name)
	if m.InstalledVersionFn != nil {
		return m.InstalledVersionFn(ctx, name)
	}
	if v, ok := m.Installed[name]; ok {
		return v, nil
	}
	return "", ErrNotInstalled
}

// ArchiveName implements MetadataReader.
func (m *MockMetadataReader) ArchiveName(ctx context.Context, path string) (string, error) {
	m.record("ArchiveName:" + path)
	if m.ArchiveNameFn != nil {
		return m.ArchiveNameFn(ctx, path)
	}
	if a, ok := m.Archives[path]; ok {
		return a.Name, nil
	}
	return "", errors.New("not an archive: " + path)
}

// ArchiveVersion implements MetadataReader.
func (m *MockMetadataReader) ArchiveVersion(ctx context.Context, path string) (string, error) {
	m.record("ArchiveVersion:" + path)
	if m.ArchiveVersionFn != nil {
		return m.ArchiveVersionFn(ctx, path)
	}
	if a, ok := m.Archives[path]; ok {
		return a.Version, nil
	}
	return "", errors.New("not an archive: " + path)
}
