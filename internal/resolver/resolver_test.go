package resolver

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/indaco/pkgstamp/internal/core"
	"github.com/indaco/pkgstamp/internal/pkgver"
	"github.com/indaco/pkgstamp/internal/rpm"
	"github.com/indaco/pkgstamp/internal/scanner"
)

type mockScanner struct {
	ScanFn func(ctx context.Context, name, root string) (*scanner.Candidate, error)
	called int
}

func (m *mockScanner) Scan(ctx context.Context, name, root string) (*scanner.Candidate, error) {
	m.called++
	return m.ScanFn(ctx, name, root)
}

func TestLookup_InstalledShortCircuits(t *testing.T) {
	reader := &rpm.MockMetadataReader{Installed: map[string]string{"zypper": "1.14.68"}}
	scan := &mockScanner{ScanFn: func(ctx context.Context, name, root string) (*scanner.Candidate, error) {
		t.Fatal("scanner must not run when the package is installed")
		return nil, nil
	}}

	res, err := New(reader, scan).Lookup(context.Background(), "zypper", "./repos")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Version != "1.14.68" || res.Source != SourceInstalled || res.Archive != "" {
		t.Errorf("got %+v", res)
	}
	if scan.called != 0 {
		t.Errorf("scanner called %d times", scan.called)
	}
}

func TestLookup_FallsBackToArchives(t *testing.T) {
	tests := []struct {
		name      string
		installed func(ctx context.Context, name string) (string, error)
	}{
		{
			name: "not installed",
			installed: func(ctx context.Context, name string) (string, error) {
				return "", &core.ToolError{Command: "rpm -q foo", Stdout: "package foo is not installed", Err: errors.New("exit status 1")}
			},
		},
		{
			name: "empty output",
			installed: func(ctx context.Context, name string) (string, error) {
				return "", nil
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reader := &rpm.MockMetadataReader{InstalledVersionFn: tt.installed}
			scan := &mockScanner{ScanFn: func(ctx context.Context, name, root string) (*scanner.Candidate, error) {
				if name != "foo" || root != "/srv/repos" {
					t.Errorf("Scan(%q, %q)", name, root)
				}
				return &scanner.Candidate{Path: "/srv/repos/foo-2.1.rpm", Name: "foo", Version: pkgver.Parse("2.1")}, nil
			}}

			res, err := New(reader, scan).Lookup(context.Background(), "foo", "/srv/repos")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if res.Version != "2.1" || res.Source != SourceArchive || res.Archive != "/srv/repos/foo-2.1.rpm" {
				t.Errorf("got %+v", res)
			}
		})
	}
}

func TestResolve_NotFound(t *testing.T) {
	tests := []struct {
		name string
		scan func(ctx context.Context, name, root string) (*scanner.Candidate, error)
	}{
		{
			name: "no archive",
			scan: func(ctx context.Context, name, root string) (*scanner.Candidate, error) {
				return nil, scanner.ErrNotFound
			},
		},
		{
			name: "empty version",
			scan: func(ctx context.Context, name, root string) (*scanner.Candidate, error) {
				return &scanner.Candidate{Path: "/r/foo.rpm", Name: "foo", Version: pkgver.Parse("")}, nil
			},
		},
		{
			name: "version without digits",
			scan: func(ctx context.Context, name, root string) (*scanner.Candidate, error) {
				return &scanner.Candidate{Path: "/r/foo.rpm", Name: "foo", Version: pkgver.Parse("none")}, nil
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reader := &rpm.MockMetadataReader{}
			_, err := New(reader, &mockScanner{ScanFn: tt.scan}).Resolve(context.Background(), "foo", "./repos")

			var notFound *PackageVersionNotFoundError
			if !errors.As(err, &notFound) {
				t.Fatalf("expected *PackageVersionNotFoundError, got %v", err)
			}
			if notFound.Package != "foo" {
				t.Errorf("Package = %q", notFound.Package)
			}
			if !errors.Is(err, ErrPackageVersionNotFound) {
				t.Error("expected errors.Is(err, ErrPackageVersionNotFound)")
			}
			if !strings.Contains(err.Error(), `"foo"`) {
				t.Errorf("message should name the package: %v", err)
			}
		})
	}
}

func TestResolve_ScanErrorPropagates(t *testing.T) {
	toolErr := &core.ToolError{Command: "rpm -qp --queryformat %{NAME} /r/foo.rpm", Err: errors.New("exit status 1")}
	scan := &mockScanner{ScanFn: func(ctx context.Context, name, root string) (*scanner.Candidate, error) {
		return nil, toolErr
	}}

	_, err := New(&rpm.MockMetadataReader{}, scan).Resolve(context.Background(), "foo", "./repos")
	if !errors.Is(err, toolErr) {
		t.Fatalf("expected wrapped tool error, got %v", err)
	}
	if errors.Is(err, ErrPackageVersionNotFound) {
		t.Error("tool failures must not be reported as not found")
	}
}

func TestResolve_WithScanner(t *testing.T) {
	fs := core.NewMockFileSystem()
	fs.SetFile("/repos/x86_64/python3-3.11.9-1.x86_64.rpm", nil)
	fs.SetFile("/repos/noarch/python3-3.6.15-1.x86_64.rpm", nil)
	reader := &rpm.MockMetadataReader{Archives: map[string]rpm.ArchiveMetadata{
		"/repos/x86_64/python3-3.11.9-1.x86_64.rpm": {Name: "python3", Version: "3.11.9"},
		"/repos/noarch/python3-3.6.15-1.x86_64.rpm": {Name: "python3", Version: "3.6.15"},
	}}

	got, err := New(reader, scanner.New(reader, scanner.WithFileSystem(fs))).Resolve(context.Background(), "python3", "/repos")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "3.11.9" {
		t.Errorf("got %q, want 3.11.9", got)
	}
}
