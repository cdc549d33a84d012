package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/indaco/pkgstamp/internal/clix"
	"github.com/indaco/pkgstamp/internal/config"
	"github.com/indaco/pkgstamp/internal/core"
	"github.com/indaco/pkgstamp/internal/printer"
	"github.com/indaco/pkgstamp/internal/resolver"
)

/* ------------------------------------------------------------------------- */
/* HELPERS                                                                   */
/* ------------------------------------------------------------------------- */

// fakeTools emulates rpm, rpm2cpio and cpio. Installed packages come from
// installed; package archives are text files of KEY=value lines, where NAME
// and VERSION answer rpm -qp queries and every line is a payload entry.
func fakeTools(installed map[string]string) *core.MockCommandRunner {
	return &core.MockCommandRunner{
		RunFn: func(ctx context.Context, cmd core.Command) (core.CommandResult, error) {
			switch cmd.Name {
			case "rpm":
				args := cmd.Args
				if args[0] == "--root" {
					args = args[2:]
				}
				target := args[len(args)-1]
				if args[0] == "-q" {
					if v, ok := installed[target]; ok {
						return core.CommandResult{Stdout: []byte(v)}, nil
					}
					return core.CommandResult{Stdout: []byte("package " + target + " is not installed")},
						&core.ToolError{Command: cmd.String(), Stdout: "package " + target + " is not installed", Err: errors.New("exit status 1")}
				}
				key := strings.Trim(args[2], "%{}")
				data, err := os.ReadFile(target)
				if err != nil {
					return core.CommandResult{}, &core.ToolError{Command: cmd.String(), Stderr: err.Error(), Err: err}
				}
				for _, line := range strings.Split(string(data), "\n") {
					if k, v, ok := strings.Cut(line, "="); ok && k == key {
						return core.CommandResult{Stdout: []byte(v)}, nil
					}
				}
				return core.CommandResult{}, nil
			case "rpm2cpio":
				data, err := os.ReadFile(cmd.Args[0])
				return core.CommandResult{Stdout: data}, err
			case "cpio":
				payload, err := io.ReadAll(cmd.Stdin)
				if err != nil {
					return core.CommandResult{}, err
				}
				for _, line := range strings.Split(strings.TrimSpace(string(payload)), "\n") {
					name, content, _ := strings.Cut(line, "=")
					if err := os.WriteFile(filepath.Join(cmd.Dir, name), []byte(content), 0o644); err != nil {
						return core.CommandResult{}, err
					}
				}
				return core.CommandResult{}, nil
			}
			return core.CommandResult{}, fmt.Errorf("unexpected command %s", cmd)
		},
	}
}

type testEnv struct {
	dir    string
	runner *core.MockCommandRunner
	stdout *bytes.Buffer
	stderr *bytes.Buffer
}

// setup runs the test from an empty directory with a fake toolchain and
// captured output.
func setup(t *testing.T, installed map[string]string) *testEnv {
	t.Helper()
	for _, k := range []string{config.EnvReposDir, config.EnvQueryCommand, config.EnvLogLevel, config.EnvWorkers} {
		t.Setenv(k, "")
	}
	dir := t.TempDir()
	t.Chdir(dir)

	env := &testEnv{dir: dir, runner: fakeTools(installed), stdout: &bytes.Buffer{}, stderr: &bytes.Buffer{}}

	origRunner := clix.NewRunnerFn
	clix.NewRunnerFn = func() core.CommandRunner { return env.runner }
	restore := printer.SetOutput(env.stdout, env.stderr)
	t.Cleanup(func() {
		clix.NewRunnerFn = origRunner
		restore()
	})
	return env
}

func (e *testEnv) write(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(e.dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func (e *testEnv) archive(t *testing.T, name, pkg, version string) {
	t.Helper()
	e.write(t, filepath.Join("repos", name), fmt.Sprintf("NAME=%s\nVERSION=%s\n", pkg, version))
}

func (e *testEnv) read(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(e.dir, name))
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func run(args ...string) error {
	return New().Run(context.Background(), append([]string{"pkgstamp"}, args...))
}

const kiwi = `<image name="leap">
  <preferences>
    <version>%%VERSION%%</version>
  </preferences>
</image>
`

/* ------------------------------------------------------------------------- */
/* DEFAULT ACTION                                                            */
/* ------------------------------------------------------------------------- */

func TestReplace_InstalledPackage(t *testing.T) {
	env := setup(t, map[string]string{"zypper": "1.14.68"})
	env.write(t, "config.kiwi", kiwi)
	env.write(t, "out/.keep", "")

	err := run("--file", "config.kiwi", "--regex", "%%VERSION%%", "--outdir", "out", "--package", "zypper", "--parse-version", "minor")
	if err != nil {
		t.Fatalf("run() error = %v", err)
	}

	if got := env.read(t, "out/config.kiwi"); !strings.Contains(got, "<version>1.14</version>") {
		t.Errorf("output:\n%s", got)
	}
	if got := env.read(t, "config.kiwi"); got != kiwi {
		t.Error("input file must not change")
	}
	for _, c := range env.runner.Calls() {
		if len(c.Args) > 0 && c.Args[0] == "-qp" {
			t.Errorf("archives queried although the package is installed: %s", c)
		}
	}
}

func TestReplace_ArchiveFallback(t *testing.T) {
	env := setup(t, nil)
	env.archive(t, "x86_64/foo-1.2.3-1.x86_64.rpm", "foo", "1.2.3")
	env.archive(t, "x86_64/foo-1.10.0-1.x86_64.rpm", "foo", "1.10.0")
	env.archive(t, "x86_64/foo-devel-9.0-1.x86_64.rpm", "foo-devel", "9.0")
	env.write(t, "Dockerfile", "LABEL org.opencontainers.image.version=\"%PKG_VERSION%\"\n")
	env.write(t, "out/.keep", "")

	err := run("--file", "Dockerfile", "--regex", "%PKG_VERSION%", "--outdir", "out", "--package", "foo", "--workers", "4")
	if err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if got := env.read(t, "out/Dockerfile"); got != "LABEL org.opencontainers.image.version=\"1.10.0\"\n" {
		t.Errorf("output = %q", got)
	}
}

func TestReplace_Literal(t *testing.T) {
	env := setup(t, nil)
	env.write(t, "pkg.spec", "Version: 0.0.0\nRelease: 0\n")
	env.write(t, "out/.keep", "")

	err := run("--file", "pkg.spec", "--regex", `Version: \S+`, "--replacement", "Version: 2.0.1", "--outdir", "out")
	if err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if got := env.read(t, "out/pkg.spec"); got != "Version: 2.0.1\nRelease: 0\n" {
		t.Errorf("output = %q", got)
	}
	if len(env.runner.Calls()) != 0 {
		t.Errorf("literal replacement must not query rpm: %v", env.runner.Calls())
	}
}

func TestReplace_StructuredFormat(t *testing.T) {
	env := setup(t, map[string]string{"kernel-default": "6.4.0"})
	env.write(t, "chart.json", "{\n  \"name\": \"kernel\",\n  \"appVersion\": \"0\"\n}\n")

	err := run("--file", "chart.json", "--format", "json", "--field", "appVersion", "--outdir", ".", "--package", "kernel-default")
	if err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if got := env.read(t, "chart.json"); !strings.Contains(got, `"appVersion": "6.4.0"`) {
		t.Errorf("output:\n%s", got)
	}
}

func TestReplace_OverwritesExistingOutputWhenNonInteractive(t *testing.T) {
	env := setup(t, nil)
	env.write(t, "config.kiwi", kiwi)
	env.write(t, "out/config.kiwi", "stale")

	if err := run("--file", "config.kiwi", "--regex", "%%VERSION%%", "--replacement", "15.6", "--outdir", "out"); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if got := env.read(t, "out/config.kiwi"); !strings.Contains(got, "<version>15.6</version>") {
		t.Errorf("output:\n%s", got)
	}
}

func TestReplace_Errors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{
			name:    "missing file",
			args:    []string{"--file", "nope.kiwi", "--regex", "x", "--outdir", "out", "--replacement", "y"},
			wantErr: "file nope.kiwi not found",
		},
		{
			name:    "missing outdir",
			args:    []string{"--file", "config.kiwi", "--regex", "x", "--outdir", "missing", "--replacement", "y"},
			wantErr: "output directory missing not found",
		},
		{
			name:    "neither package nor replacement",
			args:    []string{"--file", "config.kiwi", "--regex", "x", "--outdir", "out"},
			wantErr: "either --package or --replacement is required",
		},
		{
			name:    "package and replacement",
			args:    []string{"--file", "config.kiwi", "--regex", "x", "--outdir", "out", "--package", "p", "--replacement", "y"},
			wantErr: "mutually exclusive",
		},
		{
			name:    "invalid parse-version",
			args:    []string{"--file", "config.kiwi", "--regex", "x", "--outdir", "out", "--package", "p", "--parse-version", "build"},
			wantErr: `invalid value for --parse-version "build": expected one of [major|minor|patch|patch_update|offset]`,
		},
		{
			name:    "missing regex",
			args:    []string{"--file", "config.kiwi", "--outdir", "out", "--replacement", "y"},
			wantErr: "--regex is required",
		},
		{
			name:    "missing field",
			args:    []string{"--file", "config.kiwi", "--format", "yaml", "--outdir", "out", "--replacement", "y"},
			wantErr: "--field is required",
		},
		{
			name:    "invalid format",
			args:    []string{"--file", "config.kiwi", "--format", "ini", "--outdir", "out", "--replacement", "y"},
			wantErr: "invalid format",
		},
		{
			name:    "invalid log level",
			args:    []string{"--log-level", "loud", "--file", "config.kiwi", "--regex", "x", "--outdir", "out", "--replacement", "y"},
			wantErr: "invalid value for --log-level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setup(t, nil)
			env.write(t, "config.kiwi", kiwi)
			env.write(t, "out/.keep", "")

			err := run(tt.args...)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want substring %q", err, tt.wantErr)
			}
		})
	}
}

func TestReplace_PackageNotFound(t *testing.T) {
	env := setup(t, nil)
	env.archive(t, "foo-1.0.rpm", "foo", "1.0")
	env.write(t, "config.kiwi", kiwi)

	err := run("--file", "config.kiwi", "--regex", "%%VERSION%%", "--outdir", ".", "--package", "bar")

	var notFound *resolver.PackageVersionNotFoundError
	if !errors.As(err, &notFound) || notFound.Package != "bar" {
		t.Fatalf("error = %v, want PackageVersionNotFoundError for bar", err)
	}
	if got := env.read(t, "config.kiwi"); got != kiwi {
		t.Error("file must not change on failure")
	}
}

/* ------------------------------------------------------------------------- */
/* CONFIGURATION                                                             */
/* ------------------------------------------------------------------------- */

func TestConfig_ReposDirFromFileAndFlag(t *testing.T) {
	env := setup(t, nil)
	env.archive(t, "foo-1.0.rpm", "foo", "1.0")
	env.write(t, "mirror/foo-3.0.rpm", "NAME=foo\nVERSION=3.0\n")
	env.write(t, config.DefaultFile, "repos-dir: mirror\n")

	if err := run("resolve", "--package", "foo"); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if got := strings.TrimSpace(env.stdout.String()); got != "3.0" {
		t.Errorf("config repos-dir: stdout = %q, want 3.0", got)
	}

	env.stdout.Reset()
	if err := run("resolve", "--package", "foo", "--repos-dir", "repos"); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if got := strings.TrimSpace(env.stdout.String()); got != "1.0" {
		t.Errorf("--repos-dir: stdout = %q, want 1.0", got)
	}
}

func TestConfig_ExplicitPathAndQueryCommand(t *testing.T) {
	env := setup(t, map[string]string{"foo": "2.5"})
	env.write(t, "ci.yaml", "query-command: rpm\nrpm-root: /var/lib/build\n")

	if err := run("--config", "ci.yaml", "resolve", "--package", "foo"); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	calls := env.runner.Calls()
	if len(calls) != 1 || strings.Join(calls[0].Args[:2], " ") != "--root /var/lib/build" {
		t.Errorf("calls = %v", calls)
	}
}

func TestConfig_InvalidFile(t *testing.T) {
	env := setup(t, nil)
	env.write(t, config.DefaultFile, "workers: 0\nunknown: true\n")

	if err := run("resolve", "--package", "foo"); err == nil {
		t.Error("expected configuration error, got nil")
	}
}

func TestConfig_Theme(t *testing.T) {
	tests := []struct {
		theme   string
		wantErr string
	}{
		{theme: "dracula"},
		{theme: "solarized", wantErr: `theme "solarized"`},
	}

	for _, tt := range tests {
		t.Run(tt.theme, func(t *testing.T) {
			env := setup(t, map[string]string{"foo": "2.5"})
			env.write(t, config.DefaultFile, "theme: "+tt.theme+"\n")

			err := run("resolve", "--package", "foo")
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("run() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("run() error = %v, want %q", err, tt.wantErr)
			}
		})
	}
}

/* ------------------------------------------------------------------------- */
/* SUBCOMMANDS                                                               */
/* ------------------------------------------------------------------------- */

func TestResolve(t *testing.T) {
	env := setup(t, nil)
	env.archive(t, "a/python311-3.11.9-1.rpm", "python311", "3.11.9+git12")

	if err := run("resolve", "--package", "python311", "--parse-version", "offset", "--source"); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	out := env.stdout.String()
	if !strings.HasPrefix(out, "12\n") {
		t.Errorf("stdout = %q", out)
	}
	if !strings.Contains(out, "source: archive") || !strings.Contains(out, "python311-3.11.9-1.rpm") {
		t.Errorf("missing source line: %q", out)
	}
}

func TestCandidates(t *testing.T) {
	env := setup(t, nil)
	env.archive(t, "a/foo-1.0.rpm", "foo", "1.0")
	env.archive(t, "b/foo-2.0.rpm", "foo", "2.0")
	env.archive(t, "b/foo-libs-5.0.rpm", "foo-libs", "5.0")
	t.Cleanup(func() { printer.SetNoColor(false) })

	if err := run("--no-color", "candidates", "--package", "foo"); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	out := env.stdout.String()
	if strings.Contains(out, "foo-libs") {
		t.Errorf("declared name mismatch must be excluded:\n%s", out)
	}
	var selected string
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "*") {
			selected = line
		}
	}
	if !strings.Contains(selected, "foo-2.0.rpm") {
		t.Errorf("expected foo-2.0.rpm selected:\n%s", out)
	}
}

func TestCandidates_None(t *testing.T) {
	env := setup(t, nil)

	if err := run("candidates", "--package", "foo"); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if !strings.Contains(env.stderr.String(), `declares package "foo"`) {
		t.Errorf("stderr = %q", env.stderr.String())
	}
}

func TestShow(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		args    []string
		want    string
	}{
		{"regex group", "pkg.spec", "Name: foo\nVersion: 1.2.3\n", []string{"--regex", `Version:\s*(\S+)`}, "1.2.3"},
		{"yaml guessed", "chart.yaml", "image:\n  tag: \"15.6\"\n", []string{"--field", "image.tag"}, "15.6"},
		{"toml guessed", "Cargo.toml", "[package]\nversion = \"0.4.0\"\n", []string{"--field", "package.version"}, "0.4.0"},
		{"raw", "VERSION", "3.1.4\n", nil, "3.1.4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setup(t, nil)
			env.write(t, tt.file, tt.content)

			args := append([]string{"show", "--file", tt.file}, tt.args...)
			if err := run(args...); err != nil {
				t.Fatalf("run() error = %v", err)
			}
			if got := strings.TrimSpace(env.stdout.String()); got != tt.want {
				t.Errorf("stdout = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRepack_RootMode(t *testing.T) {
	env := setup(t, nil)
	env.archive(t, "x86_64/foo-1.0.rpm", "foo", "1.0")
	env.archive(t, "x86_64/bar-2.0.rpm", "bar", "2.0")
	env.write(t, "out/.keep", "")

	if err := run("--packages", "foo, bar", "--archive", "bundle.tar.gz", "--outdir", "out"); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(env.dir, "out", "bundle.tar.gz")); err != nil {
		t.Fatalf("archive not written: %v", err)
	}
	var extracted int
	for _, c := range env.runner.Calls() {
		if c.Name == "cpio" {
			extracted++
		}
	}
	if extracted != 2 {
		t.Errorf("cpio ran %d times, want 2", extracted)
	}
}

func TestRepack_Subcommand(t *testing.T) {
	env := setup(t, nil)
	env.archive(t, "foo-1.0.rpm", "foo", "1.0")
	env.write(t, "out/.keep", "")

	if err := run("repack", "--packages", "foo", "--archive", "bundle.zip", "--outdir", "out", "--staging-dir", "staging"); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if got := env.read(t, "staging/VERSION"); got != "1.0" {
		t.Errorf("staged payload = %q", got)
	}
	if _, err := os.Stat(filepath.Join(env.dir, "out", "bundle.zip")); err != nil {
		t.Errorf("archive not written: %v", err)
	}
}

func TestRepack_Errors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"missing outdir", []string{"--packages", "foo", "--archive", "b.tar"}, "--outdir is required"},
		{"missing archive", []string{"--packages", "foo", "--outdir", "."}, "--archive is required"},
		{"blank packages", []string{"--packages", " , ", "--archive", "b.tar", "--outdir", "."}, "--packages is required"},
		{"unsupported format", []string{"--packages", "foo", "--archive", "b.rar", "--outdir", "."}, "b.rar"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setup(t, nil)
			err := run(tt.args...)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want substring %q", err, tt.wantErr)
			}
		})
	}
}

func TestInit(t *testing.T) {
	env := setup(t, nil)

	if err := run("--log-level", "debug", "init"); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	got := env.read(t, config.DefaultFile)
	for _, want := range []string{"repos-dir: ./repos", "log-level: debug", "workers: 1"} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in:\n%s", want, got)
		}
	}

	if err := run("init"); err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Errorf("second init error = %v", err)
	}
	if err := run("init", "--force"); err != nil {
		t.Errorf("init --force error = %v", err)
	}
}
