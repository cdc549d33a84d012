package repack

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/indaco/pkgstamp/internal/core"
)

// ArchiveFormat is the bundle container type.
type ArchiveFormat string

const (
	FormatTar   ArchiveFormat = "tar"
	FormatTarGz ArchiveFormat = "gztar"
	FormatZip   ArchiveFormat = "zip"
)

func (f ArchiveFormat) String() string {
	return string(f)
}

// ParseArchiveFormat selects the format from the archive file name.
func ParseArchiveFormat(name string) (ArchiveFormat, error) {
	lower := strings.ToLower(name)
	switch {
	case strings.HasSuffix(lower, ".tar.gz"), strings.HasSuffix(lower, ".tgz"):
		return FormatTarGz, nil
	case strings.HasSuffix(lower, ".tar"):
		return FormatTar, nil
	case strings.HasSuffix(lower, ".zip"):
		return FormatZip, nil
	default:
		return "", fmt.Errorf("unsupported archive %q: expected a .tar, .tar.gz, .tgz or .zip name", name)
	}
}

// WriteArchive bundles the content of dir into dest. Entry names are relative
// to dir and emitted in lexical order.
func WriteArchive(ctx context.Context, format ArchiveFormat, dir, dest string) (err error) {
	f, err := os.OpenFile(dest, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, core.PermPublicRead)
	if err != nil {
		return fmt.Errorf("failed to create archive %q: %w", dest, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close archive %q: %w", dest, cerr)
		}
	}()

	switch format {
	case FormatZip:
		return writeZip(ctx, f, dir)
	case FormatTarGz:
		gw := gzip.NewWriter(f)
		if err := writeTar(ctx, gw, dir); err != nil {
			return err
		}
		return gw.Close()
	case FormatTar:
		return writeTar(ctx, f, dir)
	default:
		return fmt.Errorf("unsupported archive format: %s", format)
	}
}

// walkEntries calls fn for every entry below dir except dir itself.
func walkEntries(ctx context.Context, dir string, fn func(path, rel string, info fs.FileInfo) error) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("walk error: %w", err)
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if path == dir {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return fmt.Errorf("failed to get relative path: %w", err)
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		return fn(path, filepath.ToSlash(rel), info)
	})
}

func writeTar(ctx context.Context, w io.Writer, dir string) error {
	tw := tar.NewWriter(w)

	err := walkEntries(ctx, dir, func(path, rel string, info fs.FileInfo) error {
		var link string
		if info.Mode()&fs.ModeSymlink != 0 {
			target, err := os.Readlink(path)
			if err != nil {
				return err
			}
			link = target
		}

		header, err := tar.FileInfoHeader(info, link)
		if err != nil {
			return fmt.Errorf("failed to create tar header for %s: %w", rel, err)
		}
		header.Name = rel
		if info.IsDir() {
			header.Name += "/"
		}
		if err := tw.WriteHeader(header); err != nil {
			return err
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		return copyFile(tw, path)
	})
	if err != nil {
		return err
	}
	return tw.Close()
}

func writeZip(ctx context.Context, w io.Writer, dir string) error {
	zw := zip.NewWriter(w)

	err := walkEntries(ctx, dir, func(path, rel string, info fs.FileInfo) error {
		header, err := zip.FileInfoHeader(info)
		if err != nil {
			return fmt.Errorf("failed to create file header: %w", err)
		}
		header.Name = rel

		if info.IsDir() {
			header.Name += "/"
			_, err := zw.CreateHeader(header)
			return err
		}

		header.Method = zip.Deflate
		writer, err := zw.CreateHeader(header)
		if err != nil {
			return fmt.Errorf("failed to create zip entry: %w", err)
		}

		// Symlinks are stored with their target as content.
		if info.Mode()&fs.ModeSymlink != 0 {
			target, err := os.Readlink(path)
			if err != nil {
				return err
			}
			_, err = io.WriteString(writer, target)
			return err
		}
		return copyFile(writer, path)
	})
	if err != nil {
		return err
	}
	return zw.Close()
}

func copyFile(w io.Writer, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	if _, err := io.Copy(w, file); err != nil {
		return fmt.Errorf("failed to copy file content: %w", err)
	}
	return nil
}
