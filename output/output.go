// Package output owns the generated site directory: it wipes it at the
// start of a build, writes rendered files atomically and copies assets in.
package output

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ErrUnsafeRoot is returned by Reset when the output root would remove the
// working directory or one of its ancestors, or nothing at all.
var ErrUnsafeRoot = errors.New("refusing to wipe output directory")

// Dir is an output root. Relative paths passed to its methods use forward
// slashes and are resolved below Root.
type Dir struct {
	Root string
}

// New returns the output root at path.
func New(root string) *Dir {
	return &Dir{Root: root}
}

// Path resolves a site-relative path below the root.
func (d *Dir) Path(rel string) string {
	return filepath.Join(d.Root, filepath.FromSlash(rel))
}

// Reset removes the root and everything under it, then recreates it empty.
func (d *Dir) Reset() error {
	clean := filepath.Clean(d.Root)
	if d.Root == "" || clean == "." {
		return fmt.Errorf("%w: %q", ErrUnsafeRoot, d.Root)
	}
	abs, err := filepath.Abs(clean)
	if err != nil {
		return err
	}
	if abs == filepath.VolumeName(abs)+string(filepath.Separator) {
		return fmt.Errorf("%w: %q is a filesystem root", ErrUnsafeRoot, d.Root)
	}
	wd, err := os.Getwd()
	if err != nil {
		return err
	}
	if Within(abs, wd) {
		return fmt.Errorf("%w: %q contains the working directory", ErrUnsafeRoot, d.Root)
	}

	if err := os.RemoveAll(clean); err != nil {
		return err
	}
	return os.MkdirAll(clean, 0o755)
}

// Within reports whether path is dir or lies below it. Both paths are made
// absolute first.
func Within(dir, path string) bool {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return false
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(absDir, absPath)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// WriteFile writes data to rel atomically using a temporary file and rename,
// creating parent directories as needed.
func (d *Dir) WriteFile(rel string, data []byte) error {
	return WriteFile(d.Path(rel), data)
}

// CopyFile copies the file at src to rel.
func (d *Dir) CopyFile(src, rel string) error {
	return CopyFile(src, d.Path(rel))
}

// CopyTree copies every regular file under src to rel, keeping the
// directory layout. A missing src copies nothing. It returns the number of
// files copied.
func (d *Dir) CopyTree(src, rel string) (int, error) {
	return CopyTree(src, d.Path(rel))
}

// WriteFile writes data to path atomically using a temporary file in the
// same directory and a rename.
func WriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".quill-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		os.Remove(tmpPath)
		return err
	}

	return os.Rename(tmpPath, path)
}

// CopyFile copies src to dst byte for byte, creating parent directories.
func CopyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// CopyTree copies every regular file under src into dst. A missing src is
// not an error.
func CopyTree(src, dst string) (int, error) {
	info, err := os.Stat(src)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	if !info.IsDir() {
		return 0, fmt.Errorf("%s is not a directory", src)
	}

	n := 0
	err = filepath.WalkDir(src, func(path string, de fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !de.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		if err := CopyFile(path, filepath.Join(dst, rel)); err != nil {
			return err
		}
		n++
		return nil
	})
	return n, err
}
