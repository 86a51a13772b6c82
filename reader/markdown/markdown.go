// Package markdown reads Markdown content files (*.md) from the pages and
// posts directories.
package markdown

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/menteora/quill/core"
)

// Reader reads Markdown files from disk.
type Reader struct {
	// Now supplies the fallback date for undated posts. Defaults to time.Now.
	Now func() time.Time
	// Logger receives date fallback warnings. Defaults to log.Default().
	Logger *log.Logger
}

// Extensions lists the file extensions treated as content.
var Extensions = []string{".md", ".markdown"}

// ReadFile parses a single Markdown file.
func (r *Reader) ReadFile(path string, kind core.Kind) (*core.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", kind, err)
	}

	d := core.ParseDocument(kind, filepath.Base(path), data, r.now())
	if d.DateFallback {
		r.logger().Warn("post file name has no date, using current time", "file", d.Name)
	}
	return d, nil
}

// ReadDir returns the Markdown documents directly inside dir, sorted by
// file name.
func (r *Reader) ReadDir(dir string, kind core.Kind) ([]*core.Document, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		r.logger().Debug("content directory missing", "kind", kind, "dir", dir)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s directory: %w", kind, err)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	var docs []*core.Document
	for _, e := range entries {
		if e.IsDir() || !IsContent(e.Name()) {
			continue
		}
		d, err := r.ReadFile(filepath.Join(dir, e.Name()), kind)
		if err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, nil
}

// IsContent reports whether name has a content file extension.
func IsContent(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

func (r *Reader) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

func (r *Reader) logger() *log.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return log.Default()
}
