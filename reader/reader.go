// Package reader defines the interface for loading source content files
// into documents.
package reader

import "github.com/menteora/quill/core"

// Reader loads content files as documents of a given kind.
type Reader interface {
	// ReadFile parses a single content file at the given path.
	ReadFile(path string, kind core.Kind) (*core.Document, error)

	// ReadDir returns every content file directly inside dir, ordered by
	// file name. A missing directory yields no documents and no error.
	ReadDir(dir string, kind core.Kind) ([]*core.Document, error)
}
