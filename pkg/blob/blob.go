// Package blob defines the document content store. Keys are slash
// separated relative paths such as "projects/prj_x/doc_y/brief.pdf".
package blob

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"
)

// ErrNotFound is returned when no object exists under a key.
var ErrNotFound = errors.New("blob not found")

// ErrInvalidKey is returned for keys that are empty, absolute or escape
// the store root.
var ErrInvalidKey = errors.New("invalid blob key")

// Store persists opaque file content.
type Store interface {
	// Put writes r under key, replacing any existing object, and returns
	// the number of bytes written.
	Put(ctx context.Context, key string, r io.Reader) (int64, error)

	// Open returns a reader for the object under key.
	Open(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes the object. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// CleanKey validates key and returns its canonical form.
func CleanKey(key string) (string, error) {
	if key == "" || strings.HasPrefix(key, "/") || strings.ContainsAny(key, "\\\x00") {
		return "", ErrInvalidKey
	}
	clean := path.Clean(key)
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", ErrInvalidKey
	}
	return clean, nil
}

// DocumentKey builds the key of a project document.
func DocumentKey(projectID, documentID, name string) string {
	return path.Join("projects", projectID, documentID, name)
}
