// Package storage abstracts the object store thumbnails are read from
// and written to. Backends are selected at construction time; credential
// resolution is entirely a backend concern.
package storage

import (
	"context"
	"errors"
	"strings"
)

// ErrNotFound is returned by Get and Delete when no object exists at
// the given path. Backends translate their provider errors into it.
var ErrNotFound = errors.New("object not found")

// ObjectStore is the capability set the thumbnail pipeline needs from
// a storage provider. Paths use forward slashes regardless of backend.
type ObjectStore interface {
	// Get reads the full object at path.
	Get(ctx context.Context, path string) ([]byte, error)

	// Put commits data to path, replacing any existing object. The
	// write is atomic from the caller's perspective: either the bytes
	// are fully committed or the path is untouched.
	Put(ctx context.Context, path string, data []byte) error

	// Exists reports whether an object is present at path.
	Exists(ctx context.Context, path string) (bool, error)

	// List returns the object paths on one level under prefix, not
	// descending into deeper levels. Paths are returned in canonical
	// form, as produced by CanonicalKey.
	List(ctx context.Context, prefix string) ([]string, error)

	// Delete removes the object at path.
	Delete(ctx context.Context, path string) error
}

// CanonicalKey strips the leading separator so "/thumbs/a.png" and
// "thumbs/a.png" address the same object on every backend. Callers
// comparing computed paths against List output should canonicalize
// them with this function.
func CanonicalKey(path string) string {
	return strings.TrimLeft(path, "/")
}
