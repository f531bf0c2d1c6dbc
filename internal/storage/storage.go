// Package storage holds generated documents for later retrieval by key.
package storage

import (
	"context"
	"errors"
	"path"
	"strings"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("blob not found")

// Blob is a stored document.
type Blob struct {
	Key         string
	Filename    string
	ContentType string
	Data        []byte
}

// Store persists blobs under generated keys.
type Store interface {
	// Put stores data and returns the key it can be fetched with.
	Put(ctx context.Context, filename, contentType string, data []byte) (string, error)
	Get(ctx context.Context, key string) (Blob, error)
}

// newKey returns a random key keeping the extension of filename.
func newKey(filename string) string {
	return uuid.NewString() + strings.ToLower(path.Ext(filename))
}

// KeyFromURL extracts the blob key from a URL produced for a stored blob:
// the last path segment, without query or fragment.
func KeyFromURL(raw string) string {
	if i := strings.IndexAny(raw, "?#"); i >= 0 {
		raw = raw[:i]
	}
	raw = strings.TrimRight(raw, "/")
	if i := strings.LastIndex(raw, "/"); i >= 0 {
		raw = raw[i+1:]
	}
	return raw
}
