// Package storage holds the physical bytes of uploaded media. Documents in
// internal/store reference blobs by their storage path; the bytes must be
// durable before any metadata record pointing at them is written.
package storage

import (
	"context"
	"io"
)

// BlobStore abstracts where uploaded bytes live.
type BlobStore interface {
	// Put stores the full stream at path, replacing any previous object.
	Put(ctx context.Context, path string, reader io.Reader, size int64, contentType string) error
	// Get opens the object for reading.
	Get(ctx context.Context, path string) (io.ReadCloser, error)
	// Delete removes the object; deleting an absent object succeeds.
	Delete(ctx context.Context, path string) error
}
