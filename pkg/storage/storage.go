// Package storage is the blob area behind the attachment manager.
// Blobs are write-once: there is no update or delete operation, which
// matches record immutability. A stored blob's lifetime is independent
// of any record row referencing it.
package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

var (
	// ErrNotFound is returned when no blob exists under the given name.
	ErrNotFound = errors.New("blob not found")
	// ErrInvalidName is returned for empty names or names that would
	// escape the blob area.
	ErrInvalidName = errors.New("invalid blob name")
)

// StoredFile describes a persisted blob.
type StoredFile struct {
	Name string
	Size int64
}

// Store is the write-once blob store.
type Store interface {
	// Put persists the payload under a collision-resistant name derived
	// from originalName and returns the stored name and byte count.
	Put(ctx context.Context, payload io.Reader, originalName string) (*StoredFile, error)
	// Open returns the blob for streaming. The caller closes the reader.
	Open(ctx context.Context, storedName string) (io.ReadCloser, *StoredFile, error)
	// Stat reports whether a blob exists without opening it.
	Stat(ctx context.Context, storedName string) (*StoredFile, error)
}

// Clock abstracts time.Now for deterministic stored-name prefixes in
// tests.
type Clock func() time.Time
