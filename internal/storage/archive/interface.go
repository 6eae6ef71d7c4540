// Package archive persists daily analysis reports as JSON blobs behind
// a small storage abstraction with local-filesystem and S3 backends.
package archive

import "context"

// Storage is the blob backend the report layer writes through. Paths
// are relative, forward-slash separated keys.
type Storage interface {
	// Write stores data at path, creating parents as needed.
	Write(ctx context.Context, path string, data []byte) error

	// Read returns the blob at path.
	Read(ctx context.Context, path string) ([]byte, error)

	// List returns every path under prefix.
	List(ctx context.Context, prefix string) ([]string, error)

	// Delete removes the blob at path.
	Delete(ctx context.Context, path string) error

	// Exists reports whether a blob is present at path.
	Exists(ctx context.Context, path string) (bool, error)
}
