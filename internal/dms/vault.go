package dms

import (
	"context"
	"io"
)

// Vault is a destination that document attachments can be exported to.
// Keys are slash-separated paths such as "documents/7/3-report.pdf".
type Vault interface {
	// Put stores exactly size bytes read from r under key, replacing any
	// previous object. A reader that yields a different number of bytes is
	// an error and leaves nothing behind.
	Put(ctx context.Context, key string, r io.Reader, size int64) error

	// Get writes the object stored under key to w.
	Get(ctx context.Context, key string, w io.Writer) error

	// Exists reports whether an object is stored under key.
	Exists(ctx context.Context, key string) (bool, error)

	// ValidateSetup checks that the vault is reachable and writable.
	ValidateSetup(ctx context.Context) error
}
