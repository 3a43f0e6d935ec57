package snapshot

import (
	"context"
)

// Store is a snapshot persistence backend.
// Implementations must be safe for concurrent use.
type Store interface {
	// Save stores data under key, replacing any previous document.
	Save(ctx context.Context, key string, data []byte) error

	// Load returns the document stored under key.
	// Returns (nil, nil) if there is none.
	Load(ctx context.Context, key string) ([]byte, error)

	// Delete removes the document under key.
	// Should not return an error if there is none.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the store.
	Close() error
}

// ErrStoreClosed is returned when operations are attempted on a closed store.
type ErrStoreClosed struct{}

func (e ErrStoreClosed) Error() string {
	return "snapshot store is closed"
}
