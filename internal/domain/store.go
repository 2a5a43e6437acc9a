package domain

import (
	"context"
	"io"
)

// Keys of the persistent key/value store
const (
	KeySessions = "sessions"
	KeyAPIKey   = "apiKey"
	KeyTheme    = "theme"
)

// KVStore is the process-wide persistent key/value store.
// Get returns ErrNotFound for absent keys.
type KVStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
	Close() error
}

// BlobStore keeps attachment bytes behind resource handles
type BlobStore interface {
	// Put stores data for a session and returns its resource handle
	Put(ctx context.Context, sessionID, name string, data []byte) (string, error)
	// Open resolves a blob of a session to its content and MIME type
	Open(ctx context.Context, sessionID, blobID string) (io.ReadCloser, string, error)
	// Release drops the blob behind a handle. Unknown handles are ignored.
	Release(ctx context.Context, url string) error
	// ReleaseSession drops every blob of a session
	ReleaseSession(ctx context.Context, sessionID string) error
}
