package ports

import "context"

// Port: write access to the key-value cache.
type CacheStore interface {
	// Store value under key without expiry, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error
	// Remove every entry in the selected database.
	Flush(ctx context.Context) error
	Close() error
}

// Opens dedicated CacheStore connections, one per caller.
type CacheConnector interface {
	Connect(ctx context.Context) (CacheStore, error)
}
