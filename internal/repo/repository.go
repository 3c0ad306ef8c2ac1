package repo

import "context"

// KV is a durable key-value store partitioned by scope, the server-side
// stand-in for a browser's origin-scoped storage. One scope per visitor.
type KV interface {
	// Get returns ok=false when the key has never been set in scope.
	Get(ctx context.Context, scope, key string) (value string, ok bool, err error)
	// Set upserts the value.
	Set(ctx context.Context, scope, key, value string) error
	// Delete is a no-op for a missing key.
	Delete(ctx context.Context, scope, key string) error
}
