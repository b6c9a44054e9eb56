// Package kvstore provides the key/value persistence seam used for the
// news cache, the spiral weather cache and the news quota tracker.
// Values are stored JSON-serialized with an optional TTL checked on read.
package kvstore

import (
	"context"
	"time"
)

// Store is the capability injected into services that need persisted
// state. Get unmarshals the stored value into dest and reports whether a
// live (non-expired) entry was found. Reads and writes are not atomic
// with respect to each other; near-simultaneous read-modify-write cycles
// can lose updates, which callers accept.
type Store interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
