package domain

import (
	"context"
	"time"
)

// DedupStore remembers which alerts have already been published so that
// re-running the batch over an overlapping ledger does not emit
// duplicates. It never influences report contents.
type DedupStore interface {
	// Seen reports whether the key was marked within its TTL.
	Seen(ctx context.Context, key string) (bool, error)

	// Mark records the key for ttl.
	Mark(ctx context.Context, key string, ttl time.Duration) error

	Ping(ctx context.Context) error
	Close() error
}
