// Package cache provides alert de-duplication stores.
package cache

import (
	"fmt"

	"github.com/opensource-finance/kestrel/internal/domain"
)

// New creates a dedup store based on configuration. The memory store
// only survives a single process; Redis carries dedup state across
// repeated batch runs.
func New(cfg domain.DedupConfig) (domain.DedupStore, error) {
	switch cfg.Type {
	case "memory":
		return NewMemoryStore(), nil

	case "redis":
		return NewRedisStore(cfg)

	default:
		return nil, fmt.Errorf("unsupported dedup store type: %s", cfg.Type)
	}
}
