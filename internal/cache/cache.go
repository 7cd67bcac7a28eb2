// Package cache provides the namespaced key-value stores with per-entry TTL that
// hold raw API payloads.
package cache

import (
	"context"
	"time"
)

// Store is a byte store with TTL. Implementations must be safe for concurrent use.
// Get reports a miss with ok == false and a nil error.
type Store interface {
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	DeleteByPrefix(ctx context.Context, prefix string) (int, error)
	Close() error
}
