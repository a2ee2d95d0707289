// Package cache stores raw AI responses keyed by instruction text.
package cache

import (
	"context"
	"time"
)

// DefaultTTL applies when no TTL is configured.
const DefaultTTL = 30 * time.Minute

// Store is a string key/value cache. Implementations must be safe for
// concurrent use. A miss is (_, false, nil).
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}
