package fncache

import (
	"context"

	"github.com/leowzz/fn-cache/cache"
)

// EnableGlobalCache turns caching on for every manager in the process.
func EnableGlobalCache() { cache.Enable() }

// DisableGlobalCache turns caching off process-wide: every get reads as
// a miss, every set is a no-op, and wrapped functions execute on each
// call.
func DisableGlobalCache() { cache.Disable() }

// IsGlobalCacheEnabled reports the global on/off flag.
func IsGlobalCacheEnabled() bool { return cache.Enabled() }

// PreloadAll warms every cache whose wrapper registered a preload
// provider, replaying the provided argument tuples with the lookup
// bypassed and the store enabled.
func PreloadAll(ctx context.Context) error { return cache.PreloadAll(ctx) }

// InvalidateAll logically invalidates every entry of every live cache
// by bumping each global version counter.
func InvalidateAll(ctx context.Context) error { return cache.InvalidateAll(ctx) }

// InvalidateUser logically invalidates every user-scoped entry for the
// given user id across all live caches.
func InvalidateUser(ctx context.Context, userID string) error {
	return cache.InvalidateUser(ctx, userID)
}

// GetStatistics snapshots every live cache's counters, keyed by cache
// name.
func GetStatistics() map[string]cache.Snapshot { return cache.AllStats() }

// ResetStatistics zeroes every live cache's counters.
func ResetStatistics() { cache.ResetAllStats() }
