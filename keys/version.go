package keys

import (
	"context"
	"errors"
	"strconv"

	"github.com/leowzz/fn-cache/storage"
)

// Version counter key templates. They are deliberately un-prefixed by
// the cache prefix so external stores shared across applications keep a
// recognizable namespace.
const (
	// GlobalVersionKey holds the process-wide version counter.
	GlobalVersionKey = "fncache:global:version"

	// userVersionPrefix templates the per-user counters.
	userVersionPrefix = "fncache:user:version:"
)

// UserVersionKey renders the counter key for a user id.
func UserVersionKey(userID string) string {
	return userVersionPrefix + userID
}

// VersionRegistry persists the global and per-user version counters
// through the same store the cache uses. A counter's current value is
// embedded in every derived key, so incrementing it logically
// invalidates all keys that carried the prior value without touching
// the data.
type VersionRegistry struct {
	store storage.Store
}

// NewVersionRegistry binds the registry to a store.
func NewVersionRegistry(store storage.Store) *VersionRegistry {
	return &VersionRegistry{store: store}
}

// Global returns the current global version. A missing counter reads
// as 1 and is written back. On storage failure the caller still gets a
// usable version of 1 alongside the error.
func (r *VersionRegistry) Global(ctx context.Context) (int64, error) {
	return r.current(ctx, GlobalVersionKey)
}

// User returns the current version for a user id.
func (r *VersionRegistry) User(ctx context.Context, userID string) (int64, error) {
	return r.current(ctx, UserVersionKey(userID))
}

// IncrGlobal bumps the global counter and returns the new value.
func (r *VersionRegistry) IncrGlobal(ctx context.Context) (int64, error) {
	return r.incr(ctx, GlobalVersionKey)
}

// IncrUser bumps the counter for a user id and returns the new value.
func (r *VersionRegistry) IncrUser(ctx context.Context, userID string) (int64, error) {
	return r.incr(ctx, UserVersionKey(userID))
}

func (r *VersionRegistry) current(ctx context.Context, key string) (int64, error) {
	data, err := r.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			err = r.store.Set(ctx, key, []byte("1"), 0)
		}
		return 1, err
	}
	n, perr := strconv.ParseInt(string(data), 10, 64)
	if perr != nil || n < 1 {
		// Corrupt counter: reset rather than derive unstable keys.
		return 1, r.store.Set(ctx, key, []byte("1"), 0)
	}
	return n, nil
}

func (r *VersionRegistry) incr(ctx context.Context, key string) (int64, error) {
	if counter, ok := r.store.(storage.Counter); ok {
		return counter.Incr(ctx, key)
	}

	// Fallback for stores without native increments.
	n, err := r.current(ctx, key)
	if err != nil {
		return n, err
	}
	n++
	return n, r.store.Set(ctx, key, []byte(strconv.FormatInt(n, 10)), 0)
}
