package cache

import (
	"context"
	"errors"
	"io"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/leowzz/fn-cache/keys"
	"github.com/leowzz/fn-cache/serializer"
	"github.com/leowzz/fn-cache/storage"
)

// Manager binds a store, a codec, and the version counters into one
// cache. Keys handed to Get/Set/Delete are logical: the manager
// prepends its prefix and inlines the current version counters before
// touching storage, so bumping a counter invalidates every prior key in
// O(1).
//
// Error policy: a failing read is a miss, a failing write or delete is
// a success (the data is just not cached). Each swallowed failure
// increments the error counter and emits one warn line. Serialization
// failures on Set are the exception: Set is the synchronous
// confirmation path, so they surface to the caller.
type Manager struct {
	name     string
	cfg      Config
	store    storage.Store
	codec    serializer.Serializer
	versions *keys.VersionRegistry
	stats    *Stats
	log      zerolog.Logger
}

// CallOption adjusts a single manager operation.
type CallOption func(*callOptions)

type callOptions struct {
	user   string
	ttl    time.Duration
	hasTTL bool
}

// WithUser scopes the operation to a user id, inlining that user's
// version counter into the key.
func WithUser(userID string) CallOption {
	return func(o *callOptions) { o.user = userID }
}

// WithTTL overrides the TTL for one Set.
func WithTTL(ttl time.Duration) CallOption {
	return func(o *callOptions) {
		o.ttl = ttl
		o.hasTTL = true
	}
}

// New builds a manager from cfg and registers it with the global
// registry. Configuration problems surface here, never at call time.
func New(cfg Config) (*Manager, error) {
	cfg.normalize()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	codec, err := serializer.New(cfg.Format)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(cfg)
	if err != nil {
		return nil, err
	}

	// Version counters share the cache's store, except under LRU:
	// capacity pressure could evict a counter and reset its monotonic
	// sequence, so LRU caches keep counters in a side store.
	versionStore := store
	if _, ok := store.(*storage.LRU); ok {
		versionStore = storage.NewMemoryWithClock(cfg.Clock)
	}

	m := &Manager{
		cfg:      cfg,
		store:    store,
		codec:    codec,
		versions: keys.NewVersionRegistry(versionStore),
		log:      cfg.logger(),
	}
	m.name = register(m, cfg.Name)
	m.stats = newStats(m.name, cfg.Meter)
	return m, nil
}

func buildStore(cfg Config) (storage.Store, error) {
	if cfg.Store != nil {
		return cfg.Store, nil
	}
	if cfg.Backend == BackendRedis {
		rc := *cfg.Redis
		if rc.Prefix == "" {
			rc.Prefix = cfg.Prefix
		}
		return storage.OpenRedis(rc), nil
	}
	if cfg.Discipline == DisciplineLRU {
		return storage.NewLRUWithClock(cfg.Capacity, cfg.Clock)
	}
	return storage.NewMemoryWithClock(cfg.Clock), nil
}

// Name identifies the manager in statistics and monitor reports.
func (m *Manager) Name() string { return m.name }

// Get looks up key and decodes the payload into the pointer target.
// It reports whether a live value was found. Storage and decode
// failures read as misses; a payload that no longer decodes is deleted.
func (m *Manager) Get(ctx context.Context, key string, into any, opts ...CallOption) (bool, error) {
	start := time.Now()
	defer func() { m.stats.observe(ctx, time.Since(start)) }()

	if !Enabled() {
		m.stats.miss(ctx)
		return false, nil
	}

	opt := applyOptions(opts)
	full := m.composedKey(ctx, key, opt.user)

	data, err := m.store.Get(ctx, full)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			m.fail(ctx, "get", full, err)
		}
		m.stats.miss(ctx)
		return false, nil
	}

	if err := m.codec.Decode(data, into); err != nil {
		m.fail(ctx, "decode", full, err)
		_ = m.store.Delete(ctx, full)
		m.stats.miss(ctx)
		return false, nil
	}

	m.stats.hit(ctx)
	return true, nil
}

// Set encodes value and stores it under key. The TTL comes from the
// option, else the dynamic-TTL function, else the configured default.
// A negative dynamic TTL skips the store entirely.
func (m *Manager) Set(ctx context.Context, key string, value any, opts ...CallOption) error {
	start := time.Now()
	defer func() { m.stats.observe(ctx, time.Since(start)) }()

	if !Enabled() {
		return nil
	}

	opt := applyOptions(opts)
	ttl := m.cfg.DefaultTTL
	switch {
	case opt.hasTTL:
		ttl = opt.ttl
	case m.cfg.DynamicTTL != nil:
		ttl = m.cfg.DynamicTTL(value)
		if ttl < 0 {
			return nil
		}
	}

	data, err := m.codec.Encode(value)
	if err != nil {
		m.fail(ctx, "encode", key, err)
		return err
	}

	full := m.composedKey(ctx, key, opt.user)
	if err := m.store.Set(ctx, full, data, ttl); err != nil {
		m.fail(ctx, "set", full, err)
		return nil
	}

	m.stats.set(ctx)
	return nil
}

// Delete removes the entry under key. Storage failures are swallowed.
func (m *Manager) Delete(ctx context.Context, key string, opts ...CallOption) error {
	opt := applyOptions(opts)
	full := m.composedKey(ctx, key, opt.user)
	if err := m.store.Delete(ctx, full); err != nil {
		m.fail(ctx, "delete", full, err)
		return nil
	}
	m.stats.del(ctx)
	return nil
}

// IncrGlobalVersion bumps the global version counter, logically
// invalidating every key derived from its prior value.
func (m *Manager) IncrGlobalVersion(ctx context.Context) (int64, error) {
	return m.versions.IncrGlobal(ctx)
}

// IncrUserVersion bumps one user's version counter.
func (m *Manager) IncrUserVersion(ctx context.Context, userID string) (int64, error) {
	return m.versions.IncrUser(ctx, userID)
}

// InvalidateAll logically invalidates every entry in O(1) by bumping
// the global version counter. The data is untouched.
func (m *Manager) InvalidateAll(ctx context.Context) error {
	if _, err := m.versions.IncrGlobal(ctx); err != nil {
		m.fail(ctx, "invalidate", keys.GlobalVersionKey, err)
		return err
	}
	return nil
}

// InvalidateUser logically invalidates every entry scoped to a user.
func (m *Manager) InvalidateUser(ctx context.Context, userID string) error {
	if _, err := m.versions.IncrUser(ctx, userID); err != nil {
		m.fail(ctx, "invalidate", keys.UserVersionKey(userID), err)
		return err
	}
	return nil
}

// Clear physically purges the store. For redis backends the purge is
// scoped to the manager's prefix.
func (m *Manager) Clear(ctx context.Context) error {
	if err := m.store.Clear(ctx); err != nil {
		m.fail(ctx, "clear", m.cfg.Prefix, err)
		return err
	}
	return nil
}

// GetSync is the blocking counterpart of Get, available for in-memory
// backends only.
func (m *Manager) GetSync(key string, into any, opts ...CallOption) (bool, error) {
	if m.cfg.Backend == BackendRedis {
		return false, ErrBlockingUnsupported
	}
	return m.Get(context.Background(), key, into, opts...)
}

// SetSync is the blocking counterpart of Set, available for in-memory
// backends only.
func (m *Manager) SetSync(key string, value any, opts ...CallOption) error {
	if m.cfg.Backend == BackendRedis {
		return ErrBlockingUnsupported
	}
	return m.Set(context.Background(), key, value, opts...)
}

// DeleteSync is the blocking counterpart of Delete, available for
// in-memory backends only.
func (m *Manager) DeleteSync(key string, opts ...CallOption) error {
	if m.cfg.Backend == BackendRedis {
		return ErrBlockingUnsupported
	}
	return m.Delete(context.Background(), key, opts...)
}

// Stats returns a snapshot of the manager's counters.
func (m *Manager) Stats() Snapshot { return m.stats.snapshot() }

// ResetStats zeroes the manager's counters.
func (m *Manager) ResetStats() { m.stats.reset() }

// Usage reports a store's in-memory footprint. Unknown is set for
// external backends, whose footprint lives elsewhere.
type Usage struct {
	Entries   int
	Bytes     int64
	Capacity  int
	Evictions uint64
	Unknown   bool
}

// Usage samples the store's footprint.
func (m *Manager) Usage() Usage {
	sizer, ok := m.store.(storage.Sizer)
	if !ok {
		return Usage{Unknown: true}
	}
	u := Usage{
		Entries:  sizer.Len(),
		Bytes:    sizer.Footprint(),
		Capacity: sizer.Capacity(),
	}
	if lru, ok := m.store.(*storage.LRU); ok {
		u.Evictions = lru.Evictions()
	}
	return u
}

// Close releases the store's resources. Only network-backed stores
// hold any.
func (m *Manager) Close() error {
	if closer, ok := m.store.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// composedKey rewrites a logical key with the prefix and the current
// version counters. A failing counter read degrades to version 1 so the
// caller still observes a working cache.
func (m *Manager) composedKey(ctx context.Context, key, user string) string {
	gv, err := m.versions.Global(ctx)
	if err != nil {
		m.fail(ctx, "version", keys.GlobalVersionKey, err)
	}

	full := m.cfg.Prefix + key + "@g" + strconv.FormatInt(gv, 10)
	if user != "" {
		uv, err := m.versions.User(ctx, user)
		if err != nil {
			m.fail(ctx, "version", keys.UserVersionKey(user), err)
		}
		full += "@u" + keys.Escape(user) + ":" + strconv.FormatInt(uv, 10)
	}
	return full
}

func (m *Manager) fail(ctx context.Context, op, key string, err error) {
	m.stats.failure(ctx)
	m.log.Warn().Str("cache", m.name).Str("op", op).Str("key", key).Err(err).Msg("cache operation degraded")
}

func applyOptions(opts []CallOption) callOptions {
	var o callOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
