package fncache

import (
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/leowzz/fn-cache/cache"
	"github.com/leowzz/fn-cache/keys"
	"github.com/leowzz/fn-cache/serializer"
	"github.com/leowzz/fn-cache/storage"
)

// Option configures a wrapped function.
type Option func(*wrapperConfig)

type wrapperConfig struct {
	cacheCfg  cache.Config
	name      string
	keyFn     keys.KeyFunc
	selectors []string
	userParam string
	preload   PreloadProvider
	manager   *cache.Manager
}

// WithName overrides the function identity embedded in cache keys. The
// default is the function's module-qualified name.
func WithName(name string) Option {
	return func(c *wrapperConfig) { c.name = name }
}

// WithTTL sets the default TTL for stored results.
func WithTTL(ttl time.Duration) Option {
	return func(c *wrapperConfig) { c.cacheCfg.DefaultTTL = ttl }
}

// WithDiscipline selects the expiry/eviction policy.
func WithDiscipline(d cache.Discipline) Option {
	return func(c *wrapperConfig) { c.cacheCfg.Discipline = d }
}

// WithLRU selects the LRU discipline with the given capacity.
func WithLRU(capacity int) Option {
	return func(c *wrapperConfig) {
		c.cacheCfg.Discipline = cache.DisciplineLRU
		c.cacheCfg.Capacity = capacity
	}
}

// WithBackend selects where entries live.
func WithBackend(b cache.Backend) Option {
	return func(c *wrapperConfig) { c.cacheCfg.Backend = b }
}

// WithRedis selects the redis backend with explicit connection
// parameters.
func WithRedis(rc storage.RedisConfig) Option {
	return func(c *wrapperConfig) {
		c.cacheCfg.Backend = cache.BackendRedis
		c.cacheCfg.Redis = &rc
	}
}

// WithStore substitutes a caller-built store for the backend.
func WithStore(s storage.Store) Option {
	return func(c *wrapperConfig) { c.cacheCfg.Store = s }
}

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(c *wrapperConfig) { c.cacheCfg.Prefix = prefix }
}

// WithFormat selects the payload codec.
func WithFormat(f serializer.Format) Option {
	return func(c *wrapperConfig) { c.cacheCfg.Format = f }
}

// WithDynamicTTL derives each stored value's TTL from the value itself.
// A negative result keeps the value out of the cache.
func WithDynamicTTL(fn func(value any) time.Duration) Option {
	return func(c *wrapperConfig) { c.cacheCfg.DynamicTTL = fn }
}

// WithCacheName names the underlying manager in statistics and monitor
// reports.
func WithCacheName(name string) Option {
	return func(c *wrapperConfig) { c.cacheCfg.Name = name }
}

// WithKeyFunc replaces the rendered-arguments portion of the key with
// the function's result. Wins over WithSelectors.
func WithKeyFunc(fn keys.KeyFunc) Option {
	return func(c *wrapperConfig) { c.keyFn = fn }
}

// WithSelectors restricts which arguments participate in the key.
// Positional arguments are addressed as "arg0", "arg1", ...
func WithSelectors(names ...string) Option {
	return func(c *wrapperConfig) { c.selectors = names }
}

// WithUserParam names the argument that carries the user id, enabling
// per-user invalidation.
func WithUserParam(name string) Option {
	return func(c *wrapperConfig) { c.userParam = name }
}

// WithPreload registers a provider whose argument tuples warm the cache
// when PreloadAll runs.
func WithPreload(p PreloadProvider) Option {
	return func(c *wrapperConfig) { c.preload = p }
}

// WithManager reuses an existing manager instead of constructing one.
func WithManager(m *cache.Manager) Option {
	return func(c *wrapperConfig) { c.manager = m }
}

// WithLogger routes the wrapper's and manager's degradation warnings.
func WithLogger(logger *zerolog.Logger) Option {
	return func(c *wrapperConfig) { c.cacheCfg.Logger = logger }
}

// WithClock substitutes the clock driving TTL decisions.
func WithClock(clock clockwork.Clock) Option {
	return func(c *wrapperConfig) { c.cacheCfg.Clock = clock }
}
