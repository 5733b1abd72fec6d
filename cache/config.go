package cache

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/metric"

	"github.com/leowzz/fn-cache/keys"
	"github.com/leowzz/fn-cache/serializer"
	"github.com/leowzz/fn-cache/storage"
)

// Discipline selects the expiry/eviction policy of a cache.
type Discipline string

const (
	// DisciplineTTL expires entries after a time-to-live.
	DisciplineTTL Discipline = "ttl"

	// DisciplineLRU bounds the cache and evicts the least recently used
	// entry, with TTL layered on top.
	DisciplineLRU Discipline = "lru"
)

// Backend selects where entries live.
type Backend string

const (
	// BackendMemory keeps entries in process memory.
	BackendMemory Backend = "memory"

	// BackendRedis keeps entries in an external redis server.
	BackendRedis Backend = "redis"
)

// Configuration errors, raised at construction and never at call time.
var (
	ErrInvalidCapacity     = errors.New("cache: lru capacity must be positive")
	ErrMissingRedis        = errors.New("cache: redis backend requires connection parameters")
	ErrUnknownDiscipline   = errors.New("cache: unknown discipline")
	ErrUnknownBackend      = errors.New("cache: unknown backend")
	ErrBlockingUnsupported = errors.New("cache: blocking calls are not supported on the redis backend")
)

// Environment variables consulted for unset configuration fields.
const (
	EnvRedisHost       = "FNCACHE_REDIS_HOST"
	EnvRedisPort       = "FNCACHE_REDIS_PORT"
	EnvRedisDB         = "FNCACHE_REDIS_DB"
	EnvRedisPassword   = "FNCACHE_REDIS_PASSWORD"
	EnvDefaultTTL      = "FNCACHE_DEFAULT_TTL"
	EnvDefaultCapacity = "FNCACHE_DEFAULT_CAPACITY"
)

const (
	// DefaultTTL applies when neither the config nor the environment
	// sets one.
	DefaultTTL = 5 * time.Minute

	// DefaultCapacity applies to LRU caches when neither the config nor
	// the environment sets one.
	DefaultCapacity = 1024
)

// Config describes a cache manager.
type Config struct {
	// Name identifies the cache in statistics and monitor reports.
	// Auto-assigned when empty.
	Name string

	// Discipline defaults to DisciplineTTL.
	Discipline Discipline

	// Backend defaults to BackendMemory.
	Backend Backend

	// DefaultTTL applies to sets that carry no explicit TTL. Zero falls
	// back to the FNCACHE_DEFAULT_TTL environment variable (seconds),
	// then to DefaultTTL.
	DefaultTTL time.Duration

	// Capacity bounds an LRU cache. Zero falls back to
	// FNCACHE_DEFAULT_CAPACITY, then to DefaultCapacity. Negative is a
	// configuration error.
	Capacity int

	// Prefix is prepended to every composed key. Defaults to "cache:".
	Prefix string

	// Format selects the payload codec. Defaults to FormatJSON.
	Format serializer.Format

	// DynamicTTL, when set, derives the TTL from the value being
	// stored. A negative result means the value is not cached.
	DynamicTTL func(value any) time.Duration

	// Redis carries connection parameters for BackendRedis. When nil,
	// normalize builds one from the FNCACHE_REDIS_* environment
	// variables if FNCACHE_REDIS_HOST is set.
	Redis *storage.RedisConfig

	// Store overrides backend construction with a caller-built store.
	Store storage.Store

	// Logger receives one warn line per swallowed error. Nil disables
	// logging.
	Logger *zerolog.Logger

	// Meter mirrors the statistics counters to OpenTelemetry. Nil
	// selects a noop meter.
	Meter metric.Meter

	// Clock drives TTL decisions in the in-memory stores. Nil selects
	// the real clock.
	Clock clockwork.Clock
}

// normalize fills unset fields from the environment and built-in
// defaults. It mutates the receiver copy only.
func (c *Config) normalize() {
	if c.Discipline == "" {
		c.Discipline = DisciplineTTL
	}
	if c.Backend == "" {
		c.Backend = BackendMemory
	}
	if c.Prefix == "" {
		c.Prefix = keys.DefaultPrefix
	}
	if c.Format == "" {
		c.Format = serializer.FormatJSON
	}
	if c.Clock == nil {
		c.Clock = clockwork.NewRealClock()
	}
	if c.DefaultTTL == 0 {
		if secs, ok := envInt(EnvDefaultTTL); ok {
			c.DefaultTTL = time.Duration(secs) * time.Second
		} else {
			c.DefaultTTL = DefaultTTL
		}
	}
	if c.Discipline == DisciplineLRU && c.Capacity == 0 {
		if n, ok := envInt(EnvDefaultCapacity); ok {
			c.Capacity = n
		} else {
			c.Capacity = DefaultCapacity
		}
	}
	if c.Backend == BackendRedis && c.Redis == nil && c.Store == nil {
		if host, ok := os.LookupEnv(EnvRedisHost); ok {
			rc := storage.RedisConfig{Host: host, Prefix: c.Prefix}
			if port, ok := envInt(EnvRedisPort); ok {
				rc.Port = port
			}
			if db, ok := envInt(EnvRedisDB); ok {
				rc.DB = db
			}
			rc.Password = os.Getenv(EnvRedisPassword)
			c.Redis = &rc
		}
	}
}

// validate reports configuration errors. Called after normalize.
func (c *Config) validate() error {
	switch c.Discipline {
	case DisciplineTTL, DisciplineLRU:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownDiscipline, c.Discipline)
	}
	switch c.Backend {
	case BackendMemory, BackendRedis:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownBackend, c.Backend)
	}
	if c.Discipline == DisciplineLRU && c.Capacity <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidCapacity, c.Capacity)
	}
	if c.Backend == BackendRedis && c.Redis == nil && c.Store == nil {
		return ErrMissingRedis
	}
	if _, err := serializer.New(c.Format); err != nil {
		return err
	}
	return nil
}

func (c *Config) logger() zerolog.Logger {
	if c.Logger == nil {
		return zerolog.Nop()
	}
	return *c.Logger
}

func envInt(name string) (int, bool) {
	raw, ok := os.LookupEnv(name)
	if !ok || raw == "" {
		return 0, false
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return n, true
}
