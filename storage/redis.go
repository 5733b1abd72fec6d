package storage

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// DefaultOpTimeout bounds every redis command issued by the store.
	DefaultOpTimeout = 1 * time.Second

	// DefaultConnectTimeout bounds connection establishment.
	DefaultConnectTimeout = 1 * time.Second

	// scanBatch is the COUNT hint used by the prefix-scoped Clear.
	scanBatch = 256
)

// Client is the slice of redis.UniversalClient the store uses. Narrow
// on purpose so tests can substitute a fake.
type Client interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Incr(ctx context.Context, key string) *redis.IntCmd
	Scan(ctx context.Context, cursor uint64, match string, count int64) *redis.ScanCmd
	Close() error
}

// RedisConfig carries the connection parameters for a redis-backed store.
type RedisConfig struct {
	// Host and Port locate the server. Host defaults to "localhost",
	// Port to 6379.
	Host string
	Port int

	// DB selects the database index.
	DB int

	// Password authenticates the connection, when non-empty.
	Password string

	// Prefix scopes Clear: only keys matching Prefix* are purged.
	Prefix string

	// OpTimeout bounds each command. Defaults to DefaultOpTimeout.
	OpTimeout time.Duration
}

// Addr renders the host:port dial address.
func (c RedisConfig) Addr() string {
	host := c.Host
	if host == "" {
		host = "localhost"
	}
	port := c.Port
	if port == 0 {
		port = 6379
	}
	return net.JoinHostPort(host, strconv.Itoa(port))
}

// Redis adapts a redis server to the Store contract. Payloads pass
// through untransformed; serialization is the caller's concern. Every
// command runs under a fixed deadline and network failures surface as
// ErrTransport.
type Redis struct {
	client  Client
	prefix  string
	timeout time.Duration
}

// OpenRedis dials a redis server and wraps it in a store.
func OpenRedis(cfg RedisConfig) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr(),
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: DefaultConnectTimeout,
	})
	return NewRedis(client, cfg.Prefix, cfg.OpTimeout)
}

// NewRedis wraps an existing client. opTimeout <= 0 selects
// DefaultOpTimeout.
func NewRedis(client Client, prefix string, opTimeout time.Duration) *Redis {
	if opTimeout <= 0 {
		opTimeout = DefaultOpTimeout
	}
	return &Redis{client: client, prefix: prefix, timeout: opTimeout}
}

// Get returns the payload at key. Absence is ErrNotFound; everything
// else is ErrTransport.
func (r *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: get %q: %v", ErrTransport, key, err)
	}
	return data, nil
}

// Set stores the payload at key. ttl <= 0 stores without expiry.
func (r *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if ttl < 0 {
		ttl = 0
	}
	if err := r.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("%w: set %q: %v", ErrTransport, key, err)
	}
	return nil
}

// Delete removes the entry at key. Idempotent.
func (r *Redis) Delete(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("%w: del %q: %v", ErrTransport, key, err)
	}
	return nil
}

// Clear removes every key under the store's prefix, scanning in
// batches. It never flushes the server.
func (r *Redis) Clear(ctx context.Context) error {
	match := r.prefix + "*"

	var cursor uint64
	for {
		keys, next, err := r.scan(ctx, cursor, match)
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := r.del(ctx, keys); err != nil {
				return err
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}

// Incr atomically increments the integer at key, creating it at 1.
func (r *Redis) Incr(ctx context.Context, key string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	n, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: incr %q: %v", ErrTransport, key, err)
	}
	return n, nil
}

// Close releases the underlying connection.
func (r *Redis) Close() error {
	return r.client.Close()
}

func (r *Redis) scan(ctx context.Context, cursor uint64, match string) ([]string, uint64, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	keys, next, err := r.client.Scan(ctx, cursor, match, scanBatch).Result()
	if err != nil {
		return nil, 0, fmt.Errorf("%w: scan %q: %v", ErrTransport, match, err)
	}
	return keys, next, nil
}

func (r *Redis) del(ctx context.Context, keys []string) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("%w: del batch: %v", ErrTransport, err)
	}
	return nil
}

var (
	_ Store   = (*Redis)(nil)
	_ Counter = (*Redis)(nil)
)
