package fncache

import (
	"context"
	"reflect"
	"runtime"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/leowzz/fn-cache/cache"
	"github.com/leowzz/fn-cache/keys"
)

// PreloadProvider yields the argument tuples a startup hook replays to
// warm the cache.
type PreloadProvider func(ctx context.Context) [][]any

// Named attaches a parameter name to a call argument, the way another
// language would pass a keyword argument:
//
//	profile, err := f.Call(ctx, fncache.Named("uid", 42), fncache.Named("full", true))
func Named(name string, value any) any {
	return keys.Named{Name: name, Value: value}
}

// Func is a cache-backed procedure. A Call builds the key, probes the
// cache, and only on a miss executes the underlying function, under a
// singleflight guarantee: at most one execution per distinct key is in
// flight in this process; concurrent callers with the same key share
// the result.
type Func[V any] struct {
	fn      func(ctx context.Context, args ...any) (V, error)
	manager *cache.Manager
	builder *keys.Builder
	flight  singleflight.Group
	log     zerolog.Logger
}

// New wraps fn in a cache. The zero configuration is a TTL cache in
// process memory with the JSON codec and a five minute TTL.
func New[V any](fn func(ctx context.Context, args ...any) (V, error), opts ...Option) (*Func[V], error) {
	if fn == nil {
		return nil, ErrNilFunction
	}

	var cfg wrapperConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.name == "" {
		cfg.name = functionName(fn)
	}

	manager := cfg.manager
	if manager == nil {
		var err error
		if manager, err = cache.New(cfg.cacheCfg); err != nil {
			return nil, err
		}
	}

	f := &Func[V]{
		fn:      fn,
		manager: manager,
		builder: &keys.Builder{
			Function:  cfg.name,
			Selectors: cfg.selectors,
			KeyFn:     cfg.keyFn,
			UserParam: cfg.userParam,
		},
		log: zerolog.Nop(),
	}
	if cfg.cacheCfg.Logger != nil {
		f.log = *cfg.cacheCfg.Logger
	}

	if cfg.preload != nil {
		cache.RegisterPrimer(f.primer(cfg.preload))
	}
	return f, nil
}

// Call invokes the wrapped function through the cache.
//
// The flow is: build key, probe, on hit decode and return, on miss
// execute under singleflight, store, return. An unrenderable argument
// downgrades the call to plain execution. An error from the underlying
// function propagates verbatim and nothing is cached.
func (f *Func[V]) Call(ctx context.Context, args ...any) (V, error) {
	var zero V
	ctrl := controlsFrom(ctx)

	key, err := f.builder.Build(args)
	if err != nil {
		f.log.Warn().Str("fn", f.builder.Function).Err(err).Msg("key derivation failed, call is uncached")
		return f.fn(ctx, args...)
	}

	var opts []cache.CallOption
	if uid, ok := f.builder.UserID(args); ok {
		opts = append(opts, cache.WithUser(uid))
	}

	if !ctrl.skipRead {
		var v V
		if found, _ := f.manager.Get(ctx, key, &v, opts...); found {
			return v, nil
		}
	} else {
		// Forced execution: no lookup, no flight sharing.
		v, err := f.fn(ctx, args...)
		if err != nil {
			return zero, err
		}
		if !ctrl.skipWrite {
			f.store(ctx, ctrl, key, v, opts)
		}
		return v, nil
	}

	ch := f.flight.DoChan(key, func() (any, error) {
		v, err := f.fn(ctx, args...)
		if err != nil {
			return nil, err
		}
		if !ctrl.skipWrite {
			f.store(ctx, ctrl, key, v, opts)
		}
		return v, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			// The completed flight is already forgotten; the next
			// caller retries.
			return zero, res.Err
		}
		return res.Val.(V), nil
	case <-ctx.Done():
		// Detaches this caller only. The execution keeps running under
		// the context of the caller that started it, and the other
		// waiters receive whatever it returns.
		return zero, ctx.Err()
	}
}

// Manager exposes the underlying cache manager for direct invalidation
// and statistics.
func (f *Func[V]) Manager() *cache.Manager { return f.manager }

func (f *Func[V]) store(ctx context.Context, ctrl controls, key string, v V, opts []cache.CallOption) {
	if ctrl.asyncWrite {
		bg := context.WithoutCancel(ctx)
		go f.write(bg, key, v, opts)
		return
	}
	f.write(ctx, key, v, opts)
}

func (f *Func[V]) write(ctx context.Context, key string, v V, opts []cache.CallOption) {
	if err := f.manager.Set(ctx, key, v, opts...); err != nil {
		f.log.Warn().Str("fn", f.builder.Function).Str("key", key).Err(err).Msg("cache store failed")
	}
}

func (f *Func[V]) primer(provider PreloadProvider) cache.PrimeFunc {
	return func(ctx context.Context) error {
		warm := WithReadBypass(ctx)
		for _, tuple := range provider(ctx) {
			if _, err := f.Call(warm, tuple...); err != nil {
				return err
			}
		}
		return nil
	}
}

// Wrap1 wraps a one-argument function, preserving its signature.
func Wrap1[A, V any](fn func(ctx context.Context, a A) (V, error), opts ...Option) (func(ctx context.Context, a A) (V, error), error) {
	if fn == nil {
		return nil, ErrNilFunction
	}
	opts = append([]Option{WithName(functionName(fn))}, opts...)
	f, err := New(func(ctx context.Context, args ...any) (V, error) {
		return fn(ctx, args[0].(A))
	}, opts...)
	if err != nil {
		return nil, err
	}
	return func(ctx context.Context, a A) (V, error) {
		return f.Call(ctx, a)
	}, nil
}

// Wrap2 wraps a two-argument function, preserving its signature.
func Wrap2[A, B, V any](fn func(ctx context.Context, a A, b B) (V, error), opts ...Option) (func(ctx context.Context, a A, b B) (V, error), error) {
	if fn == nil {
		return nil, ErrNilFunction
	}
	opts = append([]Option{WithName(functionName(fn))}, opts...)
	f, err := New(func(ctx context.Context, args ...any) (V, error) {
		return fn(ctx, args[0].(A), args[1].(B))
	}, opts...)
	if err != nil {
		return nil, err
	}
	return func(ctx context.Context, a A, b B) (V, error) {
		return f.Call(ctx, a, b)
	}, nil
}

// functionName resolves a function's module-qualified name.
func functionName(fn any) string {
	pc := reflect.ValueOf(fn).Pointer()
	if rf := runtime.FuncForPC(pc); rf != nil {
		return rf.Name()
	}
	return "func"
}
