package fncache

import "context"

// controls are the per-call cache directives. They travel in the
// context so a wrapped function keeps its original signature.
type controls struct {
	skipRead   bool
	skipWrite  bool
	asyncWrite bool
}

type controlsKey struct{}

func controlsFrom(ctx context.Context) controls {
	if c, ok := ctx.Value(controlsKey{}).(controls); ok {
		return c
	}
	return controls{}
}

// WithReadBypass forces execution: the call skips the cache lookup but
// still stores its result. PreloadAll uses this to warm caches.
func WithReadBypass(ctx context.Context) context.Context {
	c := controlsFrom(ctx)
	c.skipRead = true
	return context.WithValue(ctx, controlsKey{}, c)
}

// WithWriteBypass keeps the call's result out of the cache.
func WithWriteBypass(ctx context.Context) context.Context {
	c := controlsFrom(ctx)
	c.skipWrite = true
	return context.WithValue(ctx, controlsKey{}, c)
}

// WithAsyncWrite schedules the store concurrently so the call returns
// without waiting for the write to land.
func WithAsyncWrite(ctx context.Context) context.Context {
	c := controlsFrom(ctx)
	c.asyncWrite = true
	return context.WithValue(ctx, controlsKey{}, c)
}
