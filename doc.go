// Package fncache caches function results. A wrapped function keeps
// its signature; repeated calls with equivalent arguments reuse the
// previously computed result until a TTL expires, an LRU bound evicts
// it, or a version counter invalidates it.
//
// # Quick Start
//
//	lookup, err := fncache.Wrap1(fetchUser, fncache.WithTTL(2*time.Minute))
//	if err != nil {
//	    return err
//	}
//	user, err := lookup(ctx, userID) // executes once, then hits
//
// For variadic call sites, build a [Func] directly:
//
//	f, err := fncache.New(func(ctx context.Context, args ...any) (string, error) {
//	    return expensiveRender(ctx, args[0].(string))
//	}, fncache.WithLRU(4096), fncache.WithFormat(serializer.FormatMsgpack))
//	v, err := f.Call(ctx, "front-page")
//
// # Keys and Invalidation
//
// Every cached entry's key embeds the current global version counter
// and, when a user-id parameter is configured, that user's counter:
//
//	<prefix><function>[:<name>=<value>]*@g<global-version>[@u<user-id>:<user-version>]
//
// [InvalidateAll] and [InvalidateUser] bump a counter instead of
// deleting entries, so invalidation cost does not grow with cache
// size. Stale entries age out physically via their TTL or eviction.
//
// # Per-Call Controls
//
// Call-site directives travel in the context, leaving the wrapped
// signature untouched:
//
//   - [WithReadBypass]: skip the lookup, force execution
//   - [WithWriteBypass]: keep the result out of the cache
//   - [WithAsyncWrite]: return without waiting for the store
//
// # Singleflight
//
// Concurrent callers that miss on the same key share a single
// execution of the underlying function. A caller whose context is
// cancelled while waiting detaches alone and gets the context error.
// The execution runs under the context of the caller that started it,
// so cancelling that caller's context also reaches the underlying
// function; any error it then returns is shared by the remaining
// waiters. Cancelling any other waiter leaves the execution untouched.
//
// # Backends and Codecs
//
// Entries live in process memory (TTL or LRU discipline) or in redis
// ([WithRedis]); payloads are encoded by the configured
// [github.com/leowzz/fn-cache/serializer] codec. No cache failure is
// allowed to prevent a caller from observing the underlying function's
// correct result: storage and codec errors degrade to misses or
// dropped writes, counted and logged.
//
// # Process-Wide Helpers
//
// [EnableGlobalCache] and [DisableGlobalCache] gate every cache at
// once. [PreloadAll] replays registered preload providers to warm
// caches at startup. [GetStatistics] and [GetMemoryUsage] expose
// per-cache counters and footprints; [StartMemoryMonitoring] samples
// the latter on an interval.
package fncache
