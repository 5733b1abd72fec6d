// Package cache provides the Manager that binds a storage backend, a
// payload codec, and the version counters into one function-result
// cache.
//
// # Key Rewriting
//
// Callers address entries by logical key. The manager composes the
// physical key by prepending its prefix and appending the current
// version counters:
//
//	<prefix><key>@g<global-version>[@u<user-id>:<user-version>]
//
// [Manager.InvalidateAll] and [Manager.InvalidateUser] bump a counter
// instead of touching data, so bulk invalidation is O(1) regardless of
// entry count. [Manager.Clear] is the physical purge variant.
//
// # Construction
//
//	mgr, err := cache.New(cache.Config{
//	    Discipline: cache.DisciplineLRU,
//	    Capacity:   4096,
//	    Format:     serializer.FormatMsgpack,
//	})
//
// Configuration problems (non-positive LRU capacity, redis backend
// without connection parameters, unknown format) surface from [New];
// call-time operations never raise them.
//
// # Call Styles
//
// The context-taking methods are the cooperative family and work on
// every backend. The blocking family (GetSync, SetSync, DeleteSync)
// serves in-memory backends only; on a redis-backed manager it returns
// [ErrBlockingUnsupported] because the underlying client is
// network-bound.
//
// # Global Registry
//
// Every manager registers itself at construction. [Enabled], [Enable],
// and [Disable] gate all managers at once: while disabled, every get
// reads as a miss and every set is a no-op. [PreloadAll] runs every
// registered primer; [InvalidateAll], [AllStats], and [AllUsage] fan
// out across the live managers.
package cache
