// Package storage provides the cache engine's persistence backends.
//
// All backends implement the byte-oriented [Store] contract:
//
//   - [Memory]: map-backed TTL store; expired entries are reclaimed
//     lazily on read and swept opportunistically on writes
//   - [LRU]: capacity-bounded access-ordered store with optional
//     per-entry TTL
//   - [Redis]: adapter over a redis server with a fixed per-command
//     deadline and prefix-scoped Clear
//
// Two extension interfaces refine the contract. [Counter] exposes
// atomic increments for the version counters, and [Sizer] lets the
// memory monitor sample entry counts and byte footprints of the
// in-memory stores.
//
// # Error Handling
//
// Absence is [ErrNotFound]. Network failures from the redis adapter
// are [ErrTransport]; the manager above converts those to misses on
// reads and silent drops on writes. In-memory stores never fail.
//
// # Thread Safety
//
// Every store is safe for concurrent use. The in-memory stores guard
// their state with a single mutex; the redis adapter inherits the
// go-redis client's pooling.
package storage
