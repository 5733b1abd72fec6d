// Package keys derives deterministic cache keys and manages the version
// counters that make bulk invalidation O(1).
//
// A composed key has the shape
//
//	<prefix><function>[:<name>=<value>]*@g<global-version>[@u<user-id>:<user-version>]
//
// [Builder] produces the function-and-arguments fragment; the cache
// manager prepends its prefix and appends the version suffix read from
// a [VersionRegistry]. Separator bytes are escaped inside renderings,
// so a parameterized key can never collide with a non-parameterized
// one.
package keys
