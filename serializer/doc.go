// Package serializer provides the payload codecs used by the cache engine.
//
// Every byte that reaches a storage backend passes through exactly one
// [Serializer], chosen per cache at construction time via [Format]:
//
//   - [FormatJSON]: structured data, human-readable, deterministic
//   - [FormatGob]: opaque Go-native object graphs
//   - [FormatMsgpack]: compact binary, suited to large records
//   - [FormatRaw]: identity on strings and byte slices
//
// Use [New] to obtain a codec:
//
//	codec, err := serializer.New(serializer.FormatMsgpack)
//
// All codecs are stateless and safe for concurrent use.
package serializer
