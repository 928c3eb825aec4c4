// Package fingerprint computes stable fingerprints of Go values.
//
// A value is fed to a digest (any hash.Hash, or more generally any Sink) as a
// canonical byte encoding: fixed-width little-endian integers and IEEE-754
// floats, varint-encoded int/uint, length-prefixed strings and sequences,
// sorted sets and maps, and discriminant-tagged sum types. Equal values
// always produce the same bytes, on every platform and in every process, so
// the digest can be persisted, compared across machines, or used as a
// content address.
//
// Types take part either by implementing Fingerprinter or through the
// reflective encoder, which handles scalars, strings, arrays, slices,
// structs, maps, pointers and a handful of standard library types. Every
// struct field counts, unexported and embedded ones included; tag a field
// `fingerprint:"-"` to leave it out, as with a mutex or a cache. Sum types
// are Go interfaces described by an Enum.
//
// The encoding is a contract: changing how a type is fingerprinted changes
// every persisted digest of it. Wrap values in Versioned when the schema is
// expected to move.
package fingerprint
