// Package digest is the registry of hash engines that fingerprints are
// computed with.
//
// Every engine is a plain hash.Hash, which the fingerprint package accepts as
// a Sink. The registry adds what callers need around it: stable names,
// multihash codes for CIDs, keyed construction and prefix seeding.
package digest

import (
	"fmt"
	"hash"

	"xdao.co/fingerprint/fingerprint"
)

// NewWithPrefix returns a fresh digest already fed the canonical encoding of
// prefix. Fingerprints computed under different prefixes never share an input
// stream, which separates otherwise identical values used in unrelated roles.
func (a Algorithm) NewWithPrefix(prefix string) hash.Hash {
	h := a.New()
	if prefix != "" {
		fingerprint.NewWriter(h).String(prefix)
	}
	return h
}

// NewKeyedHash returns the engine in MAC mode.
func (a Algorithm) NewKeyedHash(key []byte) (hash.Hash, error) {
	if a.NewKeyed == nil {
		return nil, fmt.Errorf("digest: %s has no keyed mode", a.Name)
	}
	return a.NewKeyed(key)
}

// Sum fingerprints v with a.
func Sum[T any](a Algorithm, v T) ([]byte, error) {
	return fingerprint.Sum(a.New, v)
}

// SumWithPrefix fingerprints v with a, domain-separated by prefix.
func SumWithPrefix[T any](a Algorithm, prefix string, v T) ([]byte, error) {
	return fingerprint.SumWith(a.NewWithPrefix(prefix), v)
}

// SumKeyed fingerprints v with a keyed by key.
func SumKeyed[T any](a Algorithm, key []byte, v T) ([]byte, error) {
	h, err := a.NewKeyedHash(key)
	if err != nil {
		return nil, err
	}
	return fingerprint.SumWith(h, v)
}

// SumNamed looks up an algorithm by name and fingerprints v with it.
func SumNamed[T any](name string, v T) ([]byte, error) {
	a, err := Lookup(name)
	if err != nil {
		return nil, err
	}
	return Sum(a, v)
}
