package fingerprint

import (
	"bytes"
	"hash"
	"io"
)

// Encode appends the canonical encoding of v to sink. The sink is not retained.
func Encode[T any](sink io.Writer, v T) error {
	w := NewWriter(sink)
	Value(w, v)
	return w.Err()
}

// Marshal returns the canonical encoding of v. Hashing these bytes with any
// digest gives the same result as Sum with that digest.
func Marshal[T any](v T) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Sum creates a digest with newHash, feeds it the canonical encoding of v
// and returns the finalized digest.
//
//	sum, err := fingerprint.Sum(sha256.New, person)
func Sum[T any](newHash func() hash.Hash, v T) ([]byte, error) {
	return SumWith(newHash(), v)
}

// SumWith is like Sum but uses h, which may already hold a prefix or key.
func SumWith[T any](h hash.Hash, v T) ([]byte, error) {
	if err := Encode(h, v); err != nil {
		return nil, err
	}
	return h.Sum(nil), nil
}

// MustSum is like Sum but panics if v has no canonical form.
func MustSum[T any](newHash func() hash.Hash, v T) []byte {
	sum, err := Sum(newHash, v)
	if err != nil {
		panic(err)
	}
	return sum
}
