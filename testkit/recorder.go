// Package testkit provides a recording digest and assertions for tests of
// canonical encodings.
package testkit

import (
	"bytes"
	"errors"
	"fmt"
	"hash"
	"testing"

	"xdao.co/fingerprint/fingerprint"
)

// Recorder is a hash.Hash that does not hash: it keeps every byte written to
// it, so tests can inspect the exact canonical encoding a digest would see.
type Recorder struct {
	buf bytes.Buffer
}

var _ hash.Hash = (*Recorder)(nil)

// NewRecorder returns an empty Recorder. Its signature matches the digest
// constructors accepted by fingerprint.Sum.
func NewRecorder() hash.Hash { return &Recorder{} }

func (r *Recorder) Write(p []byte) (int, error) { return r.buf.Write(p) }

// Sum appends the recorded bytes to b.
func (r *Recorder) Sum(b []byte) []byte { return append(b, r.buf.Bytes()...) }

func (r *Recorder) Reset()         { r.buf.Reset() }
func (r *Recorder) Size() int      { return r.buf.Len() }
func (r *Recorder) BlockSize() int { return 1 }

// Bytes returns the recorded bytes.
func (r *Recorder) Bytes() []byte { return r.buf.Bytes() }

// ErrSinkFull is returned by a FailingSink once its budget is spent.
var ErrSinkFull = errors.New("testkit: sink full")

// FailingSink accepts Budget bytes and then fails every write.
type FailingSink struct {
	Budget  int
	written int
}

func (s *FailingSink) Write(p []byte) (int, error) {
	if s.written+len(p) > s.Budget {
		n := s.Budget - s.written
		s.written = s.Budget
		return n, ErrSinkFull
	}
	s.written += len(p)
	return len(p), nil
}

// Encoding returns the canonical encoding of v, failing the test on error.
func Encoding[T any](t testing.TB, v T) []byte {
	t.Helper()
	r := &Recorder{}
	if err := fingerprint.Encode(r, v); err != nil {
		t.Fatalf("Encode(%T) failed: %v", v, err)
	}
	return r.Bytes()
}

// EncodingWith returns the bytes written by enc for v.
func EncodingWith[T any](t testing.TB, v T, enc fingerprint.Encoder[T]) []byte {
	t.Helper()
	r := &Recorder{}
	w := fingerprint.NewWriter(r)
	enc(w, v)
	if err := w.Err(); err != nil {
		t.Fatalf("encode %T failed: %v", v, err)
	}
	return r.Bytes()
}

// AssertEncoding fails the test unless v encodes to exactly want.
func AssertEncoding[T any](t testing.TB, v T, want []byte) {
	t.Helper()
	if got := Encoding(t, v); !bytes.Equal(got, want) {
		t.Fatalf("encoding of %T mismatch:\n got %s\nwant %s", v, hexBytes(got), hexBytes(want))
	}
}

// AssertSameEncoding fails the test unless a and b encode identically. It is
// the usual way to state an encoding rule: a value and the tuple of scalars it
// is defined to be equivalent to.
func AssertSameEncoding[A, B any](t testing.TB, a A, b B) {
	t.Helper()
	ga, gb := Encoding(t, a), Encoding(t, b)
	if !bytes.Equal(ga, gb) {
		t.Fatalf("%T and %T encode differently:\n%s\n%s", a, b, hexBytes(ga), hexBytes(gb))
	}
}

func hexBytes(b []byte) string {
	if len(b) == 0 {
		return "[]"
	}
	return fmt.Sprintf("% x", b)
}

// Tuple is an ad-hoc product of values, encoded in order with no prefix.
//
//	testkit.AssertSameEncoding(t, fingerprint.Some(uint8(42)), testkit.Tuple{uint8(0), uint8(42)})
type Tuple []any

func (tp Tuple) Fingerprint(w *fingerprint.Writer) { fingerprint.Tuple(w, tp...) }
