package fingerprint

import (
	"encoding/binary"
	"io"
	"math"
	"reflect"
	"unsafe"
)

// Sink is an append-only byte consumer.
//
// Every hash.Hash is a Sink. Digests never fail a write; for other writers the
// first error is retained by the Writer and no further bytes are appended.
type Sink interface {
	Write(p []byte) (n int, err error)
}

// Fingerprinter is implemented by types that append their own canonical
// representation. Implementations must be deterministic and must only depend
// on the logical content of the receiver.
type Fingerprinter interface {
	Fingerprint(w *Writer)
}

// Encoder appends the canonical representation of a T.
type Encoder[T any] func(w *Writer, v T)

// Writer appends canonical encodings to a Sink.
//
// A Writer is owned by a single encoding pass; it is not safe for concurrent use.
type Writer struct {
	sink Sink
	err  error
	buf  [16]byte

	path     []pathSeg
	visiting map[visit]struct{}
}

// NewWriter returns a Writer appending to sink.
func NewWriter(sink Sink) *Writer {
	return &Writer{sink: sink}
}

// Err returns the first error recorded by the Writer, if any.
func (w *Writer) Err() error { return w.err }

func (w *Writer) write(p []byte) {
	if w.err != nil || len(p) == 0 {
		return
	}
	if _, err := w.sink.Write(p); err != nil {
		w.err = &Error{Kind: KindSink, RuleID: RuleSinkWrite, Path: w.pathString(), Message: "sink write failed", Cause: err}
	}
}

// writeString appends s without copying it. Sinks that implement
// io.StringWriter receive s directly; others get a read-only view of its
// bytes, which the io.Writer contract forbids them to modify or retain.
func (w *Writer) writeString(s string) {
	if w.err != nil || len(s) == 0 {
		return
	}
	var err error
	if sw, ok := w.sink.(io.StringWriter); ok {
		_, err = sw.WriteString(s)
	} else {
		_, err = w.sink.Write(unsafe.Slice(unsafe.StringData(s), len(s)))
	}
	if err != nil {
		w.err = &Error{Kind: KindSink, RuleID: RuleSinkWrite, Path: w.pathString(), Message: "sink write failed", Cause: err}
	}
}

func (w *Writer) fail(kind Kind, ruleID, msg string) {
	if w.err != nil {
		return
	}
	w.err = &Error{Kind: kind, RuleID: ruleID, Path: w.pathString(), Message: msg}
}

// Raw appends p verbatim, without a length prefix.
func (w *Writer) Raw(p []byte) { w.write(p) }

func (w *Writer) Bool(v bool) {
	if v {
		w.Uint8(1)
		return
	}
	w.Uint8(0)
}

func (w *Writer) Uint8(v uint8) {
	w.buf[0] = v
	w.write(w.buf[:1])
}

func (w *Writer) Uint16(v uint16) {
	binary.LittleEndian.PutUint16(w.buf[:2], v)
	w.write(w.buf[:2])
}

func (w *Writer) Uint32(v uint32) {
	binary.LittleEndian.PutUint32(w.buf[:4], v)
	w.write(w.buf[:4])
}

func (w *Writer) Uint64(v uint64) {
	binary.LittleEndian.PutUint64(w.buf[:8], v)
	w.write(w.buf[:8])
}

// Uint128 appends a 128-bit unsigned integer given as its low and high halves.
func (w *Writer) Uint128(lo, hi uint64) {
	binary.LittleEndian.PutUint64(w.buf[:8], lo)
	binary.LittleEndian.PutUint64(w.buf[8:16], hi)
	w.write(w.buf[:16])
}

func (w *Writer) Int8(v int8)   { w.Uint8(uint8(v)) }
func (w *Writer) Int16(v int16) { w.Uint16(uint16(v)) }
func (w *Writer) Int32(v int32) { w.Uint32(uint32(v)) }
func (w *Writer) Int64(v int64) { w.Uint64(uint64(v)) }

// Int128 appends a two's complement 128-bit integer given as its low and high halves.
func (w *Writer) Int128(lo uint64, hi int64) { w.Uint128(lo, uint64(hi)) }

// Float32 appends the raw IEEE-754 bit pattern. NaN payloads and the sign of
// zero are preserved, so -0 and +0 fingerprint differently.
func (w *Writer) Float32(v float32) { w.Uint32(math.Float32bits(v)) }

// Float64 appends the raw IEEE-754 bit pattern. See Float32.
func (w *Writer) Float64(v float64) { w.Uint64(math.Float64bits(v)) }

func (w *Writer) Complex64(v complex64) {
	w.Float32(real(v))
	w.Float32(imag(v))
}

func (w *Writer) Complex128(v complex128) {
	w.Float64(real(v))
	w.Float64(imag(v))
}

// Rune appends the code point as an unsigned 32-bit little-endian integer.
func (w *Writer) Rune(v rune) { w.Uint32(uint32(v)) }

// Usize appends an architecture-size unsigned integer as a base-128 varint:
// little-endian digit order, high bit set on every byte except the last.
func (w *Writer) Usize(v uint64) {
	n := binary.PutUvarint(w.buf[:], v)
	w.write(w.buf[:n])
}

// Isize appends an architecture-size signed integer: zig-zag mapped
// (0, -1, 1, -2, 2 become 0, 1, 2, 3, 4) and then written as a Usize.
func (w *Writer) Isize(v int64) {
	w.Usize(uint64((v << 1) ^ (v >> 63)))
}

// Len appends a collection length.
func (w *Writer) Len(n int) { w.Usize(uint64(n)) }

// Bytes appends a length-prefixed byte sequence.
func (w *Writer) Bytes(p []byte) {
	w.Len(len(p))
	w.write(p)
}

// String appends a length-prefixed UTF-8 (or arbitrary byte) string.
func (w *Writer) String(s string) {
	w.Len(len(s))
	w.writeString(s)
}

// Any appends v using the reflective rules. The static type of v is lost when
// it is boxed; use Value to keep interface types visible to registered enums.
func (w *Writer) Any(v any) {
	if w.err != nil {
		return
	}
	if v == nil {
		w.fail(KindNil, RuleNilInterface, "nil interface value has no canonical form")
		return
	}
	if fp, ok := v.(Fingerprinter); ok && !isNilPointer(v) {
		fp.Fingerprint(w)
		return
	}
	w.value(reflect.ValueOf(v))
}

// Value appends v using the reflective rules, keeping T as the static type.
func Value[T any](w *Writer, v T) {
	if w.err != nil {
		return
	}
	w.value(reflect.ValueOf(&v).Elem())
}

func isNilPointer(v any) bool {
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}

// Scalar encoders, usable wherever an Encoder is expected.
var (
	Bool       Encoder[bool]       = (*Writer).Bool
	Uint8      Encoder[uint8]      = (*Writer).Uint8
	Uint16     Encoder[uint16]     = (*Writer).Uint16
	Uint32     Encoder[uint32]     = (*Writer).Uint32
	Uint64     Encoder[uint64]     = (*Writer).Uint64
	Int8       Encoder[int8]       = (*Writer).Int8
	Int16      Encoder[int16]      = (*Writer).Int16
	Int32      Encoder[int32]      = (*Writer).Int32
	Int64      Encoder[int64]      = (*Writer).Int64
	Float32    Encoder[float32]    = (*Writer).Float32
	Float64    Encoder[float64]    = (*Writer).Float64
	Complex64  Encoder[complex64]  = (*Writer).Complex64
	Complex128 Encoder[complex128] = (*Writer).Complex128
	Rune       Encoder[rune]       = (*Writer).Rune
	String     Encoder[string]     = (*Writer).String
	Bytes      Encoder[[]byte]     = (*Writer).Bytes

	Int     Encoder[int]     = func(w *Writer, v int) { w.Isize(int64(v)) }
	Uint    Encoder[uint]    = func(w *Writer, v uint) { w.Usize(uint64(v)) }
	Uintptr Encoder[uintptr] = func(w *Writer, v uintptr) { w.Usize(uint64(v)) }
)
