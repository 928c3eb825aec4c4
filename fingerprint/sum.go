package fingerprint

import "fmt"

// Repr is the declared integer representation of a sum type's discriminant.
//
// The zero value, ReprIsize, is the default: a zig-zag varint that does not
// depend on pointer width. The fixed-width representations append the raw
// little-endian bytes of the discriminant truncated to that width.
type Repr uint8

const (
	ReprIsize Repr = iota
	ReprUsize
	ReprI8
	ReprI16
	ReprI32
	ReprI64
	ReprU8
	ReprU16
	ReprU32
	ReprU64
)

var reprNames = [...]string{
	ReprIsize: "isize",
	ReprUsize: "usize",
	ReprI8:    "i8",
	ReprI16:   "i16",
	ReprI32:   "i32",
	ReprI64:   "i64",
	ReprU8:    "u8",
	ReprU16:   "u16",
	ReprU32:   "u32",
	ReprU64:   "u64",
}

func (r Repr) String() string {
	if int(r) < len(reprNames) {
		return reprNames[r]
	}
	return fmt.Sprintf("Repr(%d)", uint8(r))
}

// Valid reports whether r is one of the declared representations.
func (r Repr) Valid() bool { return int(r) < len(reprNames) }

// Tag appends discriminant d using representation r.
func (w *Writer) Tag(r Repr, d int64) {
	switch r {
	case ReprUsize:
		w.Usize(uint64(d))
	case ReprI8:
		w.Int8(int8(d))
	case ReprI16:
		w.Int16(int16(d))
	case ReprI32:
		w.Int32(int32(d))
	case ReprI64:
		w.Int64(d)
	case ReprU8:
		w.Uint8(uint8(d))
	case ReprU16:
		w.Uint16(uint16(d))
	case ReprU32:
		w.Uint32(uint32(d))
	case ReprU64:
		w.Uint64(uint64(d))
	default:
		w.Isize(d)
	}
}

// Decl is the discriminant declared on one variant: either an explicit value
// or nothing, in which case the value follows from the preceding variants.
type Decl struct {
	Value    int64
	Explicit bool
}

// Implicit declares a variant without an explicit discriminant.
func Implicit() Decl { return Decl{} }

// Explicit declares a variant with discriminant v.
func Explicit(v int64) Decl { return Decl{Value: v, Explicit: true} }

// Discriminants numbers variants in declaration order. An explicit value is
// used as is; an implicit one is the previous variant's value plus one, with
// zero as the baseline for a leading run of implicit variants.
//
// For (implicit, 1337, implicit, 5) the result is (0, 1337, 1338, 5).
func Discriminants(decls []Decl) []int64 {
	out := make([]int64, len(decls))
	var next int64
	for i, d := range decls {
		if d.Explicit {
			next = d.Value
		}
		out[i] = next
		next++
	}
	return out
}
