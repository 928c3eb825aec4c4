package fingerprint

// Option is a value that may be absent. Present values encode as 0 followed
// by the value, absent ones as 1. Nil pointers have no canonical form, so
// optional references are spelled Option[*T] or Option[T].
type Option[T any] struct {
	value T
	ok    bool
}

func Some[T any](v T) Option[T] { return Option[T]{value: v, ok: true} }

func None[T any]() Option[T] { return Option[T]{} }

// OptionOf wraps a pointer: nil becomes None, anything else Some(*p).
func OptionOf[T any](p *T) Option[T] {
	if p == nil {
		return None[T]()
	}
	return Some(*p)
}

func (o Option[T]) Get() (T, bool) { return o.value, o.ok }

func (o Option[T]) IsSome() bool { return o.ok }

func (o Option[T]) Fingerprint(w *Writer) {
	if !o.ok {
		w.Uint8(1)
		return
	}
	w.Uint8(0)
	Value(w, o.value)
}

// Result holds either a success value or an error value. Ok encodes as 0 and
// the value, Err as 1 and the error value.
type Result[T, E any] struct {
	value T
	err   E
	isErr bool
}

func Ok[T, E any](v T) Result[T, E] { return Result[T, E]{value: v} }

func Err[T, E any](e E) Result[T, E] { return Result[T, E]{err: e, isErr: true} }

func (r Result[T, E]) Get() (T, E, bool) { return r.value, r.err, !r.isErr }

func (r Result[T, E]) IsOk() bool { return !r.isErr }

func (r Result[T, E]) Fingerprint(w *Writer) {
	if r.isErr {
		w.Uint8(1)
		Value(w, r.err)
		return
	}
	w.Uint8(0)
	Value(w, r.value)
}

// BoundKind distinguishes the three forms of a range endpoint.
type BoundKind uint8

const (
	Included BoundKind = iota
	Excluded
	Unbounded
)

// Bound is one endpoint of a range. It encodes as its kind (0, 1 or 2) and,
// unless unbounded, the endpoint value.
type Bound[T any] struct {
	Kind  BoundKind
	Value T
}

func IncludedBound[T any](v T) Bound[T] { return Bound[T]{Kind: Included, Value: v} }

func ExcludedBound[T any](v T) Bound[T] { return Bound[T]{Kind: Excluded, Value: v} }

func UnboundedBound[T any]() Bound[T] { return Bound[T]{Kind: Unbounded} }

func (b Bound[T]) Fingerprint(w *Writer) {
	w.Uint8(uint8(b.Kind))
	if b.Kind != Unbounded {
		Value(w, b.Value)
	}
}

// Range is the half-open interval [Start, End). It encodes as (Start, End).
type Range[T any] struct {
	Start, End T
}

func (r Range[T]) Fingerprint(w *Writer) {
	Value(w, r.Start)
	Value(w, r.End)
}

// RangeInclusive is the closed interval [Start, End]. Its encoding is
// identical to Range's; the two are distinguished by type, not by bytes.
type RangeInclusive[T any] struct {
	Start, End T
}

func (r RangeInclusive[T]) Fingerprint(w *Writer) {
	Value(w, r.Start)
	Value(w, r.End)
}

// Versioned prefixes a value with a schema version string, so that a change
// in how a type is fingerprinted can be made explicit in every digest.
type Versioned[T any] struct {
	Version string
	Value   T
}

func (v Versioned[T]) Fingerprint(w *Writer) {
	w.String(v.Version)
	Value(w, v.Value)
}
