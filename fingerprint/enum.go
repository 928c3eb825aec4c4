package fingerprint

import (
	"fmt"
	"math"
	"reflect"
	"sync"
)

// Variant is one member of a sum type: a concrete Go type implementing the
// enum's interface, plus its declared discriminant.
type Variant struct {
	Type reflect.Type
	Decl Decl
}

// Case declares variant T with an implicit discriminant.
func Case[T any]() Variant {
	return Variant{Type: reflect.TypeFor[T]()}
}

// CaseAt declares variant T with explicit discriminant d.
func CaseAt[T any](d int64) Variant {
	return Variant{Type: reflect.TypeFor[T](), Decl: Explicit(d)}
}

// Enum describes a sum type modelled as an interface I whose dynamic values are
// the declared variants. Encoding appends the active variant's discriminant in
// the enum's Repr, followed by the variant's fields as a product.
//
// Variant types may implement Fingerprinter by delegating to Encode; the
// payload is always encoded field by field, so this does not recurse.
//
//	var shapes = fingerprint.MustEnum[Shape](fingerprint.ReprIsize,
//		fingerprint.Case[Background](),
//		fingerprint.Case[Circle](),
//		fingerprint.CaseAt[Polygon](10),
//	)
type Enum[I any] struct {
	iface    reflect.Type
	repr     Repr
	variants []Variant
	tags     map[reflect.Type]int64
}

// NewEnum builds the descriptor for I. Discriminants are computed once here.
func NewEnum[I any](repr Repr, variants ...Variant) (*Enum[I], error) {
	iface := reflect.TypeFor[I]()
	if iface.Kind() != reflect.Interface {
		return nil, enumError("enum type %s is not an interface", iface)
	}
	if !repr.Valid() {
		return nil, enumError("enum %s: invalid repr %s", iface, repr)
	}

	decls := make([]Decl, len(variants))
	for i, v := range variants {
		decls[i] = v.Decl
	}
	values := Discriminants(decls)

	lo, hi := repr.bounds()
	tags := make(map[reflect.Type]int64, len(variants))
	owners := make(map[int64]reflect.Type, len(variants))
	for i, v := range variants {
		switch {
		case v.Type == nil:
			return nil, enumError("enum %s: variant %d has no type", iface, i)
		case v.Type.Kind() == reflect.Interface:
			return nil, enumError("enum %s: variant %s is an interface type", iface, v.Type)
		case !v.Type.Implements(iface):
			return nil, enumError("enum %s: variant %s does not implement it", iface, v.Type)
		}
		if _, dup := tags[v.Type]; dup {
			return nil, enumError("enum %s: variant %s declared twice", iface, v.Type)
		}
		d := values[i]
		if d < lo || d > hi {
			return nil, enumError("enum %s: discriminant %d of %s overflows %s", iface, d, v.Type, repr)
		}
		if prev, dup := owners[d]; dup {
			return nil, enumError("enum %s: discriminant %d shared by %s and %s", iface, d, prev, v.Type)
		}
		tags[v.Type] = d
		owners[d] = v.Type
	}

	return &Enum[I]{
		iface:    iface,
		repr:     repr,
		variants: append([]Variant(nil), variants...),
		tags:     tags,
	}, nil
}

// MustEnum is like NewEnum but panics on error.
func MustEnum[I any](repr Repr, variants ...Variant) *Enum[I] {
	e, err := NewEnum[I](repr, variants...)
	if err != nil {
		panic(err)
	}
	return e
}

func (e *Enum[I]) Repr() Repr { return e.repr }

// Variants returns the declared variants in declaration order.
func (e *Enum[I]) Variants() []Variant { return append([]Variant(nil), e.variants...) }

// Discriminant returns the discriminant of v's dynamic type.
func (e *Enum[I]) Discriminant(v I) (int64, bool) {
	rv := reflect.ValueOf(&v).Elem()
	if rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return 0, false
		}
		rv = rv.Elem()
	}
	d, ok := e.tags[rv.Type()]
	return d, ok
}

// Encode appends v's discriminant and payload.
func (e *Enum[I]) Encode(w *Writer, v I) {
	if w.err != nil {
		return
	}
	e.encode(w, reflect.ValueOf(&v).Elem())
}

func (e *Enum[I]) encode(w *Writer, v reflect.Value) {
	if v.Kind() == reflect.Interface {
		if v.IsNil() {
			w.fail(KindNil, RuleNilInterface, fmt.Sprintf("nil %s has no active variant", e.iface))
			return
		}
		v = v.Elem()
	}
	d, ok := e.tags[v.Type()]
	if !ok {
		w.fail(KindEnum, RuleUnknownVariant, fmt.Sprintf("%s is not a declared variant of %s", v.Type(), e.iface))
		return
	}
	w.Tag(e.repr, d)
	w.payload(v)
}

func (r Repr) bounds() (lo, hi int64) {
	switch r {
	case ReprI8:
		return math.MinInt8, math.MaxInt8
	case ReprI16:
		return math.MinInt16, math.MaxInt16
	case ReprI32:
		return math.MinInt32, math.MaxInt32
	case ReprU8:
		return 0, math.MaxUint8
	case ReprU16:
		return 0, math.MaxUint16
	case ReprU32:
		return 0, math.MaxUint32
	case ReprUsize, ReprU64:
		return 0, math.MaxInt64
	default:
		return math.MinInt64, math.MaxInt64
	}
}

func enumError(format string, args ...any) error {
	return &Error{Kind: KindEnum, RuleID: RuleInvalidEnum, Message: fmt.Sprintf(format, args...)}
}

type enumCodec interface {
	encode(w *Writer, v reflect.Value)
}

var (
	enumMu sync.RWMutex
	enums  = map[reflect.Type]enumCodec{}
)

// RegisterEnum makes e the encoding rule for every value whose static type is
// I, wherever the reflective encoder meets one: struct fields, slice and array
// elements, map values and Value[I] calls.
func RegisterEnum[I any](e *Enum[I]) error {
	if e == nil {
		return enumError("nil enum")
	}
	enumMu.Lock()
	defer enumMu.Unlock()
	if _, exists := enums[e.iface]; exists {
		return enumError("enum %s already registered", e.iface)
	}
	enums[e.iface] = e
	return nil
}

// MustRegisterEnum is like RegisterEnum but panics on error.
func MustRegisterEnum[I any](e *Enum[I]) {
	if err := RegisterEnum(e); err != nil {
		panic(err)
	}
}

func lookupEnum(t reflect.Type) enumCodec {
	enumMu.RLock()
	defer enumMu.RUnlock()
	return enums[t]
}
