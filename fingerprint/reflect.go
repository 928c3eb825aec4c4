package fingerprint

import (
	"fmt"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"unsafe"
)

var fingerprinterType = reflect.TypeFor[Fingerprinter]()

type visit struct {
	ptr uintptr
	typ reflect.Type
	n   int
}

type pathSeg struct {
	field string
	index int
	key   reflect.Value
}

func (w *Writer) pathString() string {
	if len(w.path) == 0 {
		return ""
	}
	var b strings.Builder
	for _, s := range w.path {
		switch {
		case s.field != "":
			b.WriteByte('.')
			b.WriteString(s.field)
		case s.key.IsValid():
			b.WriteByte('{')
			if s.key.CanInterface() {
				b.WriteString(strconv.Quote(fmt.Sprint(s.key.Interface())))
			} else {
				b.WriteString(s.key.Type().String())
			}
			b.WriteByte('}')
		default:
			b.WriteByte('[')
			b.WriteString(strconv.Itoa(s.index))
			b.WriteByte(']')
		}
	}
	return b.String()
}

func (w *Writer) push(s pathSeg) { w.path = append(w.path, s) }
func (w *Writer) pop()           { w.path = w.path[:len(w.path)-1] }

// enter marks a reference-like value as being encoded. It reports false, and
// records a cycle error, when the same reference is already on the path.
func (w *Writer) enter(v visit) bool {
	if w.visiting == nil {
		w.visiting = make(map[visit]struct{})
	}
	if _, ok := w.visiting[v]; ok {
		w.fail(KindCycle, RuleCycle, fmt.Sprintf("cyclic reference through %s", v.typ))
		return false
	}
	w.visiting[v] = struct{}{}
	return true
}

func (w *Writer) leave(v visit) { delete(w.visiting, v) }

// value is the reflective entry point. Registered enums win for interface
// types, then Fingerprinter implementations, then well-known standard library
// types, then the kind-based rules.
func (w *Writer) value(v reflect.Value) {
	if w.err != nil {
		return
	}
	if !v.IsValid() {
		w.fail(KindNil, RuleNilInterface, "nil interface value has no canonical form")
		return
	}
	t := v.Type()

	if t.Kind() == reflect.Interface {
		if v.IsNil() {
			w.fail(KindNil, RuleNilInterface, fmt.Sprintf("nil %s has no canonical form", t))
			return
		}
		if codec := lookupEnum(t); codec != nil {
			codec.encode(w, v)
			return
		}
		w.value(v.Elem())
		return
	}

	if t.Kind() == reflect.Pointer && v.IsNil() {
		w.fail(KindNil, RuleNilPointer, fmt.Sprintf("nil %s has no canonical form; use Option", t))
		return
	}
	if fp, ok := fingerprinterOf(v); ok {
		fp.Fingerprint(w)
		return
	}
	if w.wellKnown(v) {
		return
	}
	w.structural(v)
}

func fingerprinterOf(v reflect.Value) (Fingerprinter, bool) {
	t := v.Type()
	if t.Implements(fingerprinterType) && v.CanInterface() {
		return v.Interface().(Fingerprinter), true
	}
	if t.Kind() == reflect.Pointer || !reflect.PointerTo(t).Implements(fingerprinterType) {
		return nil, false
	}
	if v.CanAddr() && v.CanInterface() {
		return v.Addr().Interface().(Fingerprinter), true
	}
	if p, ok := addressable(v); ok {
		return p.Interface().(Fingerprinter), true
	}
	return nil, false
}

// addressable returns a pointer to a copy of v.
func addressable(v reflect.Value) (reflect.Value, bool) {
	if !v.CanInterface() {
		return reflect.Value{}, false
	}
	p := reflect.New(v.Type())
	p.Elem().Set(v)
	return p, true
}

// payload appends a sum type variant's fields, bypassing the variant's own
// Fingerprinter so that variants may delegate to their Enum. Pointer variants
// are tracked like any other reference, so a variant that reaches itself is a
// cycle.
func (w *Writer) payload(v reflect.Value) {
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			w.fail(KindNil, RuleNilPointer, fmt.Sprintf("nil %s variant", v.Type()))
			return
		}
		key := visit{ptr: v.Pointer(), typ: v.Type()}
		if !w.enter(key) {
			return
		}
		w.payload(v.Elem())
		w.leave(key)
		return
	}
	if w.wellKnown(v) {
		return
	}
	w.structural(v)
}

func (w *Writer) structural(v reflect.Value) {
	t := v.Type()
	switch t.Kind() {
	case reflect.Bool:
		w.Bool(v.Bool())
	case reflect.Int:
		w.Isize(v.Int())
	case reflect.Int8:
		w.Int8(int8(v.Int()))
	case reflect.Int16:
		w.Int16(int16(v.Int()))
	case reflect.Int32:
		w.Int32(int32(v.Int()))
	case reflect.Int64:
		w.Int64(v.Int())
	case reflect.Uint, reflect.Uintptr:
		w.Usize(v.Uint())
	case reflect.Uint8:
		w.Uint8(uint8(v.Uint()))
	case reflect.Uint16:
		w.Uint16(uint16(v.Uint()))
	case reflect.Uint32:
		w.Uint32(uint32(v.Uint()))
	case reflect.Uint64:
		w.Uint64(v.Uint())
	case reflect.Float32:
		w.Uint32(bitsOf[uint32](v))
	case reflect.Float64:
		w.Uint64(bitsOf[uint64](v))
	case reflect.Complex64:
		b := bitsOf[[2]uint32](v)
		w.Uint32(b[0])
		w.Uint32(b[1])
	case reflect.Complex128:
		b := bitsOf[[2]uint64](v)
		w.Uint64(b[0])
		w.Uint64(b[1])
	case reflect.String:
		w.String(v.String())
	case reflect.Array:
		for i := 0; i < v.Len() && w.err == nil; i++ {
			w.push(pathSeg{index: i})
			w.value(v.Index(i))
			w.pop()
		}
	case reflect.Slice:
		w.slice(v)
	case reflect.Struct:
		w.fields(v)
	case reflect.Map:
		w.mapping(v)
	case reflect.Pointer:
		key := visit{ptr: v.Pointer(), typ: t}
		if !w.enter(key) {
			return
		}
		w.value(v.Elem())
		w.leave(key)
	default:
		w.fail(KindUnsupported, RuleUnsupportedType, fmt.Sprintf("%s values have no canonical form", t))
	}
}

// bitsOf reinterprets the memory of a float or complex value. Going through
// Value.Float would widen float32 to float64 and could quiet NaN payloads.
func bitsOf[B any](v reflect.Value) B {
	if v.CanAddr() {
		return *(*B)(unsafe.Pointer(v.UnsafeAddr()))
	}
	if p, ok := addressable(v); ok {
		return *(*B)(p.UnsafePointer())
	}
	var zero B
	return zero
}

func (w *Writer) slice(v reflect.Value) {
	t := v.Type()
	n := v.Len()
	if t.Elem().Kind() == reflect.Uint8 && !implementsFingerprinter(t.Elem()) {
		w.Len(n)
		if n > 0 {
			w.write(v.Bytes())
		}
		return
	}
	w.Len(n)
	if n == 0 {
		return
	}
	key := visit{ptr: v.Pointer(), typ: t, n: n}
	if !w.enter(key) {
		return
	}
	for i := 0; i < n && w.err == nil; i++ {
		w.push(pathSeg{index: i})
		w.value(v.Index(i))
		w.pop()
	}
	w.leave(key)
}

func implementsFingerprinter(t reflect.Type) bool {
	return t.Implements(fingerprinterType) || reflect.PointerTo(t).Implements(fingerprinterType)
}

// fields appends every field in declaration order, unexported and embedded
// ones included.
func (w *Writer) fields(v reflect.Value) {
	t := v.Type()
	if !v.CanAddr() {
		p, ok := addressable(v)
		if !ok {
			w.fail(KindUnsupported, RuleUnsupportedType, fmt.Sprintf("unexported %s value", t))
			return
		}
		v = p.Elem()
	}
	for i := 0; i < t.NumField() && w.err == nil; i++ {
		sf := t.Field(i)
		if !encodedField(sf) {
			continue
		}
		w.push(pathSeg{field: sf.Name})
		w.value(fieldOf(v, i))
		w.pop()
	}
}

// fieldOf returns field i of the addressable struct v. Unexported fields are
// re-rooted at their address so that their own fields, methods and
// Fingerprinter stay reachable.
func fieldOf(v reflect.Value, i int) reflect.Value {
	f := v.Field(i)
	if f.CanInterface() || !f.CanAddr() {
		return f
	}
	return reflect.NewAt(f.Type(), unsafe.Pointer(f.UnsafeAddr())).Elem()
}

// encodedField reports whether the reflective encoder visits sf: every field
// not tagged `fingerprint:"-"`.
func encodedField(sf reflect.StructField) bool {
	return sf.Tag.Get("fingerprint") != "-"
}

func (w *Writer) mapping(v reflect.Value) {
	t := v.Type()
	n := v.Len()
	if !orderable(t.Key()) {
		w.fail(KindOrder, RuleUnorderedKey, fmt.Sprintf("map key type %s has no total order", t.Key()))
		return
	}
	w.Len(n)
	if n == 0 {
		return
	}
	key := visit{ptr: v.Pointer(), typ: t}
	if !w.enter(key) {
		return
	}
	defer w.leave(key)

	type entry struct{ k, v reflect.Value }
	entries := make([]entry, 0, n)
	iter := v.MapRange()
	for iter.Next() {
		entries = append(entries, entry{k: iter.Key(), v: iter.Value()})
	}
	var sortErr error
	byKey := func(a, b entry) int {
		c, err := compareValues(a.k, b.k)
		if err != nil && sortErr == nil {
			sortErr = err
		}
		return c
	}
	slices.SortFunc(entries, byKey)
	if sortErr != nil {
		w.fail(KindOrder, RuleUnorderedKey, sortErr.Error())
		return
	}
	// Distinct keys can tie: pointers to equal referents, or structs that
	// differ only in skipped fields.
	breakTies(w, entries, byKey, func(w *Writer, e entry) {
		w.value(e.k)
		w.value(e.v)
	})
	if sortErr != nil {
		w.fail(KindOrder, RuleUnorderedKey, sortErr.Error())
		return
	}
	for _, e := range entries {
		if w.err != nil {
			return
		}
		w.push(pathSeg{key: e.k})
		w.value(e.k)
		w.value(e.v)
		w.pop()
	}
}
