package fingerprint

import (
	"bytes"
	"cmp"
	"fmt"
	"math"
	"reflect"
	"slices"
	"strings"
)

// maxKeyDepth bounds compareValues on self-referencing keys.
const maxKeyDepth = 64

// orderable reports whether the reflective encoder can totally order values
// of type t, which it needs for map keys.
func orderable(t reflect.Type) bool {
	return orderableType(t, nil)
}

func orderableType(t reflect.Type, seen map[reflect.Type]bool) bool {
	if seen[t] {
		return true
	}
	switch t.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128,
		reflect.String:
		return true
	case reflect.Array:
		return orderableType(t.Elem(), seen)
	case reflect.Pointer:
		if seen == nil {
			seen = make(map[reflect.Type]bool)
		}
		seen[t] = true
		return orderableType(t.Elem(), seen)
	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			sf := t.Field(i)
			if encodedField(sf) && !orderableType(sf.Type, seen) {
				return false
			}
		}
		return true
	case reflect.Interface:
		// Checked per dynamic value.
		return true
	default:
		return false
	}
}

// compareValues is the order used to canonicalize map keys: the natural
// order for scalars, lexicographic by element or field for arrays and structs,
// referents for pointers. Floats order as cmp.Compare does, with equal values
// (such as NaNs) broken by bit pattern.
//
// Interface keys whose dynamic types differ order by typeKey. Distinct types
// that share a typeKey cannot be ordered and are reported as an error.
//
// Distinct keys may still compare equal, for example two pointers to equal
// referents; callers settle those with breakTies.
func compareValues(a, b reflect.Value) (int, error) {
	return compareDepth(a, b, 0)
}

func compareDepth(a, b reflect.Value, depth int) (int, error) {
	if depth > maxKeyDepth {
		return 0, fmt.Errorf("map key of type %s nests deeper than %d levels", a.Type(), maxKeyDepth)
	}
	depth++
	if a.Kind() == reflect.Interface {
		if a.IsNil() || b.IsNil() {
			switch {
			case a.IsNil() && b.IsNil():
				return 0, nil
			case a.IsNil():
				return -1, nil
			default:
				return 1, nil
			}
		}
		a, b = a.Elem(), b.Elem()
		if at, bt := a.Type(), b.Type(); at != bt {
			if c := compareTypes(at, bt); c != 0 {
				return c, nil
			}
			return 0, fmt.Errorf("map key types %s from different scopes share a name", at)
		}
		if !orderable(a.Type()) {
			return 0, fmt.Errorf("map key type %s has no total order", a.Type())
		}
	}

	switch a.Kind() {
	case reflect.Bool:
		return cmpBool(a.Bool(), b.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return cmp.Compare(a.Int(), b.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return cmp.Compare(a.Uint(), b.Uint()), nil
	case reflect.Float32, reflect.Float64:
		return cmpFloat(a.Float(), b.Float()), nil
	case reflect.Complex64, reflect.Complex128:
		ca, cb := a.Complex(), b.Complex()
		if c := cmpFloat(real(ca), real(cb)); c != 0 {
			return c, nil
		}
		return cmpFloat(imag(ca), imag(cb)), nil
	case reflect.String:
		return strings.Compare(a.String(), b.String()), nil
	case reflect.Array:
		for i := 0; i < a.Len(); i++ {
			if c, err := compareDepth(a.Index(i), b.Index(i), depth); c != 0 || err != nil {
				return c, err
			}
		}
		return 0, nil
	case reflect.Struct:
		t := a.Type()
		for i := 0; i < t.NumField(); i++ {
			if !encodedField(t.Field(i)) {
				continue
			}
			if c, err := compareDepth(a.Field(i), b.Field(i), depth); c != 0 || err != nil {
				return c, err
			}
		}
		return 0, nil
	case reflect.Pointer:
		switch {
		case a.IsNil() && b.IsNil():
			return 0, nil
		case a.IsNil():
			return -1, nil
		case b.IsNil():
			return 1, nil
		case a.Pointer() == b.Pointer():
			return 0, nil
		}
		return compareDepth(a.Elem(), b.Elem(), depth)
	case reflect.Interface:
		return compareDepth(a, b, depth)
	default:
		return 0, fmt.Errorf("map key type %s has no total order", a.Type())
	}
}

// typeKey names a defined type by its import path and name. Unnamed types
// have no key and fall back to their String form.
func typeKey(t reflect.Type) string {
	if t.Name() == "" {
		return ""
	}
	return t.PkgPath() + "." + t.Name()
}

func compareTypes(a, b reflect.Type) int {
	if c := strings.Compare(typeKey(a), typeKey(b)); c != 0 {
		return c
	}
	return strings.Compare(a.String(), b.String())
}

// breakTies reorders each run of elements that compare equal in the sorted s
// by their canonical encodings, making the result independent of the order s
// started in. Elements whose encodings are identical are interchangeable.
func breakTies[E any](w *Writer, s []E, compare func(a, b E) int, enc func(w *Writer, e E)) {
	for i := 0; i < len(s) && w.err == nil; {
		j := i + 1
		for j < len(s) && compare(s[i], s[j]) == 0 {
			j++
		}
		if j-i > 1 {
			sortEncoded(w, s[i:j], enc)
		}
		i = j
	}
}

func sortEncoded[E any](w *Writer, run []E, enc func(w *Writer, e E)) {
	type encoded struct {
		e E
		b []byte
	}
	items := make([]encoded, len(run))
	for i, e := range run {
		var buf bytes.Buffer
		sub := &Writer{sink: &buf, path: slices.Clip(w.path), visiting: w.visiting}
		enc(sub, e)
		if sub.err != nil {
			w.err = sub.err
			return
		}
		items[i] = encoded{e: e, b: buf.Bytes()}
	}
	slices.SortStableFunc(items, func(a, b encoded) int { return bytes.Compare(a.b, b.b) })
	for i := range items {
		run[i] = items[i].e
	}
}

func cmpBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	default:
		return 1
	}
}

func cmpFloat(a, b float64) int {
	if c := cmp.Compare(a, b); c != 0 {
		return c
	}
	return cmp.Compare(math.Float64bits(a), math.Float64bits(b))
}
