package fingerprint

import (
	"cmp"
	"container/list"
	"slices"
)

// Seq appends the length of s followed by each element.
func Seq[T any](w *Writer, s []T, enc Encoder[T]) {
	w.Len(len(s))
	for _, v := range s {
		if w.err != nil {
			return
		}
		enc(w, v)
	}
}

// Strings appends a sequence of strings.
func Strings(w *Writer, s []string) { Seq(w, s, String) }

// List appends the elements of l in list order. Elements that are not a T
// are rejected.
func List[T any](w *Writer, l *list.List, enc Encoder[T]) {
	w.Len(l.Len())
	i := 0
	for e := l.Front(); e != nil && w.err == nil; e = e.Next() {
		v, ok := e.Value.(T)
		if !ok {
			w.push(pathSeg{index: i})
			w.fail(KindUnsupported, RuleUnsupportedType, "list element has unexpected type")
			w.pop()
			return
		}
		enc(w, v)
		i++
	}
}

// Set appends elems as a set: the length, then the elements in ascending
// order. Duplicates are kept; elems is not modified. Elements that compare
// equal but encode differently, such as -0 and +0, order by encoding.
func Set[T cmp.Ordered](w *Writer, elems []T, enc Encoder[T]) {
	SetFunc(w, elems, cmp.Compare[T], enc)
}

// SetFunc is Set with a caller-supplied total order, for element types that
// are not cmp.Ordered and for collections such as heaps whose iteration order
// is not their logical order.
func SetFunc[T any](w *Writer, elems []T, compare func(a, b T) int, enc Encoder[T]) {
	sorted := slices.Clone(elems)
	slices.SortFunc(sorted, compare)
	breakTies(w, sorted, compare, enc)
	Seq(w, sorted, enc)
}

// Map appends m as the length followed by (key, value) pairs in ascending
// key order.
func Map[K cmp.Ordered, V any](w *Writer, m map[K]V, encK Encoder[K], encV Encoder[V]) {
	MapFunc(w, m, cmp.Compare[K], encK, encV)
}

// MapFunc is Map with a caller-supplied key order. Entries whose keys compare
// equal order by the encoding of key then value.
func MapFunc[K comparable, V any](w *Writer, m map[K]V, compare func(a, b K) int, encK Encoder[K], encV Encoder[V]) {
	entries := make([]mapEntry[K, V], 0, len(m))
	for k, v := range m {
		entries = append(entries, mapEntry[K, V]{k, v})
	}
	byKey := func(a, b mapEntry[K, V]) int { return compare(a.k, b.k) }
	slices.SortFunc(entries, byKey)
	breakTies(w, entries, byKey, func(w *Writer, e mapEntry[K, V]) {
		encK(w, e.k)
		encV(w, e.v)
	})
	w.Len(len(entries))
	for _, e := range entries {
		if w.err != nil {
			return
		}
		encK(w, e.k)
		encV(w, e.v)
	}
}

type mapEntry[K comparable, V any] struct {
	k K
	v V
}

// Tuple appends each value in order with no length prefix, as an anonymous
// product.
func Tuple(w *Writer, vs ...any) {
	for i, v := range vs {
		if w.err != nil {
			return
		}
		w.push(pathSeg{index: i})
		w.Any(v)
		w.pop()
	}
}
