package fingerprint_test

import (
	"cmp"
	"container/list"
	"math"
	"slices"
	"testing"

	"xdao.co/fingerprint/fingerprint"
	"xdao.co/fingerprint/testkit"
)

func TestSequences(t *testing.T) {
	testkit.AssertSameEncoding(t, []uint16{1, 2}, testkit.Tuple{uint(2), uint16(1), uint16(2)})
	testkit.AssertSameEncoding(t, [2]uint16{1, 2}, testkit.Tuple{uint16(1), uint16(2)})
	testkit.AssertEncoding(t, []string{}, []byte{0})
	testkit.AssertEncoding(t, [0]int{}, nil)

	got := testkit.EncodingWith(t, []string{"a", "bc"}, fingerprint.Strings)
	testkit.AssertEncoding(t, []string{"a", "bc"}, got)

	got = testkit.EncodingWith(t, []int32{-1}, func(w *fingerprint.Writer, v []int32) {
		fingerprint.Seq(w, v, fingerprint.Int32)
	})
	testkit.AssertEncoding(t, []int32{-1}, got)
}

func TestSetSortsWithoutDedup(t *testing.T) {
	in := []uint8{4, 2, 3, 1, 2}
	got := testkit.EncodingWith(t, in, func(w *fingerprint.Writer, v []uint8) {
		fingerprint.Set(w, v, fingerprint.Uint8)
	})
	if want := []byte{5, 1, 2, 2, 3, 4}; !slices.Equal(got, want) {
		t.Fatalf("Set: got % x want % x", got, want)
	}
	if !slices.Equal(in, []uint8{4, 2, 3, 1, 2}) {
		t.Fatalf("Set mutated its input: %v", in)
	}

	desc := testkit.EncodingWith(t, []int{1, 3, 2}, func(w *fingerprint.Writer, v []int) {
		fingerprint.SetFunc(w, v, func(a, b int) int { return cmp.Compare(b, a) }, fingerprint.Int)
	})
	testkit.AssertEncoding(t, []int{3, 2, 1}, desc)
}

func TestReflectiveSetIsSortedKeys(t *testing.T) {
	set := map[uint32]struct{}{4: {}, 2: {}, 3: {}, 1: {}}
	testkit.AssertSameEncoding(t, set, []uint32{1, 2, 3, 4})
}

func TestMapSortedByKey(t *testing.T) {
	m := map[uint8]uint8{4: 1, 2: 2, 3: 3, 1: 4}
	want := testkit.Tuple{uint(4),
		uint8(1), uint8(4),
		uint8(2), uint8(2),
		uint8(3), uint8(3),
		uint8(4), uint8(1),
	}
	testkit.AssertSameEncoding(t, m, want)

	got := testkit.EncodingWith(t, m, func(w *fingerprint.Writer, v map[uint8]uint8) {
		fingerprint.Map(w, v, fingerprint.Uint8, fingerprint.Uint8)
	})
	testkit.AssertEncoding(t, want, got)
}

func TestMapKeyOrders(t *testing.T) {
	type key struct {
		A string
		B int16
	}
	structs := map[key]bool{{"b", 0}: true, {"a", 2}: false, {"a", 1}: true}
	testkit.AssertSameEncoding(t, structs, testkit.Tuple{uint(3),
		"a", int16(1), true,
		"a", int16(2), false,
		"b", int16(0), true,
	})

	bools := map[bool]string{true: "t", false: "f"}
	testkit.AssertSameEncoding(t, bools, testkit.Tuple{uint(2), false, "f", true, "t"})

	nan := math.NaN()
	floats := map[float64]uint8{nan: 0, -1: 1, 2: 2}
	testkit.AssertSameEncoding(t, floats, testkit.Tuple{uint(3), nan, uint8(0), -1.0, uint8(1), 2.0, uint8(2)})

	mixed := map[any]uint8{"x": 1, 7: 2}
	testkit.AssertSameEncoding(t, mixed, testkit.Tuple{uint(2), 7, uint8(2), "x", uint8(1)})

	arrays := map[[2]uint8]uint8{{1, 2}: 0, {0, 9}: 1}
	testkit.AssertSameEncoding(t, arrays, testkit.Tuple{uint(2), uint8(0), uint8(9), uint8(1), uint8(1), uint8(2), uint8(0)})
}

type noted struct {
	ID   uint8
	Note string `fingerprint:"-"`
}

type tieKey struct {
	id   int
	Name string
}

func TestMapKeyTies(t *testing.T) {
	a, b := 1, 1
	nan := math.NaN()
	nans := map[float64]string{}
	nans[nan] = "b"
	nans[nan] = "a"

	cases := []struct {
		name string
		m    any
		want testkit.Tuple
	}{
		{
			name: "pointers to equal referents",
			m:    map[*int]string{&a: "y", &b: "x"},
			want: testkit.Tuple{uint(2), 1, "x", 1, "y"},
		},
		{
			name: "keys differing only in a skipped field",
			m:    map[noted]string{{ID: 1, Note: "a"}: "y", {ID: 1, Note: "b"}: "x"},
			want: testkit.Tuple{uint(2), uint8(1), "x", uint8(1), "y"},
		},
		{
			name: "keys differing only in an unexported field",
			m:    map[tieKey]string{{2, "k"}: "y", {1, "k"}: "x"},
			want: testkit.Tuple{uint(2), 1, "k", "x", 2, "k", "y"},
		},
		{
			name: "identical NaN keys",
			m:    nans,
			want: testkit.Tuple{uint(2), nan, "a", nan, "b"},
		},
	}
	for _, tc := range cases {
		want := testkit.Encoding(t, tc.want)
		for i := 0; i < 200; i++ {
			got := testkit.Encoding(t, tc.m)
			if string(got) != string(want) {
				t.Fatalf("%s: run %d got % x want % x", tc.name, i, got, want)
			}
		}
	}
}

func TestSetAndMapFuncTies(t *testing.T) {
	negz := math.Copysign(0, -1)
	set := func(in []float64) []byte {
		return testkit.EncodingWith(t, in, func(w *fingerprint.Writer, v []float64) {
			fingerprint.Set(w, v, fingerprint.Float64)
		})
	}
	if got, want := set([]float64{0, negz}), set([]float64{negz, 0}); string(got) != string(want) {
		t.Fatalf("Set depends on input order: % x vs % x", got, want)
	}

	byLen := func(a, b string) int { return cmp.Compare(len(a), len(b)) }
	m := map[string]uint8{"bb": 1, "aa": 2, "c": 3}
	want := testkit.Encoding(t, testkit.Tuple{uint(3), "c", uint8(3), "aa", uint8(2), "bb", uint8(1)})
	for i := 0; i < 100; i++ {
		got := testkit.EncodingWith(t, m, func(w *fingerprint.Writer, v map[string]uint8) {
			fingerprint.MapFunc(w, v, byLen, fingerprint.String, fingerprint.Uint8)
		})
		if string(got) != string(want) {
			t.Fatalf("MapFunc run %d: got % x want % x", i, got, want)
		}
	}
}

// sameNameA and sameNameB return values of distinct types that share both a
// package path and a name.
func sameNameA() any {
	type scoped struct{ V int }
	return scoped{V: 1}
}

func sameNameB() any {
	type scoped struct{ V int }
	return scoped{V: 2}
}

func TestMapKeyTypeNameCollision(t *testing.T) {
	err := fingerprint.Encode(testkit.NewRecorder(), map[any]uint8{sameNameA(): 1, sameNameB(): 2})
	if !fingerprint.IsKind(err, fingerprint.KindOrder) || fingerprint.RuleID(err) != fingerprint.RuleUnorderedKey {
		t.Fatalf("colliding key type names: %v", err)
	}

	// Predeclared types have an empty package path and sort first.
	mixed := map[any]uint8{sameNameA(): 1, "x": 2}
	testkit.AssertSameEncoding(t, mixed, testkit.Tuple{uint(2), "x", uint8(2), 1, uint8(1)})
}

func TestUnorderedMapKeyRejected(t *testing.T) {
	ch1, ch2 := make(chan int), make(chan int)
	err := fingerprint.Encode(testkit.NewRecorder(), map[chan int]int{ch1: 1})
	if !fingerprint.IsKind(err, fingerprint.KindOrder) {
		t.Fatalf("chan key: %v", err)
	}

	err = fingerprint.Encode(testkit.NewRecorder(), map[any]int{ch1: 1, ch2: 2})
	if !fingerprint.IsKind(err, fingerprint.KindOrder) || fingerprint.RuleID(err) != fingerprint.RuleUnorderedKey {
		t.Fatalf("chan keys behind interface: %v", err)
	}
}

func TestList(t *testing.T) {
	l := list.New()
	l.PushBack(uint8(1))
	l.PushBack(uint8(2))

	testkit.AssertSameEncoding(t, l, []uint8{1, 2})

	got := testkit.EncodingWith(t, l, func(w *fingerprint.Writer, v *list.List) {
		fingerprint.List(w, v, fingerprint.Uint8)
	})
	testkit.AssertEncoding(t, []uint8{1, 2}, got)

	l.PushBack("wrong")
	w := fingerprint.NewWriter(testkit.NewRecorder())
	fingerprint.List(w, l, fingerprint.Uint8)
	if !fingerprint.IsKind(w.Err(), fingerprint.KindUnsupported) {
		t.Fatalf("mistyped element: %v", w.Err())
	}
}
