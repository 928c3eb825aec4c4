package fingerprint

import (
	"math"
	"math/rand"
	randv2 "math/rand/v2"
	"reflect"
	"testing"
)

func TestCompareValues(t *testing.T) {
	nan := math.NaN()
	cases := []struct {
		a, b any
		want int
	}{
		{false, true, -1},
		{int8(-1), int8(1), -1},
		{uint(3), uint(3), 0},
		{nan, -math.MaxFloat64, -1},
		{math.Copysign(0, -1), 0.0, 1},
		{"b", "a", 1},
		{complex(1, 2), complex(1, 3), -1},
		{[2]int{1, 2}, [2]int{1, 1}, 1},
		{struct{ a, b int }{1, 2}, struct{ a, b int }{1, 3}, -1},
	}
	for _, tc := range cases {
		got, err := compareValues(reflect.ValueOf(tc.a), reflect.ValueOf(tc.b))
		if err != nil {
			t.Fatalf("compare(%v, %v): %v", tc.a, tc.b, err)
		}
		if got != tc.want {
			t.Fatalf("compare(%v, %v) = %d want %d", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestOrderable(t *testing.T) {
	type key struct {
		A string
		f func() `fingerprint:"-"`
	}
	type bad struct{ F func() }
	type hidden struct {
		A string
		f func()
	}
	type node struct {
		V    int
		Next *node
	}
	cases := []struct {
		t    reflect.Type
		want bool
	}{
		{reflect.TypeFor[string](), true},
		{reflect.TypeFor[[3]float32](), true},
		{reflect.TypeFor[key](), true},
		{reflect.TypeFor[bad](), false},
		{reflect.TypeFor[hidden](), false},
		{reflect.TypeFor[node](), true},
		{reflect.TypeFor[chan int](), false},
		{reflect.TypeFor[any](), true},
	}
	for _, tc := range cases {
		if got := orderable(tc.t); got != tc.want {
			t.Fatalf("orderable(%s) = %v", tc.t, got)
		}
	}
}

func TestComparePointers(t *testing.T) {
	x, y, z := 1, 1, 2
	cases := []struct {
		a, b *int
		want int
	}{
		{&x, &x, 0},
		{&x, &y, 0},
		{&x, &z, -1},
		{nil, &x, -1},
	}
	for _, tc := range cases {
		got, err := compareValues(reflect.ValueOf(tc.a), reflect.ValueOf(tc.b))
		if err != nil || got != tc.want {
			t.Fatalf("compare(%v, %v) = %d, %v want %d", tc.a, tc.b, got, err, tc.want)
		}
	}

	type ring struct {
		V    int
		Next *ring
	}
	r1, r2 := &ring{V: 1}, &ring{V: 1}
	r1.Next, r2.Next = r1, r2
	if _, err := compareValues(reflect.ValueOf(r1), reflect.ValueOf(r2)); err == nil {
		t.Fatalf("expected an error comparing two rings")
	}
}

func TestCompareTypes(t *testing.T) {
	v1, v2 := reflect.TypeFor[rand.Rand](), reflect.TypeFor[randv2.Rand]()
	if v1.String() != v2.String() {
		t.Fatalf("expected equal String forms, got %s and %s", v1, v2)
	}
	cases := []struct {
		a, b reflect.Type
		want int
	}{
		{v1, v2, -1},
		{v2, v1, 1},
		{reflect.TypeFor[int](), reflect.TypeFor[string](), -1},
		{reflect.TypeFor[[]int](), reflect.TypeFor[int](), -1},
		{reflect.TypeFor[[]int](), reflect.TypeFor[[]string](), -1},
	}
	for _, tc := range cases {
		if got := compareTypes(tc.a, tc.b); got != tc.want {
			t.Fatalf("compareTypes(%s, %s) = %d want %d", tc.a, tc.b, got, tc.want)
		}
	}
}
