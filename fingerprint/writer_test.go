package fingerprint_test

import (
	"errors"
	"math"
	"strings"
	"testing"

	"xdao.co/fingerprint/fingerprint"
	"xdao.co/fingerprint/testkit"
)

func TestUsizeVarint(t *testing.T) {
	cases := []struct {
		in   uint64
		want []byte
	}{
		{0, []byte{0}},
		{1, []byte{1}},
		{127, []byte{0x7f}},
		{128, []byte{0x80, 0x01}},
		{0b11111110000000, []byte{0x80, 0x7f}},
		{math.MaxUint64, []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x01}},
	}
	for _, tc := range cases {
		got := testkit.EncodingWith(t, tc.in, (*fingerprint.Writer).Usize)
		if string(got) != string(tc.want) {
			t.Fatalf("Usize(%d): got % x want % x", tc.in, got, tc.want)
		}
	}
	testkit.AssertEncoding(t, uint(0b11111110000000), []byte{0x80, 0x7f})
	testkit.AssertEncoding(t, uintptr(5), []byte{5})
}

func TestIsizeZigZag(t *testing.T) {
	cases := []struct {
		in   int
		want []byte
	}{
		{0, []byte{0}},
		{-1, []byte{1}},
		{1, []byte{2}},
		{-2, []byte{3}},
		{2, []byte{4}},
		{-127, []byte{0b11111101, 0b00000001}},
	}
	for _, tc := range cases {
		testkit.AssertEncoding(t, tc.in, tc.want)
	}
	testkit.AssertEncoding(t, math.MinInt64, []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x01})
}

func TestFixedWidthIntegers(t *testing.T) {
	testkit.AssertEncoding(t, uint8(0xab), []byte{0xab})
	testkit.AssertEncoding(t, int8(-1), []byte{0xff})
	testkit.AssertEncoding(t, uint16(0xbeef), []byte{0xef, 0xbe})
	testkit.AssertEncoding(t, int16(-2), []byte{0xfe, 0xff})
	testkit.AssertEncoding(t, uint32(0x01020304), []byte{4, 3, 2, 1})
	testkit.AssertEncoding(t, int64(1), []byte{1, 0, 0, 0, 0, 0, 0, 0})
	testkit.AssertEncoding(t, true, []byte{1})
	testkit.AssertEncoding(t, false, []byte{0})

	minus1 := testkit.EncodingWith(t, -1, func(w *fingerprint.Writer, v int) { w.Int128(math.MaxUint64, int64(v)) })
	for i, b := range minus1 {
		if b != 0xff {
			t.Fatalf("Int128(-1) byte %d = %#x", i, b)
		}
	}
	if len(minus1) != 16 {
		t.Fatalf("Int128 width = %d", len(minus1))
	}
}

func TestStringAndBytes(t *testing.T) {
	testkit.AssertEncoding(t, "příklad", []byte{9, 0x70, 0xc5, 0x99, 0xc3, 0xad, 0x6b, 0x6c, 0x61, 0x64})
	testkit.AssertEncoding(t, "", []byte{0})
	testkit.AssertEncoding(t, []byte{1, 2, 3}, []byte{3, 1, 2, 3})
	testkit.AssertSameEncoding(t, "abc", []byte("abc"))

	raw := testkit.EncodingWith(t, []byte{7, 8}, (*fingerprint.Writer).Raw)
	if string(raw) != "\x07\x08" {
		t.Fatalf("Raw: got % x", raw)
	}
}

type stringSink struct {
	strings.Builder
	strs int
}

func (s *stringSink) WriteString(v string) (int, error) {
	s.strs++
	return s.Builder.WriteString(v)
}

type countingSink struct{ n int }

func (s *countingSink) Write(p []byte) (int, error) {
	s.n += len(p)
	return len(p), nil
}

func TestStringWrites(t *testing.T) {
	sink := &stringSink{}
	w := fingerprint.NewWriter(sink)
	w.String("abc")
	if sink.strs != 1 || sink.String() != "\x03abc" {
		t.Fatalf("WriteString calls %d, output %q", sink.strs, sink.String())
	}

	counter := &countingSink{}
	w = fingerprint.NewWriter(counter)
	allocs := testing.AllocsPerRun(100, func() { w.String("a string that is not copied") })
	if allocs != 0 {
		t.Fatalf("String allocated %v times per call", allocs)
	}
	if counter.n != 101*28 {
		t.Fatalf("sink saw %d bytes", counter.n)
	}
}

func TestFloats(t *testing.T) {
	testkit.AssertEncoding(t, float32(12.34), []byte{0xa4, 0x70, 0x45, 0x41})
	testkit.AssertEncoding(t, 12.34, []byte{0xae, 0x47, 0xe1, 0x7a, 0x14, 0xae, 0x28, 0x40})
	testkit.AssertEncoding(t, math.Float32frombits(0x7fc00000), []byte{0, 0, 0xc0, 0x7f})
	testkit.AssertEncoding(t, math.Float64frombits(0x7ff8000000000000), []byte{0, 0, 0, 0, 0, 0, 0xf8, 0x7f})
	testkit.AssertSameEncoding(t, complex64(complex(1, 2)), testkit.Tuple{float32(1), float32(2)})

	pos := testkit.Encoding(t, 0.0)
	neg := testkit.Encoding(t, math.Copysign(0, -1))
	if string(pos) == string(neg) {
		t.Fatalf("+0 and -0 encode identically")
	}
}

func TestRune(t *testing.T) {
	testkit.AssertEncoding(t, 'a', []byte{0x61, 0, 0, 0})
	testkit.AssertEncoding(t, '🦀', []byte{0x80, 0xf9, 0x01, 0})
}

func TestTupleConcatenates(t *testing.T) {
	testkit.AssertEncoding(t, testkit.Tuple{uint16(0xbeef), uint8(0xff)}, []byte{0xef, 0xbe, 0xff})
	testkit.AssertEncoding(t, testkit.Tuple{}, nil)
}

func TestSinkErrorIsSticky(t *testing.T) {
	sink := &testkit.FailingSink{Budget: 2}
	err := fingerprint.Encode(sink, testkit.Tuple{uint16(1), uint32(2), "more"})
	if err == nil {
		t.Fatalf("expected sink error")
	}
	if !fingerprint.IsKind(err, fingerprint.KindSink) {
		t.Fatalf("expected KindSink, got %v", err)
	}
	if got := fingerprint.RuleID(err); got != fingerprint.RuleSinkWrite {
		t.Fatalf("RuleID: got %q", got)
	}
	if !errors.Is(err, testkit.ErrSinkFull) {
		t.Fatalf("error does not wrap sink failure: %v", err)
	}

	w := fingerprint.NewWriter(&testkit.FailingSink{})
	w.Uint8(1)
	first := w.Err()
	w.String("ignored")
	if w.Err() != first {
		t.Fatalf("first error was replaced")
	}
}
