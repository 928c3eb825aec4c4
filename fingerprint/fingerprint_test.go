package fingerprint_test

import (
	"bytes"
	"crypto/sha256"
	"hash"
	"testing"

	"golang.org/x/crypto/blake2s"

	"xdao.co/fingerprint/fingerprint"
	"xdao.co/fingerprint/testkit"
)

func newBlake2s() hash.Hash {
	h, err := blake2s.New256(nil)
	if err != nil {
		panic(err)
	}
	return h
}

func TestGoldenBlake2s(t *testing.T) {
	type message struct {
		Text string
		N    int32
	}
	want := []byte{
		7, 111, 119, 103, 16, 73, 77, 122, 160, 198, 220, 50, 209, 55, 161, 211,
		88, 74, 219, 113, 49, 245, 73, 75, 91, 147, 101, 55, 98, 143, 206, 36,
	}
	got, err := fingerprint.Sum(newBlake2s, message{Text: "Hello world", N: 1337})
	if err != nil {
		t.Fatalf("Sum failed: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("blake2s fingerprint mismatch:\n got %v\nwant %v", got, want)
	}

	if again := fingerprint.MustSum(newBlake2s, testkit.Tuple{"Hello world", int32(1337)}); !bytes.Equal(again, want) {
		t.Fatalf("tuple form differs from struct form")
	}
}

func TestSumMatchesMarshal(t *testing.T) {
	v := map[string][]uint16{"b": {2}, "a": {1, 1}}
	raw, err := fingerprint.Marshal(v)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	want := sha256.Sum256(raw)

	got, err := fingerprint.Sum(sha256.New, v)
	if err != nil {
		t.Fatalf("Sum failed: %v", err)
	}
	if !bytes.Equal(got, want[:]) {
		t.Fatalf("Sum differs from hashing Marshal output")
	}
}

func TestDeterministicAcrossCalls(t *testing.T) {
	v := map[int]string{}
	for i := 0; i < 64; i++ {
		v[i*7%64] = string(rune('a' + i%26))
	}
	first := fingerprint.MustSum(sha256.New, v)
	for i := 0; i < 20; i++ {
		if got := fingerprint.MustSum(sha256.New, v); !bytes.Equal(got, first) {
			t.Fatalf("fingerprint changed on call %d", i)
		}
	}
}

func TestSumWithPrefixedHash(t *testing.T) {
	h := sha256.New()
	h.Write([]byte("domain"))
	got, err := fingerprint.SumWith(h, uint8(1))
	if err != nil {
		t.Fatalf("SumWith failed: %v", err)
	}
	want := sha256.Sum256([]byte("domain\x01"))
	if !bytes.Equal(got, want[:]) {
		t.Fatalf("SumWith ignored the prefix")
	}
}

func TestMustSumPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("MustSum did not panic")
		}
	}()
	var p *int
	fingerprint.MustSum(sha256.New, p)
}
