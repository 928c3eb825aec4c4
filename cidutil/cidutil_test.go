package cidutil

import (
	"errors"
	"testing"

	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"

	"xdao.co/fingerprint/digest"
	"xdao.co/fingerprint/fingerprint"
)

type doc struct {
	Title string
	Rev   uint32
}

func mustLookup(t *testing.T, name string) digest.Algorithm {
	t.Helper()
	a, err := digest.Lookup(name)
	if err != nil {
		t.Fatalf("Lookup(%s) failed: %v", name, err)
	}
	return a
}

func TestForValueMatchesForBytes(t *testing.T) {
	v := doc{Title: "t", Rev: 3}
	raw, err := fingerprint.Marshal(v)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	for _, name := range []string{"sha2-256", "blake2s-256", "blake3", "sha3-512"} {
		a := mustLookup(t, name)
		fromValue, err := ForValue(a, v)
		if err != nil {
			t.Fatalf("%s: ForValue failed: %v", name, err)
		}
		fromBytes, err := ForBytes(a, raw)
		if err != nil {
			t.Fatalf("%s: ForBytes failed: %v", name, err)
		}
		if !fromValue.Equals(fromBytes) {
			t.Fatalf("%s: %s != %s", name, fromValue, fromBytes)
		}
		if fromValue.Prefix().Codec != cid.Raw {
			t.Fatalf("%s: codec %#x", name, fromValue.Prefix().Codec)
		}
		if err := Verify(fromValue, raw); err != nil {
			t.Fatalf("%s: Verify failed: %v", name, err)
		}
	}
}

func TestSHA256MatchesMultihash(t *testing.T) {
	data := []byte("hello")
	mh, err := multihash.Sum(data, multihash.SHA2_256, -1)
	if err != nil {
		t.Fatalf("multihash.Sum failed: %v", err)
	}
	got, err := ForBytes(mustLookup(t, "sha2-256"), data)
	if err != nil {
		t.Fatalf("ForBytes failed: %v", err)
	}
	if want := cid.NewCidV1(cid.Raw, mh); !got.Equals(want) {
		t.Fatalf("got %s want %s", got, want)
	}
}

func TestVerifyMismatch(t *testing.T) {
	id, err := ForBytes(mustLookup(t, "blake2s-256"), []byte("a"))
	if err != nil {
		t.Fatalf("ForBytes failed: %v", err)
	}
	if err := Verify(id, []byte("b")); !errors.Is(err, ErrMismatch) {
		t.Fatalf("expected ErrMismatch, got %v", err)
	}
}

func TestAlgorithmRoundTrip(t *testing.T) {
	a := mustLookup(t, "blake2b-512")
	id, err := ForValue(a, "x")
	if err != nil {
		t.Fatalf("ForValue failed: %v", err)
	}
	parsed, err := Parse(id.String())
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	got, err := Algorithm(parsed)
	if err != nil {
		t.Fatalf("Algorithm failed: %v", err)
	}
	if got.Name != a.Name {
		t.Fatalf("Algorithm = %s", got.Name)
	}
}

func TestNoMultihashCode(t *testing.T) {
	if _, err := ForValue(mustLookup(t, "xxh64"), 1); !errors.Is(err, ErrNoMultihash) {
		t.Fatalf("expected ErrNoMultihash, got %v", err)
	}
	if _, err := FromSum(mustLookup(t, "sha2-256"), []byte{1, 2}); err == nil {
		t.Fatalf("expected short digest error")
	}
	if _, err := Algorithm(cid.Undef); err == nil {
		t.Fatalf("expected error for undefined CID")
	}
}
