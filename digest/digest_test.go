package digest

import (
	"bytes"
	"slices"
	"testing"

	"xdao.co/fingerprint/testkit"
)

func TestRegisteredAlgorithms(t *testing.T) {
	want := []string{"blake2b-256", "blake2b-512", "blake2s-256", "blake3", "sha2-256", "sha2-512", "sha3-256", "sha3-512", "xxh64"}
	if got := Names(); !slices.Equal(got, want) {
		t.Fatalf("Names: got %v want %v", got, want)
	}

	for _, a := range List() {
		sum, err := Sum(a, "abc")
		if err != nil {
			t.Fatalf("%s: Sum failed: %v", a.Name, err)
		}
		if len(sum) != a.Size {
			t.Fatalf("%s: digest length %d, registered Size %d", a.Name, len(sum), a.Size)
		}
		if a.Code == 0 {
			continue
		}
		if got, ok := ByCode(a.Code); !ok || got.Name != a.Name {
			t.Fatalf("%s: ByCode(%#x) = %q, %v", a.Name, a.Code, got.Name, ok)
		}
	}
}

func TestDefaultIsBlake2s(t *testing.T) {
	a, err := Lookup(Default)
	if err != nil {
		t.Fatalf("Lookup(Default) failed: %v", err)
	}
	if a.Code != 0xb260 {
		t.Fatalf("blake2s-256 code = %#x", a.Code)
	}
	want := []byte{
		7, 111, 119, 103, 16, 73, 77, 122, 160, 198, 220, 50, 209, 55, 161, 211,
		88, 74, 219, 113, 49, 245, 73, 75, 91, 147, 101, 55, 98, 143, 206, 36,
	}
	got, err := SumNamed(Default, testkit.Tuple{"Hello world", int32(1337)})
	if err != nil {
		t.Fatalf("SumNamed failed: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("golden mismatch: %v", got)
	}
}

func TestLookupUnknown(t *testing.T) {
	if _, err := Lookup("md5"); err == nil {
		t.Fatalf("expected error for unknown algorithm")
	}
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	a, _ := Lookup("sha2-256")
	if err := Register(a); err == nil {
		t.Fatalf("expected duplicate name error")
	}
	a.Name = "sha2-256-again"
	if err := Register(a); err == nil {
		t.Fatalf("expected duplicate code error")
	}
	if err := Register(Algorithm{Name: "broken", Size: 1}); err == nil {
		t.Fatalf("expected missing New error")
	}
}

func TestPrefixSeparatesDomains(t *testing.T) {
	a, _ := Lookup("sha2-256")
	plain, err := Sum(a, uint8(1))
	if err != nil {
		t.Fatalf("Sum failed: %v", err)
	}
	prefixed, err := SumWithPrefix(a, "role", uint8(1))
	if err != nil {
		t.Fatalf("SumWithPrefix failed: %v", err)
	}
	if bytes.Equal(plain, prefixed) {
		t.Fatalf("prefix had no effect")
	}
	asTuple, _ := Sum(a, testkit.Tuple{"role", uint8(1)})
	if !bytes.Equal(prefixed, asTuple) {
		t.Fatalf("prefix is not encoded as a leading string")
	}
	empty, _ := SumWithPrefix(a, "", uint8(1))
	if !bytes.Equal(empty, plain) {
		t.Fatalf("empty prefix changed the digest")
	}
}

func TestKeyed(t *testing.T) {
	b3, _ := Lookup("blake3")
	if _, err := SumKeyed(b3, []byte("short"), uint8(1)); err == nil {
		t.Fatalf("expected blake3 key length error")
	}
	key := bytes.Repeat([]byte{7}, 32)
	keyed, err := SumKeyed(b3, key, uint8(1))
	if err != nil {
		t.Fatalf("SumKeyed failed: %v", err)
	}
	plain, _ := Sum(b3, uint8(1))
	if bytes.Equal(keyed, plain) {
		t.Fatalf("key had no effect")
	}

	sha, _ := Lookup("sha2-256")
	if _, err := SumKeyed(sha, key, uint8(1)); err == nil {
		t.Fatalf("expected error for engine without keyed mode")
	}

	b2s, _ := Lookup("blake2s-256")
	if _, err := SumKeyed(b2s, key, uint8(1)); err != nil {
		t.Fatalf("blake2s keyed: %v", err)
	}
}
