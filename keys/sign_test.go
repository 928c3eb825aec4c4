package keys

import (
	"crypto/ed25519"
	"errors"
	"io"
	"testing"

	"golang.org/x/crypto/blake2s"
)

type deterministicReader struct{ b byte }

func (r *deterministicReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = r.b
		r.b++
	}
	return len(p), nil
}

func testFingerprint(s string) []byte {
	fp := blake2s.Sum256([]byte(s))
	return fp[:]
}

func TestSignEd25519Verifies(t *testing.T) {
	priv := ed25519.NewKeyFromSeed(testRoot())
	pub := priv.Public().(ed25519.PublicKey)
	fp := testFingerprint("hello")

	sig, err := SignEd25519(fp, priv)
	if err != nil {
		t.Fatalf("SignEd25519: %v", err)
	}
	if err := VerifyEd25519(fp, pub, sig); err != nil {
		t.Fatalf("VerifyEd25519: %v", err)
	}
	if err := VerifyEd25519(testFingerprint("other"), pub, sig); !errors.Is(err, ErrBadSignature) {
		t.Fatalf("expected ErrBadSignature, got %v", err)
	}
}

func TestSignatureIsNotOverRawDigest(t *testing.T) {
	priv := ed25519.NewKeyFromSeed(testRoot())
	fp := testFingerprint("hello")
	raw := ed25519.Sign(priv, fp)
	ctx := ed25519.Sign(priv, SignedMessage(fp))
	if string(raw) == string(ctx) {
		t.Fatalf("signed message equals raw fingerprint")
	}
}

func TestSignDilithium3Verifies(t *testing.T) {
	pk, sk, err := GenerateDilithium3Keypair(io.Reader(&deterministicReader{}))
	if err != nil {
		t.Fatalf("GenerateDilithium3Keypair: %v", err)
	}
	fp := testFingerprint("hello")

	sig, err := SignDilithium3(fp, sk)
	if err != nil {
		t.Fatalf("SignDilithium3: %v", err)
	}
	if err := VerifyDilithium3(fp, pk, sig); err != nil {
		t.Fatalf("VerifyDilithium3: %v", err)
	}
	if err := VerifyDilithium3(testFingerprint("other"), pk, sig); !errors.Is(err, ErrBadSignature) {
		t.Fatalf("expected ErrBadSignature, got %v", err)
	}
	if _, err := SignDilithium3(fp, nil); err == nil {
		t.Fatalf("expected missing key error")
	}
}
