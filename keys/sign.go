package keys

import (
	"crypto/ed25519"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"github.com/cloudflare/circl/sign/dilithium/mode3"

	"xdao.co/fingerprint/fingerprint"
)

// sigContext versions the signed message layout.
const sigContext = "xdao-fingerprint-sig-v1"

// ErrBadSignature is returned when a signature does not verify.
var ErrBadSignature = errors.New("keys: signature does not verify")

// SignedMessage is the byte string actually signed for fingerprint fp: the
// canonical encoding of the context string followed by fp. Signatures made
// here never verify as signatures over the raw digest.
func SignedMessage(fp []byte) []byte {
	msg, err := fingerprint.Marshal(fingerprint.Versioned[[]byte]{Version: sigContext, Value: fp})
	if err != nil {
		// A string and a byte slice always have a canonical form.
		panic(err)
	}
	return msg
}

// SignEd25519 returns a base64 Ed25519 signature over fingerprint fp.
func SignEd25519(fp []byte, priv ed25519.PrivateKey) (string, error) {
	if len(priv) != ed25519.PrivateKeySize {
		return "", fmt.Errorf("ed25519 private key must be %d bytes, got %d", ed25519.PrivateKeySize, len(priv))
	}
	sig := ed25519.Sign(priv, SignedMessage(fp))
	return base64.StdEncoding.EncodeToString(sig), nil
}

// VerifyEd25519 checks a signature produced by SignEd25519.
func VerifyEd25519(fp []byte, pub ed25519.PublicKey, sigB64 string) error {
	if len(pub) != ed25519.PublicKeySize {
		return fmt.Errorf("ed25519 public key must be %d bytes, got %d", ed25519.PublicKeySize, len(pub))
	}
	sig, err := base64.StdEncoding.DecodeString(sigB64)
	if err != nil {
		return fmt.Errorf("decode signature: %w", err)
	}
	if !ed25519.Verify(pub, SignedMessage(fp), sig) {
		return ErrBadSignature
	}
	return nil
}

// SignDilithium3 returns a base64 Dilithium3 signature over fingerprint fp.
func SignDilithium3(fp []byte, priv *mode3.PrivateKey) (string, error) {
	if priv == nil {
		return "", fmt.Errorf("missing private key")
	}
	sig := make([]byte, mode3.SignatureSize)
	mode3.SignTo(priv, SignedMessage(fp), sig)
	return base64.StdEncoding.EncodeToString(sig), nil
}

// VerifyDilithium3 checks a signature produced by SignDilithium3.
func VerifyDilithium3(fp []byte, pub *mode3.PublicKey, sigB64 string) error {
	if pub == nil {
		return fmt.Errorf("missing public key")
	}
	sig, err := base64.StdEncoding.DecodeString(sigB64)
	if err != nil {
		return fmt.Errorf("decode signature: %w", err)
	}
	if len(sig) != mode3.SignatureSize {
		return fmt.Errorf("dilithium3 signature must be %d bytes, got %d", mode3.SignatureSize, len(sig))
	}
	if !mode3.Verify(pub, SignedMessage(fp), sig) {
		return ErrBadSignature
	}
	return nil
}

// GenerateDilithium3Keypair returns a new Dilithium3 keypair.
func GenerateDilithium3Keypair(rand io.Reader) (*mode3.PublicKey, *mode3.PrivateKey, error) {
	return mode3.GenerateKey(rand)
}
