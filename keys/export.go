package keys

import (
	"crypto/ed25519"
	"encoding/base64"
	"fmt"
	"strings"
)

const issuerKeyPrefix = "ed25519:"

// IssuerKeyFromSeed returns the issuer key string for an Ed25519 seed:
// "ed25519:" + base64(pubkey).
func IssuerKeyFromSeed(seed []byte) string {
	pub := ed25519.NewKeyFromSeed(seed).Public().(ed25519.PublicKey)
	return issuerKeyPrefix + base64.StdEncoding.EncodeToString(pub)
}

// IssuerKeyFromPublicKey encodes an Ed25519 public key as an issuer key string.
func IssuerKeyFromPublicKey(pub ed25519.PublicKey) (string, error) {
	if l := len(pub); l != ed25519.PublicKeySize {
		return "", fmt.Errorf("ed25519 public key must be %d bytes, got %d", ed25519.PublicKeySize, l)
	}
	return issuerKeyPrefix + base64.StdEncoding.EncodeToString(pub), nil
}

// ParseIssuerKey decodes an issuer key string back to the public key.
func ParseIssuerKey(s string) (ed25519.PublicKey, error) {
	b64, ok := strings.CutPrefix(strings.TrimSpace(s), issuerKeyPrefix)
	if !ok {
		return nil, fmt.Errorf("issuer key must start with %q", issuerKeyPrefix)
	}
	pub, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, fmt.Errorf("decode issuer key: %w", err)
	}
	if len(pub) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("ed25519 public key must be %d bytes, got %d", ed25519.PublicKeySize, len(pub))
	}
	return ed25519.PublicKey(pub), nil
}
