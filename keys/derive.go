package keys

import (
	"crypto/ed25519"
	"fmt"

	"xdao.co/fingerprint/digest"
	"xdao.co/fingerprint/fingerprint"
)

const kdfContext = "xdao-fingerprint-kdf-v1"

// kdfInput is fingerprinted to derive role seeds. Its field order is part of
// the derivation and must not change.
type kdfInput struct {
	Context string
	Root    []byte
	Role    string
}

// DeriveRoleSeed deterministically derives a role-specific Ed25519 seed from
// a root seed: the blake2s-256 fingerprint of (context, root, role).
func DeriveRoleSeed(rootSeed []byte, role string) ([]byte, error) {
	if len(rootSeed) != ed25519.SeedSize {
		return nil, fmt.Errorf("root seed must be %d bytes", ed25519.SeedSize)
	}
	if err := CheckRole(role); err != nil {
		return nil, err
	}
	a, err := digest.Lookup("blake2s-256")
	if err != nil {
		return nil, err
	}
	return fingerprint.Sum(a.New, kdfInput{Context: kdfContext, Root: rootSeed, Role: role})
}

// CheckRole validates a role name: non-empty ASCII letters, digits, '-' and '_'.
func CheckRole(role string) error {
	if role == "" {
		return fmt.Errorf("role cannot be empty")
	}
	return checkName("role", role)
}

// CheckKeyName validates a key identifier with the same rules as CheckRole.
func CheckKeyName(name string) error {
	if name == "" {
		return fmt.Errorf("identifier cannot be empty")
	}
	return checkName("identifier", name)
}

func checkName(what, s string) error {
	for _, c := range s {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '_':
		default:
			return fmt.Errorf("invalid character %q in %s", c, what)
		}
	}
	return nil
}
