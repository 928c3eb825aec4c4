package keys

import (
	"crypto/ed25519"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Store keeps Ed25519 seeds under Dir:
//
//	<Dir>/<name>/root.key
//	<Dir>/<name>/roles/<role>.key
type Store struct {
	Dir string
}

// Entry lists one root key and the roles derived from it.
type Entry struct {
	Name  string
	Roles []string
}

// DefaultDir is ~/.xdao/fingerprint/keys.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".xdao", "fingerprint", "keys"), nil
}

// OpenStore returns a Store rooted at dir, or at DefaultDir when dir is empty.
func OpenStore(dir string) (*Store, error) {
	if dir == "" {
		d, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}
	return &Store{Dir: dir}, nil
}

func (s *Store) rootPath(name string) string {
	return filepath.Join(s.Dir, name, "root.key")
}

func (s *Store) rolePath(name, role string) string {
	return filepath.Join(s.Dir, name, "roles", role+".key")
}

// ParseSeedHex decodes a hex seed, with or without a 0x prefix.
func ParseSeedHex(s string) ([]byte, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "0x")
	seed, err := hex.DecodeString(s)
	if err != nil {
		return nil, err
	}
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("expected seed length of %d bytes, got %d", ed25519.SeedSize, len(seed))
	}
	return seed, nil
}

func writeSeed(path string, seed []byte, overwrite bool) error {
	if len(seed) != ed25519.SeedSize {
		return fmt.Errorf("expected seed length of %d bytes", ed25519.SeedSize)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	flags := os.O_WRONLY | os.O_CREATE | os.O_EXCL
	if overwrite {
		flags = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	}
	f, err := os.OpenFile(path, flags, 0o600)
	if err != nil {
		return err
	}
	if _, err := f.WriteString(hex.EncodeToString(seed) + "\n"); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func readSeed(path string) ([]byte, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseSeedHex(string(b))
}

// Init stores seed as the root key of name and returns its issuer key.
func (s *Store) Init(name string, seed []byte, overwrite bool) (string, error) {
	if err := CheckKeyName(name); err != nil {
		return "", err
	}
	if err := writeSeed(s.rootPath(name), seed, overwrite); err != nil {
		return "", err
	}
	return IssuerKeyFromSeed(seed), nil
}

// Derive stores the role seed derived from name's root key and returns its
// issuer key.
func (s *Store) Derive(name, role string, overwrite bool) (string, error) {
	root, err := s.Seed(name, "")
	if err != nil {
		return "", err
	}
	seed, err := DeriveRoleSeed(root, role)
	if err != nil {
		return "", err
	}
	if err := writeSeed(s.rolePath(name, role), seed, overwrite); err != nil {
		return "", err
	}
	return IssuerKeyFromSeed(seed), nil
}

// Seed loads name's root seed, or its role seed when role is set.
func (s *Store) Seed(name, role string) ([]byte, error) {
	if err := CheckKeyName(name); err != nil {
		return nil, err
	}
	if role == "" {
		return readSeed(s.rootPath(name))
	}
	if err := CheckRole(role); err != nil {
		return nil, err
	}
	return readSeed(s.rolePath(name, role))
}

// PrivateKey loads the Ed25519 private key for name (and role).
func (s *Store) PrivateKey(name, role string) (ed25519.PrivateKey, error) {
	seed, err := s.Seed(name, role)
	if err != nil {
		return nil, err
	}
	return ed25519.NewKeyFromSeed(seed), nil
}

// List returns stored keys sorted by name, each with its sorted roles.
func (s *Store) List() ([]Entry, error) {
	dirs, err := os.ReadDir(s.Dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var out []Entry
	for _, d := range dirs {
		if !d.IsDir() {
			continue
		}
		e := Entry{Name: d.Name()}
		roles, _ := os.ReadDir(filepath.Join(s.Dir, d.Name(), "roles"))
		for _, r := range roles {
			if role, ok := strings.CutSuffix(r.Name(), ".key"); ok && !r.IsDir() {
				e.Roles = append(e.Roles, role)
			}
		}
		sort.Strings(e.Roles)
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
