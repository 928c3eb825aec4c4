package digest

import (
	"fmt"
	"hash"
	"sort"
	"sync"
)

// Default is the algorithm used when none is configured.
const Default = "blake2s-256"

// Algorithm is a named digest engine.
//
// Engines register themselves in init():
//
//	digest.MustRegister(digest.Algorithm{ ... })
type Algorithm struct {
	Name        string
	Description string

	// Code is the multihash code of the algorithm, or 0 when the digest has
	// no multihash assignment and cannot back a CID.
	Code uint64

	// Size is the digest length in bytes.
	Size int

	// Cryptographic is false for fast checksums that must not be used where
	// collisions can be chosen by an adversary.
	Cryptographic bool

	New func() hash.Hash

	// NewKeyed returns a MAC-mode digest. Nil when the engine has no keyed mode.
	NewKeyed func(key []byte) (hash.Hash, error)
}

var (
	mu     sync.RWMutex
	byName = map[string]Algorithm{}
	byCode = map[uint64]Algorithm{}
)

// Register registers an algorithm.
func Register(a Algorithm) error {
	if a.Name == "" {
		return fmt.Errorf("digest: algorithm name is required")
	}
	if a.New == nil {
		return fmt.Errorf("digest: algorithm %q missing New", a.Name)
	}
	if a.Size <= 0 {
		return fmt.Errorf("digest: algorithm %q missing Size", a.Name)
	}

	mu.Lock()
	defer mu.Unlock()
	if _, exists := byName[a.Name]; exists {
		return fmt.Errorf("digest: algorithm %q already registered", a.Name)
	}
	if a.Code != 0 {
		if prev, exists := byCode[a.Code]; exists {
			return fmt.Errorf("digest: multihash code %#x of %q already used by %q", a.Code, a.Name, prev.Name)
		}
		byCode[a.Code] = a
	}
	byName[a.Name] = a
	return nil
}

// MustRegister is like Register but panics on error.
func MustRegister(a Algorithm) {
	if err := Register(a); err != nil {
		panic(err)
	}
}

// Lookup returns the named algorithm.
func Lookup(name string) (Algorithm, error) {
	mu.RLock()
	a, ok := byName[name]
	mu.RUnlock()
	if !ok {
		return Algorithm{}, fmt.Errorf("digest: unknown algorithm %q", name)
	}
	return a, nil
}

// ByCode returns the algorithm registered for a multihash code.
func ByCode(code uint64) (Algorithm, bool) {
	mu.RLock()
	defer mu.RUnlock()
	a, ok := byCode[code]
	return a, ok
}

// List returns all algorithms, sorted by name.
func List() []Algorithm {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]Algorithm, 0, len(byName))
	for _, a := range byName {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Names returns all algorithm names, sorted.
func Names() []string {
	as := List()
	n := make([]string, 0, len(as))
	for _, a := range as {
		n = append(n, a.Name)
	}
	return n
}
