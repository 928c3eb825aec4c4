package storage

import (
	"fmt"

	"github.com/ipfs/go-cid"

	"xdao.co/fingerprint/cidutil"
	"xdao.co/fingerprint/digest"
)

// NamedCAS associates a CAS with a stable backend name.
type NamedCAS struct {
	Name string
	CAS  CAS
}

// ReplicatingCAS writes to all configured backends.
//
// Reads fall back in order. Every backend must use Digest, and every Put must
// return the CID computed locally from the bytes (otherwise ErrCIDMismatch).
type ReplicatingCAS struct {
	Digest   digest.Algorithm
	Backends []NamedCAS
}

var _ CAS = (*ReplicatingCAS)(nil)

// NewReplicating checks that all backends agree on one algorithm.
func NewReplicating(backends ...NamedCAS) (*ReplicatingCAS, error) {
	if len(backends) == 0 {
		return nil, ErrNoBackends
	}
	var alg digest.Algorithm
	for i, b := range backends {
		if b.CAS == nil {
			return nil, fmt.Errorf("storage: nil CAS for backend %q", b.Name)
		}
		got := b.CAS.Algorithm()
		if i == 0 {
			alg = got
			continue
		}
		if got.Name != alg.Name {
			return nil, fmt.Errorf("storage: backend %q uses %s, backend %q uses %s", backends[0].Name, alg.Name, b.Name, got.Name)
		}
	}
	return &ReplicatingCAS{Digest: alg, Backends: backends}, nil
}

func (r ReplicatingCAS) Algorithm() digest.Algorithm { return r.Digest }

// PutAll writes the same bytes to all backends.
//
// It returns the CID computed from bytes and a map of backend name to the CID
// that backend returned. If any backend disagrees, ErrCIDMismatch is returned
// along with the partial map.
func (r ReplicatingCAS) PutAll(bytes []byte) (cid.Cid, map[string]cid.Cid, error) {
	if len(r.Backends) == 0 {
		return cid.Undef, nil, ErrNoBackends
	}
	want, err := cidutil.ForBytes(r.Digest, bytes)
	if err != nil {
		return cid.Undef, nil, err
	}
	if !want.Defined() {
		return cid.Undef, nil, ErrInvalidCID
	}

	out := make(map[string]cid.Cid, len(r.Backends))
	for _, b := range r.Backends {
		if b.CAS == nil {
			return cid.Undef, nil, fmt.Errorf("storage: nil CAS for backend %q", b.Name)
		}
		got, err := b.CAS.Put(bytes)
		if err != nil {
			return cid.Undef, out, fmt.Errorf("storage: backend %q: %w", b.Name, err)
		}
		out[b.Name] = got
		if !got.Equals(want) {
			return cid.Undef, out, fmt.Errorf("%w: backend %q returned %s, want %s", ErrCIDMismatch, b.Name, got, want)
		}
	}
	return want, out, nil
}

func (r ReplicatingCAS) Put(bytes []byte) (cid.Cid, error) {
	id, _, err := r.PutAll(bytes)
	return id, err
}

func (r ReplicatingCAS) Get(id cid.Cid) ([]byte, error) {
	for _, b := range r.Backends {
		if b.CAS == nil {
			continue
		}
		out, err := b.CAS.Get(id)
		if err == nil {
			return out, nil
		}
		if IsNotFound(err) {
			continue
		}
		return nil, err
	}
	return nil, ErrNotFound
}

func (r ReplicatingCAS) Has(id cid.Cid) bool {
	for _, b := range r.Backends {
		if b.CAS != nil && b.CAS.Has(id) {
			return true
		}
	}
	return false
}
