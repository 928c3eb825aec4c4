package storage

import (
	"github.com/ipfs/go-cid"

	"xdao.co/fingerprint/digest"
)

// MultiCAS provides deterministic, ordered fallback across multiple CAS adapters.
//
// Lookup order is the slice order in Adapters; callers MUST supply a fixed order.
// Put writes only to the first adapter, whose algorithm is the MultiCAS algorithm.
type MultiCAS struct {
	Adapters []CAS
}

var _ CAS = MultiCAS{}

func (m MultiCAS) Algorithm() digest.Algorithm {
	if len(m.Adapters) == 0 {
		return digest.Algorithm{}
	}
	return m.Adapters[0].Algorithm()
}

func (m MultiCAS) Put(bytes []byte) (cid.Cid, error) {
	if len(m.Adapters) == 0 {
		return cid.Undef, ErrNoBackends
	}
	return m.Adapters[0].Put(bytes)
}

func (m MultiCAS) Get(id cid.Cid) ([]byte, error) {
	for _, cas := range m.Adapters {
		b, err := cas.Get(id)
		if err == nil {
			return b, nil
		}
		if IsNotFound(err) {
			continue
		}
		return nil, err
	}
	return nil, ErrNotFound
}

func (m MultiCAS) Has(id cid.Cid) bool {
	for _, cas := range m.Adapters {
		if cas.Has(id) {
			return true
		}
	}
	return false
}
