// Package storage keeps canonical encodings addressed by their fingerprint.
//
// A CAS backend is bound to one digest algorithm. Put hashes the bytes it is
// given, which for fingerprinted values are fingerprint.Marshal output, so the
// returned CID is the value's fingerprint CID (see cidutil.ForValue).
package storage

import (
	"github.com/ipfs/go-cid"

	"xdao.co/fingerprint/digest"
)

// CAS is a minimal content-addressable storage interface.
//
// Contract:
// - Put MUST be idempotent.
// - Stored objects MUST be immutable.
// - CIDs MUST be derived from the bytes written using Algorithm.
// - Get MUST return ErrNotFound when the CID is absent.
// - Get MUST verify returned bytes against the requested CID.
type CAS interface {
	Algorithm() digest.Algorithm
	Put(bytes []byte) (cid.Cid, error)
	Get(id cid.Cid) ([]byte, error)
	Has(id cid.Cid) bool
}
