package storage

import (
	"fmt"

	"github.com/ipfs/go-cid"

	"xdao.co/fingerprint/cidutil"
	"xdao.co/fingerprint/fingerprint"
)

// PutValue stores the canonical encoding of v and returns its fingerprint CID.
func PutValue[T any](cas CAS, v T) (cid.Cid, error) {
	b, err := fingerprint.Marshal(v)
	if err != nil {
		return cid.Undef, err
	}
	return cas.Put(b)
}

// HasValue reports whether the canonical encoding of v is stored in cas.
func HasValue[T any](cas CAS, v T) (bool, error) {
	id, err := cidutil.ForValue(cas.Algorithm(), v)
	if err != nil {
		return false, err
	}
	return cas.Has(id), nil
}

// VerifyValue checks that id is stored and that the stored bytes are exactly
// the canonical encoding of v.
func VerifyValue[T any](cas CAS, id cid.Cid, v T) error {
	stored, err := cas.Get(id)
	if err != nil {
		return err
	}
	want, err := fingerprint.Marshal(v)
	if err != nil {
		return err
	}
	if string(stored) != string(want) {
		return fmt.Errorf("%w: %s holds a different encoding", ErrCIDMismatch, id)
	}
	return nil
}
