// Package cidutil turns fingerprints into CIDv1 identifiers.
//
// A fingerprint CID uses the "raw" multicodec and a multihash whose code names
// the digest algorithm. Because a fingerprint is the digest of a value's
// canonical encoding, ForValue(a, v) and ForBytes(a, fingerprint.Marshal(v))
// are the same CID.
package cidutil

import (
	"errors"
	"fmt"

	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"

	"xdao.co/fingerprint/digest"
)

var (
	// ErrNoMultihash is returned for algorithms without a multihash code.
	ErrNoMultihash = errors.New("cidutil: algorithm has no multihash code")
	// ErrMismatch is returned by Verify when bytes do not hash to the CID.
	ErrMismatch = errors.New("cidutil: content does not match CID")
)

// FromSum wraps a finished digest produced by a.
func FromSum(a digest.Algorithm, sum []byte) (cid.Cid, error) {
	if a.Code == 0 {
		return cid.Undef, fmt.Errorf("%w: %s", ErrNoMultihash, a.Name)
	}
	if len(sum) != a.Size {
		return cid.Undef, fmt.Errorf("cidutil: %s digest is %d bytes, got %d", a.Name, a.Size, len(sum))
	}
	mh, err := multihash.Encode(sum, a.Code)
	if err != nil {
		return cid.Undef, err
	}
	return cid.NewCidV1(cid.Raw, mh), nil
}

// ForValue fingerprints v with a and returns its CID.
func ForValue[T any](a digest.Algorithm, v T) (cid.Cid, error) {
	if a.Code == 0 {
		return cid.Undef, fmt.Errorf("%w: %s", ErrNoMultihash, a.Name)
	}
	sum, err := digest.Sum(a, v)
	if err != nil {
		return cid.Undef, err
	}
	return FromSum(a, sum)
}

// ForBytes hashes data, typically a stored canonical encoding, with a.
func ForBytes(a digest.Algorithm, data []byte) (cid.Cid, error) {
	if a.Code == 0 {
		return cid.Undef, fmt.Errorf("%w: %s", ErrNoMultihash, a.Name)
	}
	h := a.New()
	h.Write(data)
	return FromSum(a, h.Sum(nil))
}

// Algorithm returns the registered digest named by id's multihash.
func Algorithm(id cid.Cid) (digest.Algorithm, error) {
	if !id.Defined() {
		return digest.Algorithm{}, fmt.Errorf("cidutil: undefined CID")
	}
	dmh, err := multihash.Decode(id.Hash())
	if err != nil {
		return digest.Algorithm{}, fmt.Errorf("cidutil: decode multihash: %w", err)
	}
	a, ok := digest.ByCode(dmh.Code)
	if !ok {
		return digest.Algorithm{}, fmt.Errorf("cidutil: no registered digest for multihash code %#x", dmh.Code)
	}
	return a, nil
}

// Verify re-hashes data with the algorithm id names and compares.
func Verify(id cid.Cid, data []byte) error {
	a, err := Algorithm(id)
	if err != nil {
		return err
	}
	got, err := ForBytes(a, data)
	if err != nil {
		return err
	}
	if !got.Equals(id) {
		return fmt.Errorf("%w: got %s want %s", ErrMismatch, got, id)
	}
	return nil
}

// Parse decodes a CID string.
func Parse(s string) (cid.Cid, error) {
	id, err := cid.Decode(s)
	if err != nil {
		return cid.Undef, fmt.Errorf("cidutil: parse %q: %w", s, err)
	}
	return id, nil
}
