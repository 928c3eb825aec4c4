// Package localfs is a filesystem CAS for canonical encodings.
//
// Objects are written once with mode 0444 under <root>/<xx>/<cid>, where xx
// is the first two characters of the CID string. Writers in different
// processes serialize through an advisory lock on <root>/.lock.
package localfs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/ipfs/go-cid"

	"xdao.co/fingerprint/cidutil"
	"xdao.co/fingerprint/digest"
	"xdao.co/fingerprint/storage"
)

const lockName = ".lock"

// CAS is a local filesystem-backed content-addressable store.
//
// It never uses the network and never depends on wall-clock time.
type CAS struct {
	root string
	alg  digest.Algorithm
	lock *flock.Flock
}

var _ storage.CAS = (*CAS)(nil)

// New constructs a filesystem CAS rooted at root that addresses objects with
// alg. The directory is created if needed.
func New(root string, alg digest.Algorithm) (*CAS, error) {
	if root == "" {
		return nil, errors.New("localfs: root directory is required")
	}
	if alg.Code == 0 {
		return nil, fmt.Errorf("localfs: %w: %s", cidutil.ErrNoMultihash, alg.Name)
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	return &CAS{
		root: root,
		alg:  alg,
		lock: flock.New(filepath.Join(root, lockName)),
	}, nil
}

// Root returns the store directory.
func (c *CAS) Root() string { return c.root }

func (c *CAS) Algorithm() digest.Algorithm { return c.alg }

func (c *CAS) Put(bytes []byte) (cid.Cid, error) {
	id, err := cidutil.ForBytes(c.alg, bytes)
	if err != nil {
		return cid.Undef, err
	}
	if !id.Defined() {
		return cid.Undef, storage.ErrInvalidCID
	}

	if err := c.lock.Lock(); err != nil {
		return cid.Undef, fmt.Errorf("localfs: acquire lock: %w", err)
	}
	defer c.lock.Unlock()

	path := c.pathFor(id)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return cid.Undef, err
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o444)
	if err != nil {
		if os.IsExist(err) {
			existing, rerr := c.Get(id)
			if rerr != nil || string(existing) != string(bytes) {
				// An unreadable or altered object is never repaired in place.
				return cid.Undef, storage.ErrImmutable
			}
			return id, nil
		}
		return cid.Undef, err
	}

	if _, err := f.Write(bytes); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return cid.Undef, err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return cid.Undef, err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return cid.Undef, err
	}
	return id, nil
}

// Get reads id and re-hashes the bytes with the algorithm id names.
func (c *CAS) Get(id cid.Cid) ([]byte, error) {
	if !id.Defined() {
		return nil, storage.ErrInvalidCID
	}
	b, err := os.ReadFile(c.pathFor(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}
	if err := cidutil.Verify(id, b); err != nil {
		if errors.Is(err, cidutil.ErrMismatch) {
			return nil, storage.ErrCIDMismatch
		}
		return nil, err
	}
	return b, nil
}

func (c *CAS) Has(id cid.Cid) bool {
	if !id.Defined() {
		return false
	}
	_, err := os.Stat(c.pathFor(id))
	return err == nil
}

// List returns the CIDs of all stored objects in directory order.
func (c *CAS) List() ([]cid.Cid, error) {
	shards, err := os.ReadDir(c.root)
	if err != nil {
		return nil, err
	}
	var out []cid.Cid
	for _, shard := range shards {
		if !shard.IsDir() {
			continue
		}
		entries, err := os.ReadDir(filepath.Join(c.root, shard.Name()))
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			id, err := cid.Decode(e.Name())
			if err != nil {
				continue
			}
			out = append(out, id)
		}
	}
	return out, nil
}

func (c *CAS) pathFor(id cid.Cid) string {
	s := id.String()
	if len(s) < 2 {
		return filepath.Join(c.root, s)
	}
	return filepath.Join(c.root, s[:2], s)
}
