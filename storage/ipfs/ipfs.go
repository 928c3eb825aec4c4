// Package ipfs stores canonical encodings as raw blocks in a local Kubo repo.
package ipfs

import (
	"bytes"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"

	"xdao.co/fingerprint/cidutil"
	"xdao.co/fingerprint/digest"
	"xdao.co/fingerprint/storage"
)

// CAS is a content-addressable store backed by the local Kubo "ipfs" CLI.
//
// It works on the local repo without a daemon and never trusts the CLI's
// answer: Put compares the returned CID with one computed locally, and Get
// re-hashes the block.
type CAS struct {
	bin    string
	env    []string
	alg    digest.Algorithm
	mhtype string
}

var _ storage.CAS = (*CAS)(nil)

type Options struct {
	// Bin is the path to the ipfs binary. If empty, "ipfs" is used.
	Bin string
	// Env optionally overrides the command environment (e.g. to set IPFS_PATH).
	// If nil, the process environment is used.
	Env []string
}

// New returns a CAS that stores blocks hashed with alg. alg must have a
// multihash code Kubo knows by name.
func New(alg digest.Algorithm, opts Options) (*CAS, error) {
	if alg.Code == 0 {
		return nil, fmt.Errorf("ipfs: %w: %s", cidutil.ErrNoMultihash, alg.Name)
	}
	mhtype, ok := multihash.Codes[alg.Code]
	if !ok {
		return nil, fmt.Errorf("ipfs: no multihash name for code %#x", alg.Code)
	}
	bin := opts.Bin
	if bin == "" {
		bin = "ipfs"
	}
	return &CAS{bin: bin, env: opts.Env, alg: alg, mhtype: mhtype}, nil
}

func (c *CAS) Algorithm() digest.Algorithm { return c.alg }

func (c *CAS) Put(data []byte) (cid.Cid, error) {
	id, err := cidutil.ForBytes(c.alg, data)
	if err != nil {
		return cid.Undef, err
	}
	if !id.Defined() {
		return cid.Undef, storage.ErrInvalidCID
	}

	out, err := c.run(data,
		"block", "put",
		"--quiet",
		"--format=raw",
		"--mhtype="+c.mhtype,
		"--mhlen="+strconv.Itoa(c.alg.Size),
		"--cid-version=1",
		"/dev/stdin",
	)
	if err != nil {
		return cid.Undef, err
	}

	got, err := cid.Decode(strings.TrimSpace(string(out)))
	if err != nil {
		return cid.Undef, fmt.Errorf("ipfs: unexpected block put output: %w", err)
	}
	if !got.Equals(id) {
		return cid.Undef, storage.ErrCIDMismatch
	}
	return id, nil
}

func (c *CAS) Get(id cid.Cid) ([]byte, error) {
	if !id.Defined() {
		return nil, storage.ErrInvalidCID
	}

	out, err := c.run(nil, "block", "get", id.String())
	if err != nil {
		if isLikelyNotFound(err) {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}
	if err := cidutil.Verify(id, out); err != nil {
		return nil, storage.ErrCIDMismatch
	}
	return out, nil
}

func (c *CAS) Has(id cid.Cid) bool {
	if !id.Defined() {
		return false
	}
	_, err := c.run(nil, "block", "stat", "--offline", id.String())
	return err == nil
}

func (c *CAS) run(stdin []byte, args ...string) ([]byte, error) {
	cmd := exec.Command(c.bin, args...)
	if c.env != nil {
		cmd.Env = c.env
	}
	if stdin != nil {
		cmd.Stdin = bytes.NewReader(stdin)
	}

	out, err := cmd.Output()
	if err == nil {
		return out, nil
	}

	var ee *exec.ExitError
	if errors.As(err, &ee) {
		s := strings.TrimSpace(string(ee.Stderr))
		if s == "" {
			return nil, fmt.Errorf("ipfs: %v", err)
		}
		return nil, fmt.Errorf("ipfs: %s", s)
	}
	return nil, err
}

func isLikelyNotFound(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "not found")
}
