// Package bundle moves stored canonical encodings between CAS instances as a
// deterministic TAR archive.
//
// Layout:
//
//	blocks/<cid>   one entry per object, bytes exactly as stored
//	index.cbor     optional, canonical CBOR; describes but never overrides blocks
package bundle

import (
	"archive/tar"
	"bytes"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/ipfs/go-cid"

	"xdao.co/fingerprint/cidutil"
	"xdao.co/fingerprint/storage"
)

// FormatVersion is the current bundle index schema version.
const FormatVersion = 1

const indexName = "index.cbor"

var epoch0 = time.Unix(0, 0).UTC()

var indexEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	indexEncMode = em
}

// ExportOptions controls bundle export behavior.
type ExportOptions struct {
	// Labels is optional, non-authoritative metadata mapping names to CIDs.
	Labels map[string]cid.Cid
	// IncludeIndex controls whether index.cbor is included.
	IncludeIndex bool
}

// Index is the decoded index.cbor entry.
type Index struct {
	Version   int          `cbor:"1,keyasint"`
	Algorithm string       `cbor:"2,keyasint"`
	Blocks    []IndexBlock `cbor:"3,keyasint"`
	Labels    []IndexLabel `cbor:"4,keyasint,omitempty"`
}

type IndexBlock struct {
	CID  string `cbor:"1,keyasint"`
	Size int    `cbor:"2,keyasint"`
}

type IndexLabel struct {
	Name string `cbor:"1,keyasint"`
	CID  string `cbor:"2,keyasint"`
}

// Export writes a deterministic TAR bundle containing the objects for ids.
//
// Entry order is lexicographic by CID string, TAR headers are normalized, and
// every exported object is verified against its CID.
func Export(w io.Writer, cas storage.CAS, ids []cid.Cid, opts ExportOptions) error {
	if cas == nil {
		return fmt.Errorf("bundle: nil CAS")
	}

	uniq := make(map[string]cid.Cid, len(ids))
	for _, id := range ids {
		if !id.Defined() {
			return storage.ErrInvalidCID
		}
		uniq[id.String()] = id
	}
	cidStrings := make([]string, 0, len(uniq))
	for s := range uniq {
		cidStrings = append(cidStrings, s)
	}
	sort.Strings(cidStrings)

	tw := tar.NewWriter(w)
	fail := func(err error) error {
		_ = tw.Close()
		return err
	}

	blocks := make([]IndexBlock, 0, len(cidStrings))
	for _, s := range cidStrings {
		id := uniq[s]
		b, err := cas.Get(id)
		if err != nil {
			return fail(fmt.Errorf("bundle: get %s: %w", s, err))
		}
		if err := cidutil.Verify(id, b); err != nil {
			return fail(storage.ErrCIDMismatch)
		}
		if err := writeFile(tw, "blocks/"+s, b); err != nil {
			return fail(err)
		}
		blocks = append(blocks, IndexBlock{CID: s, Size: len(b)})
	}

	if opts.IncludeIndex {
		idx := Index{
			Version:   FormatVersion,
			Algorithm: cas.Algorithm().Name,
			Blocks:    blocks,
		}
		keys := make([]string, 0, len(opts.Labels))
		for k := range opts.Labels {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if k == "" {
				return fail(fmt.Errorf("bundle: empty label key"))
			}
			v := opts.Labels[k]
			if !v.Defined() {
				return fail(storage.ErrInvalidCID)
			}
			idx.Labels = append(idx.Labels, IndexLabel{Name: k, CID: v.String()})
		}

		b, err := indexEncMode.Marshal(idx)
		if err != nil {
			return fail(err)
		}
		if err := writeFile(tw, indexName, b); err != nil {
			return fail(err)
		}
	}

	return tw.Close()
}

// ImportOptions controls bundle import behavior.
type ImportOptions struct {
	// IgnoreUnknown controls whether unknown TAR entries are ignored.
	//
	// Default (false) is fail-closed: unknown entries cause Import to return an error.
	IgnoreUnknown bool
}

// Import reads a bundle from r and stores all blocks in cas. It returns the
// imported CIDs in archive order.
func Import(r io.Reader, cas storage.CAS) ([]cid.Cid, error) {
	return ImportWithOptions(r, cas, ImportOptions{})
}

// ImportWithOptions is Import with explicit options.
//
// Each block's bytes must hash to the CID in its entry name, and cas must
// return that same CID; a cas configured with another algorithm fails with
// ErrCIDMismatch.
func ImportWithOptions(r io.Reader, cas storage.CAS, opts ImportOptions) ([]cid.Cid, error) {
	if cas == nil {
		return nil, fmt.Errorf("bundle: nil CAS")
	}

	tr := tar.NewReader(r)
	seen := map[string]struct{}{}
	var out []cid.Cid

	for {
		h, err := tr.Next()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		name := cleanTarPath(h.Name)
		if name == "" {
			return out, fmt.Errorf("bundle: invalid entry path: %q", h.Name)
		}

		if h.Typeflag != tar.TypeReg {
			if opts.IgnoreUnknown {
				continue
			}
			return out, fmt.Errorf("bundle: unexpected tar entry type: %v (%s)", h.Typeflag, name)
		}

		if name == indexName {
			_, _ = io.Copy(io.Discard, tr)
			continue
		}

		cidStr, ok := strings.CutPrefix(name, "blocks/")
		if !ok {
			if opts.IgnoreUnknown {
				_, _ = io.Copy(io.Discard, tr)
				continue
			}
			return out, fmt.Errorf("bundle: unknown entry: %s", name)
		}

		id, derr := cid.Decode(cidStr)
		if derr != nil || !id.Defined() {
			return out, storage.ErrInvalidCID
		}
		payload, rerr := io.ReadAll(tr)
		if rerr != nil {
			return out, rerr
		}
		if err := cidutil.Verify(id, payload); err != nil {
			if errors.Is(err, cidutil.ErrMismatch) {
				return out, storage.ErrCIDMismatch
			}
			return out, err
		}

		key := id.String()
		if _, ok := seen[key]; ok {
			return out, fmt.Errorf("bundle: duplicate block entry: %s", key)
		}
		seen[key] = struct{}{}

		putID, perr := cas.Put(payload)
		if perr != nil {
			return out, perr
		}
		if !putID.Equals(id) {
			return out, storage.ErrCIDMismatch
		}
		out = append(out, id)
	}
}

// ReadIndex returns the decoded index of a bundle, or nil when it has none.
func ReadIndex(r io.Reader) (*Index, error) {
	tr := tar.NewReader(r)
	for {
		h, err := tr.Next()
		if err == io.EOF {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		if cleanTarPath(h.Name) != indexName {
			continue
		}
		b, err := io.ReadAll(tr)
		if err != nil {
			return nil, err
		}
		var idx Index
		if err := cbor.Unmarshal(b, &idx); err != nil {
			return nil, fmt.Errorf("bundle: decode index: %w", err)
		}
		return &idx, nil
	}
}

func writeFile(tw *tar.Writer, name string, content []byte) error {
	hdr := &tar.Header{
		Name:     name,
		Mode:     0o644,
		Size:     int64(len(content)),
		ModTime:  epoch0,
		Typeflag: tar.TypeReg,
	}
	if err := tw.WriteHeader(hdr); err != nil {
		return err
	}
	_, err := io.Copy(tw, bytes.NewReader(content))
	return err
}

func cleanTarPath(name string) string {
	name = strings.TrimSpace(name)
	name = strings.ReplaceAll(name, "\\", "/")
	name = strings.TrimPrefix(name, "./")
	name = strings.TrimPrefix(name, "/")
	if name == "" {
		return ""
	}

	parts := strings.Split(name, "/")
	for _, part := range parts {
		if part == "" || part == "." || part == ".." {
			return ""
		}
	}
	return strings.Join(parts, "/")
}
