package digest

import (
	"crypto/sha512"
	"fmt"
	"hash"

	"github.com/cespare/xxhash/v2"
	"github.com/minio/sha256-simd"
	"github.com/multiformats/go-multihash"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/blake2s"
	"golang.org/x/crypto/sha3"
	"lukechampine.com/blake3"
)

func init() {
	MustRegister(Algorithm{
		Name:          "sha2-256",
		Description:   "SHA-256 (SIMD accelerated)",
		Code:          multihash.SHA2_256,
		Size:          32,
		Cryptographic: true,
		New:           sha256.New,
	})
	MustRegister(Algorithm{
		Name:          "sha2-512",
		Description:   "SHA-512",
		Code:          multihash.SHA2_512,
		Size:          64,
		Cryptographic: true,
		New:           sha512.New,
	})
	MustRegister(Algorithm{
		Name:          "sha3-256",
		Description:   "SHA3-256 (FIPS 202)",
		Code:          multihash.SHA3_256,
		Size:          32,
		Cryptographic: true,
		New:           sha3.New256,
	})
	MustRegister(Algorithm{
		Name:          "sha3-512",
		Description:   "SHA3-512 (FIPS 202)",
		Code:          multihash.SHA3_512,
		Size:          64,
		Cryptographic: true,
		New:           sha3.New512,
	})
	MustRegister(Algorithm{
		Name:          "blake2s-256",
		Description:   "BLAKE2s-256, keyed up to 32 bytes",
		Code:          multihash.BLAKE2S_MIN + 31,
		Size:          blake2s.Size,
		Cryptographic: true,
		New:           unkeyed(blake2s.New256),
		NewKeyed:      blake2s.New256,
	})
	MustRegister(Algorithm{
		Name:          "blake2b-256",
		Description:   "BLAKE2b-256, keyed up to 64 bytes",
		Code:          multihash.BLAKE2B_MIN + 31,
		Size:          blake2b.Size256,
		Cryptographic: true,
		New:           unkeyed(blake2b.New256),
		NewKeyed:      blake2b.New256,
	})
	MustRegister(Algorithm{
		Name:          "blake2b-512",
		Description:   "BLAKE2b-512, keyed up to 64 bytes",
		Code:          multihash.BLAKE2B_MAX,
		Size:          blake2b.Size,
		Cryptographic: true,
		New:           unkeyed(blake2b.New512),
		NewKeyed:      blake2b.New512,
	})
	MustRegister(Algorithm{
		Name:          "blake3",
		Description:   "BLAKE3-256, keyed with exactly 32 bytes",
		Code:          multihash.BLAKE3,
		Size:          32,
		Cryptographic: true,
		New:           func() hash.Hash { return blake3.New(32, nil) },
		NewKeyed: func(key []byte) (hash.Hash, error) {
			if len(key) != 32 {
				return nil, fmt.Errorf("digest: blake3 key must be 32 bytes, got %d", len(key))
			}
			return blake3.New(32, key), nil
		},
	})
	MustRegister(Algorithm{
		Name:        "xxh64",
		Description: "XXH64 checksum (in-process cache keys only)",
		Size:        8,
		New:         func() hash.Hash { return xxhash.New() },
	})
}

// unkeyed adapts a keyed constructor whose nil key cannot fail.
func unkeyed(newKeyed func(key []byte) (hash.Hash, error)) func() hash.Hash {
	return func() hash.Hash {
		h, err := newKeyed(nil)
		if err != nil {
			panic(err)
		}
		return h
	}
}
