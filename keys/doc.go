// Package keys signs fingerprints and derives role keys.
//
// Signatures cover a versioned message built from the fingerprint bytes (see
// SignedMessage), so a signer commits to a value's canonical content and not
// to any particular serialization of it. Role seeds are themselves
// fingerprints of the root seed and the role name.
//
// Store is a small filesystem keyring used by the CLI; it holds Ed25519 seeds
// as hex text and is not meant for production key custody.
package keys
