package main

import (
	"crypto/ed25519"
	"encoding/base64"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/cloudflare/circl/sign/dilithium/mode3"

	"xdao.co/fingerprint/keys"
)

func cmdSign(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("sign", flag.ContinueOnError)
	fs.SetOutput(errOut)
	var vf valueFlags
	vf.add(fs)
	var signer, signerRole, seedHex, dilithiumKey string
	fs.StringVar(&signer, "signer", "", "Key name in the local key store")
	fs.StringVar(&signerRole, "signer-role", "", "Derived role of --signer (optional)")
	fs.StringVar(&seedHex, "seed-hex", "", "Ed25519 seed as 64 hex chars")
	fs.StringVar(&dilithiumKey, "dilithium-key", "", "Dilithium3 private key file")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	set := 0
	for _, v := range []string{signer, seedHex, dilithiumKey} {
		if v != "" {
			set++
		}
	}
	if set != 1 || fs.NArg() != 1 {
		fmt.Fprintln(errOut, "usage: fingerprint sign [value flags] (--signer <name> [--signer-role <role>] | --seed-hex <64hex> | --dilithium-key <file>) <file|->")
		return 2
	}
	s, err := vf.open()
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	fp, err := s.fingerprintOf(fs.Arg(0))
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}

	var sig string
	switch {
	case dilithiumKey != "":
		var sk mode3.PrivateKey
		if err := readKeyFile(dilithiumKey, &sk); err != nil {
			fmt.Fprintln(errOut, err)
			return 1
		}
		sig, err = keys.SignDilithium3(fp, &sk)
	case seedHex != "":
		seed, perr := keys.ParseSeedHex(seedHex)
		if perr != nil {
			fmt.Fprintln(errOut, perr)
			return 2
		}
		sig, err = keys.SignEd25519(fp, ed25519.NewKeyFromSeed(seed))
	default:
		store, serr := keys.OpenStore(s.cfg.Keys.Dir)
		if serr != nil {
			fmt.Fprintln(errOut, serr)
			return 1
		}
		priv, kerr := store.PrivateKey(signer, signerRole)
		if kerr != nil {
			fmt.Fprintln(errOut, kerr)
			return 1
		}
		sig, err = keys.SignEd25519(fp, priv)
	}
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	_, _ = fmt.Fprintln(out, sig)
	return 0
}

func cmdVerifySig(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("verify-sig", flag.ContinueOnError)
	fs.SetOutput(errOut)
	var vf valueFlags
	vf.add(fs)
	var issuerKey, dilithiumPub, sig string
	fs.StringVar(&issuerKey, "issuer-key", "", "Signer public key as ed25519:<base64>")
	fs.StringVar(&dilithiumPub, "dilithium-pub", "", "Dilithium3 public key file")
	fs.StringVar(&sig, "sig", "", "Signature (base64)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if (issuerKey == "") == (dilithiumPub == "") || sig == "" || fs.NArg() != 1 {
		fmt.Fprintln(errOut, "usage: fingerprint verify-sig [value flags] (--issuer-key ed25519:<b64> | --dilithium-pub <file>) --sig <b64> <file|->")
		return 2
	}
	s, err := vf.open()
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	fp, err := s.fingerprintOf(fs.Arg(0))
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}

	if dilithiumPub != "" {
		var pk mode3.PublicKey
		if err := readKeyFile(dilithiumPub, &pk); err != nil {
			fmt.Fprintln(errOut, err)
			return 1
		}
		err = keys.VerifyDilithium3(fp, &pk, sig)
	} else {
		pub, perr := keys.ParseIssuerKey(issuerKey)
		if perr != nil {
			fmt.Fprintln(errOut, perr)
			return 2
		}
		err = keys.VerifyEd25519(fp, pub, sig)
	}
	if err != nil {
		fmt.Fprintf(errOut, "INVALID: %v\n", err)
		return 1
	}
	_, _ = fmt.Fprintln(out, "OK")
	return 0
}

type binaryKey interface {
	UnmarshalBinary([]byte) error
}

// readKeyFile loads a base64-encoded key written by 'key dilithium-gen'.
func readKeyFile(path string, key binaryKey) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(string(b)))
	if err != nil {
		return fmt.Errorf("%s: invalid base64: %w", path, err)
	}
	if err := key.UnmarshalBinary(raw); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}
