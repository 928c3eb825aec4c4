package main

import (
	"fmt"
	"io"
	"os"
)

// stdin is read when an input path is "-".
var stdin io.Reader = os.Stdin

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		printUsage(errOut)
		return 2
	}

	switch args[0] {
	case "sum":
		return cmdSum(args[1:], out, errOut)
	case "cid":
		return cmdCID(args[1:], out, errOut)
	case "encode":
		return cmdEncode(args[1:], out, errOut)
	case "convert":
		return cmdConvert(args[1:], out, errOut)
	case "algs":
		return cmdAlgs(args[1:], out, errOut)
	case "put":
		return cmdPut(args[1:], out, errOut)
	case "get":
		return cmdGet(args[1:], out, errOut)
	case "verify":
		return cmdVerify(args[1:], out, errOut)
	case "export":
		return cmdExport(args[1:], out, errOut)
	case "import":
		return cmdImport(args[1:], out, errOut)
	case "sign":
		return cmdSign(args[1:], out, errOut)
	case "verify-sig":
		return cmdVerifySig(args[1:], out, errOut)
	case "key":
		return cmdKey(args[1:], out, errOut)
	case "config":
		return cmdConfig(args[1:], out, errOut)
	case "help", "-h", "--help":
		printUsage(out)
		return 0
	default:
		fmt.Fprintf(errOut, "unknown command: %s\n\n", args[0])
		printUsage(errOut)
		return 2
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "fingerprint: canonical fingerprints of structured documents")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  fingerprint sum [value flags] [--key-hex <hex>] [--output hex|base64|base32] <file|->")
	fmt.Fprintln(w, "  fingerprint cid [value flags] <file|->")
	fmt.Fprintln(w, "  fingerprint encode [value flags] [--raw] <file|->")
	fmt.Fprintln(w, "  fingerprint convert [--format <in>] --to cbor|json [--out <file>] <file|->")
	fmt.Fprintln(w, "  fingerprint algs")
	fmt.Fprintln(w, "  fingerprint put [value flags] [store flags] <file|->")
	fmt.Fprintln(w, "  fingerprint get [store flags] --cid <cid> [--out <file>]")
	fmt.Fprintln(w, "  fingerprint verify [value flags] [store flags] --cid <cid> [--stored] <file|->")
	fmt.Fprintln(w, "  fingerprint export [store flags] --out <bundle.tar> [--label name=cid ...] <cid> [<cid> ...]")
	fmt.Fprintln(w, "  fingerprint import [store flags] <bundle.tar>")
	fmt.Fprintln(w, "  fingerprint sign [value flags] (--signer <name> [--signer-role <role>] | --seed-hex <64hex> | --dilithium-key <file>) <file|->")
	fmt.Fprintln(w, "  fingerprint verify-sig [value flags] (--issuer-key ed25519:<b64> | --dilithium-pub <file>) --sig <b64> <file|->")
	fmt.Fprintln(w, "  fingerprint key init|derive|list|export|dilithium-gen ...")
	fmt.Fprintln(w, "  fingerprint config init [--path <file>]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Value flags:")
	fmt.Fprintln(w, "  --config <file>   configuration file (default ~/.config/fingerprint/config.toml)")
	fmt.Fprintln(w, "  --alg <name>      digest algorithm (see 'fingerprint algs')")
	fmt.Fprintln(w, "  --prefix <s>      domain separation prefix")
	fmt.Fprintln(w, "  --version <s>     wrap the document as (version, document)")
	fmt.Fprintln(w, "  --format <f>      json, cbor, toml or raw (default: from file extension, json for stdin)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Store flags:")
	fmt.Fprintln(w, "  --backend <name>  CAS backend (default from config)")
	fmt.Fprintln(w, "  --list-backends   list linked backends and exit")
	fmt.Fprintln(w, "  plus backend flags such as --localfs-dir and --grpc-target")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Notes:")
	fmt.Fprintln(w, "  - documents are parsed into a typed value tree; key order and whitespace do not matter")
	fmt.Fprintln(w, "  - --format raw fingerprints the file bytes as a single byte string")
	fmt.Fprintln(w, "  - put stores the canonical encoding; its CID equals 'fingerprint cid' of the same input")
}
