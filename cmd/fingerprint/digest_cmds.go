package main

import (
	"encoding/base64"
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/multiformats/go-multibase"

	"xdao.co/fingerprint/cidutil"
	"xdao.co/fingerprint/digest"
	"xdao.co/fingerprint/docvalue"
)

func cmdSum(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("sum", flag.ContinueOnError)
	fs.SetOutput(errOut)
	var vf valueFlags
	vf.add(fs)
	var keyHex string
	var output string
	fs.StringVar(&keyHex, "key-hex", "", "MAC key as hex (keyed digests only)")
	fs.StringVar(&output, "output", "hex", "Output encoding: hex, base64 or base32 (multibase)")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(errOut, "usage: fingerprint sum [value flags] [--key-hex <hex>] [--output hex|base64|base32] <file|->")
		return 2
	}
	s, err := vf.open()
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}

	var sum []byte
	if keyHex == "" {
		sum, err = s.fingerprintOf(fs.Arg(0))
	} else {
		sum, err = keyedSum(s, keyHex, fs.Arg(0))
	}
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}

	text, err := formatSum(sum, output)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 2
	}
	_, _ = fmt.Fprintln(out, text)
	return 0
}

func keyedSum(s *session, keyHex, path string) ([]byte, error) {
	key, err := hex.DecodeString(keyHex)
	if err != nil {
		return nil, fmt.Errorf("invalid --key-hex: %w", err)
	}
	h, err := s.alg.NewKeyedHash(key)
	if err != nil {
		return nil, err
	}
	b, err := s.canonical(path)
	if err != nil {
		return nil, err
	}
	h.Write(b)
	return h.Sum(nil), nil
}

func formatSum(sum []byte, output string) (string, error) {
	switch output {
	case "hex":
		return hex.EncodeToString(sum), nil
	case "base64":
		return base64.StdEncoding.EncodeToString(sum), nil
	case "base32":
		return multibase.Encode(multibase.Base32, sum)
	default:
		return "", fmt.Errorf("unknown --output %q", output)
	}
}

func cmdCID(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("cid", flag.ContinueOnError)
	fs.SetOutput(errOut)
	var vf valueFlags
	vf.add(fs)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(errOut, "usage: fingerprint cid [value flags] <file|->")
		return 2
	}
	s, err := vf.open()
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	sum, err := s.fingerprintOf(fs.Arg(0))
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	id, err := cidutil.FromSum(s.alg, sum)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	_, _ = fmt.Fprintln(out, id)
	return 0
}

func cmdEncode(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("encode", flag.ContinueOnError)
	fs.SetOutput(errOut)
	var vf valueFlags
	vf.add(fs)
	var raw bool
	fs.BoolVar(&raw, "raw", false, "Write the canonical bytes instead of hex")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(errOut, "usage: fingerprint encode [value flags] [--raw] <file|->")
		return 2
	}
	s, err := vf.open()
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	b, err := s.canonical(fs.Arg(0))
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	if raw {
		_, _ = out.Write(b)
		return 0
	}
	_, _ = fmt.Fprintln(out, hex.EncodeToString(b))
	return 0
}

func cmdConvert(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("convert", flag.ContinueOnError)
	fs.SetOutput(errOut)
	var format string
	var to string
	var outPath string
	fs.StringVar(&format, "format", "", "Input format: json, cbor or toml")
	fs.StringVar(&to, "to", "cbor", "Output format: cbor or json")
	fs.StringVar(&outPath, "out", "", "Output file (optional; default stdout)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(errOut, "usage: fingerprint convert [--format <in>] --to cbor|json [--out <file>] <file|->")
		return 2
	}

	doc, err := loadDocument(fs.Arg(0), format)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	var b []byte
	switch to {
	case "cbor":
		b, err = docvalue.EncodeCBOR(doc)
	case "json":
		b, err = docvalue.EncodeJSON(doc)
		b = append(b, '\n')
	default:
		fmt.Fprintf(errOut, "unknown --to %q\n", to)
		return 2
	}
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	if outPath == "" {
		_, _ = out.Write(b)
		return 0
	}
	if err := os.WriteFile(outPath, b, 0o644); err != nil {
		fmt.Fprintf(errOut, "write %s: %v\n", outPath, err)
		return 1
	}
	return 0
}

func cmdAlgs(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("algs", flag.ContinueOnError)
	fs.SetOutput(errOut)
	if err := fs.Parse(args); err != nil {
		return 2
	}

	headers := []string{"Name", "Multihash", "Bytes", "Keyed", "Crypto", "Description"}
	var rows [][]string
	for _, a := range digest.List() {
		code := "-"
		if a.Code != 0 {
			code = fmt.Sprintf("%#x", a.Code)
		}
		name := a.Name
		if name == digest.Default {
			name += " *"
		}
		rows = append(rows, []string{
			name,
			code,
			strconv.Itoa(a.Size),
			yesNo(a.NewKeyed != nil),
			yesNo(a.Cryptographic),
			a.Description,
		})
	}
	_, _ = fmt.Fprintln(out, renderTable(headers, rows, []columnAlignment{alignLeft, alignRight, alignRight}))
	return 0
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
