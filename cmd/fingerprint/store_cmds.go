package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ipfs/go-cid"

	"xdao.co/fingerprint/cidutil"
	"xdao.co/fingerprint/storage"
	"xdao.co/fingerprint/storage/bundle"
	"xdao.co/fingerprint/storage/casregistry"

	_ "xdao.co/fingerprint/storage/grpccas"
	_ "xdao.co/fingerprint/storage/ipfs"
	_ "xdao.co/fingerprint/storage/localfs"
)

type storeFlags struct {
	backend      string
	listBackends bool
}

func (c *storeFlags) add(fs *flag.FlagSet) {
	fs.StringVar(&c.backend, "backend", "", "CAS backend name (default from config)")
	fs.BoolVar(&c.listBackends, "list-backends", false, "List supported backends and exit")
	casregistry.RegisterFlags(fs, casregistry.UsageCLI)
}

// openCAS opens --backend when given, otherwise the store described by the
// config file.
func (c *storeFlags) openCAS(s *session) (storage.CAS, func() error, error) {
	sc := s.cfg.StoreConfig()
	if c.backend == "" {
		return sc.Open(casregistry.UsageCLI, "", s.alg)
	}
	opts := casregistry.Options{Algorithm: s.alg}
	for _, b := range sc.Backends {
		if b.Name == c.backend || b.ID == c.backend {
			opts.Config = b.Config
			break
		}
	}
	return casregistry.Open(c.backend, casregistry.UsageCLI, opts)
}

func printBackends(w io.Writer) {
	for _, b := range casregistry.List(casregistry.UsageCLI) {
		if b.Description == "" {
			_, _ = fmt.Fprintf(w, "%s\n", b.Name)
			continue
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\n", b.Name, b.Description)
	}
}

// storeCommand parses the flags shared by the store commands. extra registers
// command-specific flags. ok is false when the command has already finished.
func storeCommand(name string, args []string, out, errOut io.Writer, extra func(*flag.FlagSet)) (fs *flag.FlagSet, s *session, cas storage.CAS, closeFn func() error, code int, ok bool) {
	fs = flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(errOut)
	var vf valueFlags
	vf.add(fs)
	var sf storeFlags
	sf.add(fs)
	if extra != nil {
		extra(fs)
	}
	if err := fs.Parse(args); err != nil {
		return nil, nil, nil, nil, 2, false
	}
	if sf.listBackends {
		printBackends(out)
		return nil, nil, nil, nil, 0, false
	}
	s, err := vf.open()
	if err != nil {
		fmt.Fprintln(errOut, err)
		return nil, nil, nil, nil, 1, false
	}
	cas, closeFn, err = sf.openCAS(s)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return nil, nil, nil, nil, 1, false
	}
	if closeFn == nil {
		closeFn = func() error { return nil }
	}
	return fs, s, cas, closeFn, 0, true
}

func cmdPut(args []string, out io.Writer, errOut io.Writer) int {
	fs, s, cas, closeFn, code, ok := storeCommand("put", args, out, errOut, nil)
	if !ok {
		return code
	}
	defer closeFn()
	if fs.NArg() != 1 {
		fmt.Fprintln(errOut, "usage: fingerprint put [value flags] [store flags] <file|->")
		return 2
	}

	b, err := s.canonical(fs.Arg(0))
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	id, err := cas.Put(b)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	_, _ = fmt.Fprintln(out, id.String())
	return 0
}

func cmdGet(args []string, out io.Writer, errOut io.Writer) int {
	var cidStr string
	var outPath string
	fs, _, cas, closeFn, code, ok := storeCommand("get", args, out, errOut, func(fs *flag.FlagSet) {
		fs.StringVar(&cidStr, "cid", "", "CID to fetch")
		fs.StringVar(&outPath, "out", "", "Output file (optional; default stdout)")
	})
	if !ok {
		return code
	}
	defer closeFn()
	if cidStr == "" || fs.NArg() != 0 {
		fmt.Fprintln(errOut, "usage: fingerprint get [store flags] --cid <cid> [--out <file>]")
		return 2
	}

	id, err := cidutil.Parse(cidStr)
	if err != nil {
		fmt.Fprintln(errOut, storage.ErrInvalidCID)
		return 1
	}
	b, err := cas.Get(id)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	if outPath == "" {
		_, _ = out.Write(b)
		return 0
	}
	if err := os.WriteFile(outPath, b, 0o600); err != nil {
		fmt.Fprintf(errOut, "write %s: %v\n", outPath, err)
		return 1
	}
	return 0
}

// cmdVerify checks that a document's fingerprint CID equals --cid. With
// --stored it also checks the store holds exactly the document's encoding.
func cmdVerify(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("verify", flag.ContinueOnError)
	fs.SetOutput(errOut)
	var vf valueFlags
	vf.add(fs)
	var sf storeFlags
	sf.add(fs)
	var cidStr string
	var stored bool
	fs.StringVar(&cidStr, "cid", "", "Expected CID")
	fs.BoolVar(&stored, "stored", false, "Also compare with the bytes held in the store")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if cidStr == "" || fs.NArg() != 1 {
		fmt.Fprintln(errOut, "usage: fingerprint verify [value flags] [store flags] --cid <cid> [--stored] <file|->")
		return 2
	}
	want, err := cidutil.Parse(cidStr)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 2
	}

	// The CID names its own digest, which wins over config and --alg.
	if vf.alg == "" {
		a, err := cidutil.Algorithm(want)
		if err != nil {
			fmt.Fprintln(errOut, err)
			return 1
		}
		vf.alg = a.Name
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
	if err := cidutil.Verify(want, b); err != nil {
		fmt.Fprintf(errOut, "MISMATCH: %v\n", err)
		return 1
	}

	if stored {
		cas, closeFn, err := sf.openCAS(s)
		if err != nil {
			fmt.Fprintln(errOut, err)
			return 1
		}
		defer closeFn()
		got, err := cas.Get(want)
		if err != nil {
			fmt.Fprintln(errOut, err)
			return 1
		}
		if string(got) != string(b) {
			fmt.Fprintf(errOut, "MISMATCH: %v\n", storage.ErrCIDMismatch)
			return 1
		}
	}
	_, _ = fmt.Fprintln(out, "OK")
	return 0
}

func cmdExport(args []string, out io.Writer, errOut io.Writer) int {
	var outPath string
	var labels stringList
	var noIndex bool
	fs, _, cas, closeFn, code, ok := storeCommand("export", args, out, errOut, func(fs *flag.FlagSet) {
		fs.StringVar(&outPath, "out", "", "Bundle file to write (default stdout)")
		fs.Var(&labels, "label", "name=cid label recorded in the index (repeatable)")
		fs.BoolVar(&noIndex, "no-index", false, "Omit index.cbor")
	})
	if !ok {
		return code
	}
	defer closeFn()
	if fs.NArg() == 0 {
		fmt.Fprintln(errOut, "usage: fingerprint export [store flags] --out <bundle.tar> [--label name=cid ...] <cid> [<cid> ...]")
		return 2
	}

	ids := make([]cid.Cid, 0, fs.NArg())
	for _, a := range fs.Args() {
		id, err := cidutil.Parse(a)
		if err != nil {
			fmt.Fprintln(errOut, err)
			return 2
		}
		ids = append(ids, id)
	}
	opts := bundle.ExportOptions{IncludeIndex: !noIndex, Labels: map[string]cid.Cid{}}
	for _, l := range labels {
		name, value, found := strings.Cut(l, "=")
		if !found || name == "" {
			fmt.Fprintf(errOut, "invalid --label %q (want name=cid)\n", l)
			return 2
		}
		id, err := cidutil.Parse(value)
		if err != nil {
			fmt.Fprintln(errOut, err)
			return 2
		}
		opts.Labels[name] = id
	}

	w := out
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			fmt.Fprintln(errOut, err)
			return 1
		}
		defer f.Close()
		w = f
	}
	if err := bundle.Export(w, cas, ids, opts); err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	return 0
}

func cmdImport(args []string, out io.Writer, errOut io.Writer) int {
	var ignoreUnknown bool
	fs, _, cas, closeFn, code, ok := storeCommand("import", args, out, errOut, func(fs *flag.FlagSet) {
		fs.BoolVar(&ignoreUnknown, "ignore-unknown", false, "Skip entries that are not blocks")
	})
	if !ok {
		return code
	}
	defer closeFn()
	if fs.NArg() != 1 {
		fmt.Fprintln(errOut, "usage: fingerprint import [store flags] <bundle.tar>")
		return 2
	}

	r := stdin
	if p := fs.Arg(0); p != "-" {
		f, err := os.Open(p)
		if err != nil {
			fmt.Fprintln(errOut, err)
			return 1
		}
		defer f.Close()
		r = f
	}
	ids, err := bundle.ImportWithOptions(r, cas, bundle.ImportOptions{IgnoreUnknown: ignoreUnknown})
	for _, id := range ids {
		_, _ = fmt.Fprintln(out, id)
	}
	if err != nil {
		if errors.Is(err, storage.ErrCIDMismatch) {
			fmt.Fprintf(errOut, "%v (is the store configured for the bundle's algorithm?)\n", err)
		} else {
			fmt.Fprintln(errOut, err)
		}
		return 1
	}
	return 0
}
