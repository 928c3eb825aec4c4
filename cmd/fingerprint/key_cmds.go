package main

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"xdao.co/fingerprint/internal/config"
	"xdao.co/fingerprint/keys"
)

func cmdKey(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(errOut, "usage: fingerprint key init|derive|list|export|dilithium-gen ...")
		return 2
	}
	switch args[0] {
	case "init":
		return cmdKeyInit(args[1:], out, errOut)
	case "derive":
		return cmdKeyDerive(args[1:], out, errOut)
	case "list":
		return cmdKeyList(args[1:], out, errOut)
	case "export":
		return cmdKeyExport(args[1:], out, errOut)
	case "dilithium-gen":
		return cmdKeyDilithiumGen(args[1:], out, errOut)
	default:
		fmt.Fprintf(errOut, "unknown key command: %s\n", args[0])
		return 2
	}
}

// keyStoreFlags resolves the key directory from --keys-dir or the config file.
type keyStoreFlags struct {
	configPath string
	dir        string
}

func (k *keyStoreFlags) add(fs *flag.FlagSet) {
	fs.StringVar(&k.configPath, "config", "", "Configuration file")
	fs.StringVar(&k.dir, "keys-dir", "", "Key store directory (overrides config)")
}

func (k *keyStoreFlags) open() (*keys.Store, error) {
	if k.dir != "" {
		dir, err := config.ExpandPath(k.dir)
		if err != nil {
			return nil, err
		}
		return keys.OpenStore(dir)
	}
	cfg, _, _, err := config.Load(k.configPath)
	if err != nil {
		return nil, err
	}
	return keys.OpenStore(cfg.Keys.Dir)
}

func cmdKeyInit(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("key init", flag.ContinueOnError)
	fs.SetOutput(errOut)
	var kf keyStoreFlags
	kf.add(fs)
	var name, seedHex string
	var force bool
	fs.StringVar(&name, "name", "", "Key name")
	fs.StringVar(&seedHex, "seed-hex", "", "Root seed as 64 hex chars (default: random)")
	fs.BoolVar(&force, "force", false, "Overwrite an existing key")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if name == "" || fs.NArg() != 0 {
		fmt.Fprintln(errOut, "usage: fingerprint key init --name <name> [--seed-hex <64hex>] [--force]")
		return 2
	}

	seed := make([]byte, ed25519.SeedSize)
	if seedHex != "" {
		var err error
		if seed, err = keys.ParseSeedHex(seedHex); err != nil {
			fmt.Fprintln(errOut, err)
			return 2
		}
	} else if _, err := rand.Read(seed); err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}

	store, err := kf.open()
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	issuer, err := store.Init(name, seed, force)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	_, _ = fmt.Fprintln(out, issuer)
	return 0
}

func cmdKeyDerive(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("key derive", flag.ContinueOnError)
	fs.SetOutput(errOut)
	var kf keyStoreFlags
	kf.add(fs)
	var from, role string
	var force bool
	fs.StringVar(&from, "from", "", "Root key name")
	fs.StringVar(&role, "role", "", "Role to derive")
	fs.BoolVar(&force, "force", false, "Overwrite an existing role key")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if from == "" || role == "" || fs.NArg() != 0 {
		fmt.Fprintln(errOut, "usage: fingerprint key derive --from <name> --role <role> [--force]")
		return 2
	}
	store, err := kf.open()
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	issuer, err := store.Derive(from, role, force)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	_, _ = fmt.Fprintln(out, issuer)
	return 0
}

func cmdKeyList(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("key list", flag.ContinueOnError)
	fs.SetOutput(errOut)
	var kf keyStoreFlags
	kf.add(fs)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	store, err := kf.open()
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	entries, err := store.List()
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	if len(entries) == 0 {
		_, _ = fmt.Fprintln(out, "No keys.")
		return 0
	}

	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		seed, err := store.Seed(e.Name, "")
		issuer := "?"
		if err == nil {
			issuer = keys.IssuerKeyFromSeed(seed)
		}
		roles := strings.Join(e.Roles, ", ")
		if roles == "" {
			roles = "-"
		}
		rows = append(rows, []string{e.Name, roles, issuer})
	}
	_, _ = fmt.Fprint(out, renderTable([]string{"Name", "Roles", "Issuer Key"}, rows, []columnAlignment{alignLeft, alignLeft, alignLeft}))
	return 0
}

func cmdKeyExport(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("key export", flag.ContinueOnError)
	fs.SetOutput(errOut)
	var kf keyStoreFlags
	kf.add(fs)
	var name, role string
	fs.StringVar(&name, "name", "", "Key name")
	fs.StringVar(&role, "role", "", "Derived role (optional)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if name == "" || fs.NArg() != 0 {
		fmt.Fprintln(errOut, "usage: fingerprint key export --name <name> [--role <role>]")
		return 2
	}
	store, err := kf.open()
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	seed, err := store.Seed(name, role)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	_, _ = fmt.Fprintln(out, keys.IssuerKeyFromSeed(seed))
	return 0
}

// cmdKeyDilithiumGen writes <out>.pub and <out>.key as base64 text.
func cmdKeyDilithiumGen(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("key dilithium-gen", flag.ContinueOnError)
	fs.SetOutput(errOut)
	var prefix string
	fs.StringVar(&prefix, "out", "", "Output path prefix")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if prefix == "" || fs.NArg() != 0 {
		fmt.Fprintln(errOut, "usage: fingerprint key dilithium-gen --out <prefix>")
		return 2
	}

	pk, sk, err := keys.GenerateDilithium3Keypair(rand.Reader)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	pkb, err := pk.MarshalBinary()
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	skb, err := sk.MarshalBinary()
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	if err := os.WriteFile(prefix+".pub", []byte(base64.StdEncoding.EncodeToString(pkb)+"\n"), 0o644); err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	if err := os.WriteFile(prefix+".key", []byte(base64.StdEncoding.EncodeToString(skb)+"\n"), 0o600); err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	_, _ = fmt.Fprintf(out, "%s.pub\n%s.key\n", prefix, prefix)
	return 0
}

func cmdConfig(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 || args[0] != "init" {
		fmt.Fprintln(errOut, "usage: fingerprint config init [--path <file>]")
		return 2
	}
	fs := flag.NewFlagSet("config init", flag.ContinueOnError)
	fs.SetOutput(errOut)
	var path string
	fs.StringVar(&path, "path", "", "Where to write the sample config")
	if err := fs.Parse(args[1:]); err != nil {
		return 2
	}
	if path == "" {
		p, err := config.DefaultConfigPath()
		if err != nil {
			fmt.Fprintln(errOut, err)
			return 1
		}
		path = p
	}
	if err := config.CreateSample(path); err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	_, _ = fmt.Fprintln(out, path)
	return 0
}
