package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"xdao.co/fingerprint/digest"
	"xdao.co/fingerprint/docvalue"
	"xdao.co/fingerprint/fingerprint"
	"xdao.co/fingerprint/internal/config"
)

const formatRaw = "raw"

// valueFlags are shared by every command that fingerprints a document.
type valueFlags struct {
	configPath string
	alg        string
	prefix     string
	version    string
	format     string
}

func (f *valueFlags) add(fs *flag.FlagSet) {
	fs.StringVar(&f.configPath, "config", "", "Configuration file")
	fs.StringVar(&f.alg, "alg", "", "Digest algorithm (overrides config)")
	fs.StringVar(&f.prefix, "prefix", "", "Domain separation prefix (overrides config)")
	fs.StringVar(&f.version, "version", "", "Version to wrap the document with (overrides config)")
	fs.StringVar(&f.format, "format", "", "Input format: json, cbor, toml or raw")
}

// session is the resolved configuration for one command.
type session struct {
	cfg     *config.Config
	alg     digest.Algorithm
	prefix  string
	version string
	format  string
}

func (f *valueFlags) open() (*session, error) {
	cfg, _, _, err := config.Load(f.configPath)
	if err != nil {
		return nil, err
	}
	s := &session{
		cfg:     cfg,
		prefix:  cfg.Fingerprint.Prefix,
		version: cfg.Fingerprint.Version,
		format:  strings.ToLower(strings.TrimSpace(f.format)),
	}
	name := cfg.Fingerprint.Algorithm
	if f.alg != "" {
		name = strings.ToLower(f.alg)
	}
	if s.alg, err = digest.Lookup(name); err != nil {
		return nil, err
	}
	if f.prefix != "" {
		s.prefix = f.prefix
	}
	if f.version != "" {
		s.version = f.version
	}
	return s, nil
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	return b, nil
}

func inputFormat(path, explicit string) (string, error) {
	if explicit != "" {
		switch explicit {
		case formatRaw, string(docvalue.FormatJSON), string(docvalue.FormatCBOR), string(docvalue.FormatTOML):
			return explicit, nil
		}
		return "", fmt.Errorf("unknown --format %q", explicit)
	}
	if path == "-" {
		return string(docvalue.FormatJSON), nil
	}
	f, err := docvalue.FormatFromPath(path)
	if err != nil {
		return "", fmt.Errorf("%v (use --format)", err)
	}
	return string(f), nil
}

// loadDocument parses path into a document value.
func loadDocument(path, format string) (docvalue.Value, error) {
	f, err := inputFormat(path, format)
	if err != nil {
		return nil, err
	}
	if f == formatRaw {
		return nil, fmt.Errorf("raw input is not a document")
	}
	b, err := readInput(path)
	if err != nil {
		return nil, err
	}
	return docvalue.Parse(docvalue.Format(f), b)
}

// canonical returns the bytes that are hashed for path: the encoded prefix
// (if any) followed by the encoded value, wrapped with the version if set.
func (s *session) canonical(path string) ([]byte, error) {
	f, err := inputFormat(path, s.format)
	if err != nil {
		return nil, err
	}
	if f == formatRaw {
		b, err := readInput(path)
		if err != nil {
			return nil, err
		}
		return marshalWith(s, b)
	}
	doc, err := loadDocument(path, f)
	if err != nil {
		return nil, err
	}
	return marshalWith(s, doc)
}

func marshalWith[T any](s *session, v T) ([]byte, error) {
	var buf bytes.Buffer
	if s.prefix != "" {
		fingerprint.NewWriter(&buf).String(s.prefix)
	}
	var err error
	if s.version != "" {
		err = fingerprint.Encode(&buf, fingerprint.Versioned[T]{Version: s.version, Value: v})
	} else {
		err = fingerprint.Encode(&buf, v)
	}
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// fingerprintOf hashes the canonical bytes of path.
func (s *session) fingerprintOf(path string) ([]byte, error) {
	b, err := s.canonical(path)
	if err != nil {
		return nil, err
	}
	h := s.alg.New()
	h.Write(b)
	return h.Sum(nil), nil
}

// stringList collects repeated flag values.
type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }
func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}
