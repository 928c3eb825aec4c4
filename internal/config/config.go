package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"xdao.co/fingerprint/digest"
	"xdao.co/fingerprint/storage/casconfig"
)

// Fingerprint selects how values are digested.
type Fingerprint struct {
	// Algorithm is a digest registry name (see `fingerprint algs`).
	Algorithm string `toml:"algorithm"`
	// Prefix, when set, is written as a canonical string before every value.
	Prefix string `toml:"prefix"`
	// Version, when set, wraps every value as (version, value).
	Version string `toml:"version"`
}

// Store describes the CAS used by put/get/verify and by fingerprint-casd.
//
// The flat fields describe a single backend. Backends, when present, takes
// precedence and may list several.
type Store struct {
	Backend     string                    `toml:"backend"`
	Dir         string                    `toml:"dir"`
	GRPCTarget  string                    `toml:"grpc_target"`
	WritePolicy string                    `toml:"write_policy"`
	Backends    []casconfig.BackendConfig `toml:"backends"`
}

// Keys locates the signing keyring.
type Keys struct {
	Dir string `toml:"dir"`
}

// Server configures fingerprint-casd.
type Server struct {
	Listen      string `toml:"listen"`
	MaxMsgBytes int    `toml:"max_msg_bytes"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for the fingerprint tools.
type Config struct {
	Fingerprint Fingerprint `toml:"fingerprint"`
	Store       Store       `toml:"store"`
	Keys        Keys        `toml:"keys"`
	Server      Server      `toml:"server"`
	Logging     Logging     `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. It returns the
// config, the resolved path and whether that file existed. A missing file is
// not an error; defaults apply.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}
	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}
	projectPath, err := filepath.Abs(projectConfigName)
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	return defaultPath, false, nil
}

// Algorithm returns the configured digest.
func (c *Config) Algorithm() (digest.Algorithm, error) {
	return digest.Lookup(c.Fingerprint.Algorithm)
}

// StoreConfig returns the backend list to open. The flat [store] fields are
// used when no [[store.backends]] are given.
func (c *Config) StoreConfig() casconfig.Config {
	if len(c.Store.Backends) > 0 {
		return casconfig.Config{WritePolicy: c.Store.WritePolicy, Backends: c.Store.Backends}
	}
	b := casconfig.BackendConfig{Name: c.Store.Backend, Config: map[string]string{}}
	switch c.Store.Backend {
	case "localfs":
		b.Config["dir"] = c.Store.Dir
	case "grpc":
		b.Config["target"] = c.Store.GRPCTarget
	}
	return casconfig.Config{WritePolicy: c.Store.WritePolicy, Backends: []casconfig.BackendConfig{b}}
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to path.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
