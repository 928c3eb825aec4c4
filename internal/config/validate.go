package config

import (
	"errors"
	"fmt"

	"xdao.co/fingerprint/digest"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateFingerprint(); err != nil {
		return err
	}
	if err := c.validateStore(); err != nil {
		return err
	}
	if c.Server.MaxMsgBytes < 0 {
		return errors.New("server.max_msg_bytes must not be negative")
	}
	return c.validateLogging()
}

func (c *Config) validateFingerprint() error {
	if _, err := digest.Lookup(c.Fingerprint.Algorithm); err != nil {
		return fmt.Errorf("fingerprint.algorithm: %w", err)
	}
	return nil
}

func (c *Config) validateStore() error {
	switch c.Store.WritePolicy {
	case "first", "all":
	default:
		return fmt.Errorf("store.write_policy must be \"first\" or \"all\", got %q", c.Store.WritePolicy)
	}
	if len(c.Store.Backends) > 0 {
		return c.StoreConfig().Validate()
	}
	switch c.Store.Backend {
	case "localfs":
		if c.Store.Dir == "" {
			return errors.New("store.dir must be set for the localfs backend")
		}
	case "grpc":
		if c.Store.GRPCTarget == "" {
			return errors.New("store.grpc_target must be set for the grpc backend")
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "auto", "console", "json":
	default:
		return fmt.Errorf("logging.format must be auto, console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn or error, got %q", c.Logging.Level)
	}
	return nil
}
