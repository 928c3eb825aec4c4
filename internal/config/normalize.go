package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	c.normalizeFingerprint()
	if err := c.normalizeStore(); err != nil {
		return err
	}
	var err error
	if c.Keys.Dir, err = expandPath(strings.TrimSpace(c.Keys.Dir)); err != nil {
		return fmt.Errorf("keys.dir: %w", err)
	}
	c.Server.Listen = strings.TrimSpace(c.Server.Listen)
	if c.Server.Listen == "" {
		c.Server.Listen = defaultListen
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizeFingerprint() {
	c.Fingerprint.Algorithm = strings.ToLower(strings.TrimSpace(c.Fingerprint.Algorithm))
	if c.Fingerprint.Algorithm == "" {
		c.Fingerprint.Algorithm = Default().Fingerprint.Algorithm
	}
}

func (c *Config) normalizeStore() error {
	c.Store.Backend = strings.ToLower(strings.TrimSpace(c.Store.Backend))
	if c.Store.Backend == "" {
		c.Store.Backend = defaultBackend
	}
	c.Store.WritePolicy = strings.ToLower(strings.TrimSpace(c.Store.WritePolicy))
	if c.Store.WritePolicy == "" {
		c.Store.WritePolicy = defaultWritePolicy
	}
	c.Store.GRPCTarget = strings.TrimSpace(c.Store.GRPCTarget)

	var err error
	if c.Store.Dir, err = expandPath(strings.TrimSpace(c.Store.Dir)); err != nil {
		return fmt.Errorf("store.dir: %w", err)
	}
	for i := range c.Store.Backends {
		b := &c.Store.Backends[i]
		b.Name = strings.ToLower(strings.TrimSpace(b.Name))
		if dir, ok := b.Config["dir"]; ok {
			if b.Config["dir"], err = expandPath(strings.TrimSpace(dir)); err != nil {
				return fmt.Errorf("store.backends[%d].config.dir: %w", i, err)
			}
		}
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
