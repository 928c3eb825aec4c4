// Package config loads the TOML configuration shared by the fingerprint CLI
// and fingerprint-casd.
//
// Lookup order when no path is given: ~/.config/fingerprint/config.toml, then
// ./fingerprint.toml. A missing file yields Default(). Values are normalized
// (paths expanded, names lowercased) and validated before Load returns.
package config
