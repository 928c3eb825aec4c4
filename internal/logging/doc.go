// Package logging builds the slog loggers used by the fingerprint binaries.
//
// Formats: "json" (ts/level/msg keys, UTC RFC 3339 timestamps), "console"
// (slog text with a short clock), or "auto", which picks console when the
// output is a terminal. Debug level adds file:line sources.
package logging
