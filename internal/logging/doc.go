// Package logging builds the slog loggers used across fermata and holds
// the shared structured field vocabulary. Console output favors a compact
// human-readable line format; JSON output is line-delimited slog JSON.
package logging
