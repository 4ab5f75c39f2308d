// Package config loads, normalizes, and validates fermata's TOML
// configuration. Defaults live in defaults.go; Load layers the user's
// config file on top of them.
package config
