// Package config loads the lightctl TOML configuration.
//
// Loading is three steps: Default() supplies every value, the file
// overrides what it sets, then normalize trims and fills blanks and
// Validate rejects what cannot work. Command-line flags are applied by the
// caller afterwards.
package config
