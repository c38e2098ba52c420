// Package config loads, normalizes, and validates reel's TOML configuration.
//
// Configuration is resolved from an explicit path, ~/.config/reel/config.toml,
// or ./reel.toml, in that order. All path fields are expanded (including ~)
// and made absolute during load. Provider credentials are intentionally not
// validated at load time; the provider that needs them fails fast with an
// actionable message at the first operation that requires them, so one
// misconfigured backend never blocks unrelated work.
package config
