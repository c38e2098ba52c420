package config

import (
	"errors"
	"fmt"
	"strings"
)

var knownProviders = map[string]struct{}{
	"mux": {},
	"s3":  {},
}

// Validate ensures the configuration is usable. Provider credentials are
// checked lazily by the provider itself so that one unconfigured backend
// does not block unrelated operations.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateProvider(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.VideosDir) == "" {
		return errors.New("paths.videos_dir must be set")
	}
	if strings.ContainsAny(c.Paths.RemoteFolder, `/\`) {
		return fmt.Errorf("paths.remote_folder %q must be a single directory name", c.Paths.RemoteFolder)
	}
	return nil
}

func (c *Config) validateProvider() error {
	if _, ok := knownProviders[c.Provider.Default]; !ok {
		return fmt.Errorf("provider.default %q is not a known provider (mux, s3)", c.Provider.Default)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format %q is not supported (console, json)", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q is not supported (debug, info, warn, error)", c.Logging.Level)
	}
	return nil
}
