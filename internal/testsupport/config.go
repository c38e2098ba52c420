package testsupport

import (
	"path/filepath"
	"testing"

	"reel/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test
// and timing tuned for fast test runs.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.VideosDir = filepath.Join(base, "videos")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.APIBind = "127.0.0.1:0"
	cfg.Throttle.MinIntervalMS = 5
	cfg.Workflow.PollIntervalMS = 5
	cfg.Workflow.ErrorRetryInterval = 1

	for _, opt := range opts {
		opt(&cfg)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return &cfg
}

// WithProvider sets the default provider on the test config.
func WithProvider(name string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Provider.Default = name
	}
}

// WithMuxCredentials sets placeholder Mux credentials on the test config.
func WithMuxCredentials() ConfigOption {
	return func(cfg *config.Config) {
		cfg.Mux.TokenID = "test-token"
		cfg.Mux.TokenSecret = "test-secret"
	}
}
