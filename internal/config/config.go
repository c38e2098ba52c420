package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and bind address configuration.
type Paths struct {
	// VideosDir is the directory scanned for source video files. Sidecar
	// JSON records live next to the files they describe.
	VideosDir string `toml:"videos_dir"`
	// RemoteFolder is the subdirectory of VideosDir holding sidecars for
	// remote-URL sources, which have no local file to sit next to.
	RemoteFolder string `toml:"remote_folder"`
	LogDir       string `toml:"log_dir"`
	// APIBind enables the watch-mode HTTP API when non-empty.
	APIBind string `toml:"api_bind"`
}

// Provider selects the default delivery backend for new assets.
type Provider struct {
	Default string `toml:"default"`
}

// Mux contains configuration for the Mux direct-upload backend.
type Mux struct {
	TokenID     string `toml:"token_id"`
	TokenSecret string `toml:"token_secret"`
	BaseURL     string `toml:"base_url"`
	// CORSOrigin is sent on direct-upload session creation; "*" by default.
	CORSOrigin     string `toml:"cors_origin"`
	RequestTimeout int    `toml:"request_timeout"`
}

// S3 contains configuration for S3-compatible object-store backends
// (AWS S3, Backblaze B2, MinIO).
type S3 struct {
	Endpoint        string `toml:"endpoint"`
	Region          string `toml:"region"`
	Bucket          string `toml:"bucket"`
	AccessKeyID     string `toml:"access_key_id"`
	SecretAccessKey string `toml:"secret_access_key"`
	// PublicBaseURL overrides the derived playback URL prefix when the
	// bucket is fronted by a CDN.
	PublicBaseURL string `toml:"public_base_url"`
	ForcePathStyle bool  `toml:"force_path_style"`
}

// Throttle contains pacing configuration for provider job-creation calls.
type Throttle struct {
	// MinIntervalMS is the minimum delay between dispatched job-creation
	// calls to one provider. Raw byte uploads bypass the throttle.
	MinIntervalMS int `toml:"min_interval_ms"`
}

// Workflow contains lifecycle engine timing configuration.
type Workflow struct {
	// PollIntervalMS is the delay between provider status polls while an
	// asset is uploading or processing.
	PollIntervalMS int `toml:"poll_interval_ms"`
	// ErrorRetryInterval is the delay in seconds before the watch loop
	// retries after a scan-level failure.
	ErrorRetryInterval int `toml:"error_retry_interval"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for reel.
//
// Configuration sections by subsystem:
//   - Paths: videos directory, remote sidecar folder, logs, API bind
//   - Provider: default delivery backend for new assets
//   - Mux: direct-upload backend credentials and endpoints
//   - S3: object-store backend credentials and endpoints
//   - Throttle: job-creation pacing
//   - Workflow: poll intervals
//   - Logging: log format and level
type Config struct {
	Paths    Paths    `toml:"paths"`
	Provider Provider `toml:"provider"`
	Mux      Mux      `toml:"mux"`
	S3       S3       `toml:"s3"`
	Throttle Throttle `toml:"throttle"`
	Workflow Workflow `toml:"workflow"`
	Logging  Logging  `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration
// file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/reel/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized. The second return is
// the resolved path and the third reports whether a file existed there.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("reel.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories the daemon needs at runtime.
func (c *Config) EnsureDirectories() error {
	dirs := []string{
		c.Paths.VideosDir,
		filepath.Join(c.Paths.VideosDir, c.Paths.RemoteFolder),
		c.Paths.LogDir,
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// RemoteSidecarDir returns the directory holding sidecars for remote sources.
func (c *Config) RemoteSidecarDir() string {
	return filepath.Join(c.Paths.VideosDir, c.Paths.RemoteFolder)
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
