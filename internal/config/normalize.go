package config

import (
	"fmt"
	"strings"
)

// normalize expands path fields and trims string values so the rest of the
// codebase never has to re-clean configuration.
func (c *Config) normalize() error {
	var err error
	if c.Paths.VideosDir, err = expandPath(strings.TrimSpace(c.Paths.VideosDir)); err != nil {
		return fmt.Errorf("paths.videos_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}

	c.Paths.RemoteFolder = strings.Trim(strings.TrimSpace(c.Paths.RemoteFolder), "/")
	if c.Paths.RemoteFolder == "" {
		c.Paths.RemoteFolder = defaultRemoteFolder
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)

	c.Provider.Default = strings.ToLower(strings.TrimSpace(c.Provider.Default))
	if c.Provider.Default == "" {
		c.Provider.Default = defaultProvider
	}

	c.Mux.TokenID = strings.TrimSpace(c.Mux.TokenID)
	c.Mux.TokenSecret = strings.TrimSpace(c.Mux.TokenSecret)
	c.Mux.BaseURL = strings.TrimRight(strings.TrimSpace(c.Mux.BaseURL), "/")
	if c.Mux.BaseURL == "" {
		c.Mux.BaseURL = defaultMuxBaseURL
	}
	if strings.TrimSpace(c.Mux.CORSOrigin) == "" {
		c.Mux.CORSOrigin = defaultMuxCORSOrigin
	}
	if c.Mux.RequestTimeout <= 0 {
		c.Mux.RequestTimeout = defaultMuxRequestTimeout
	}

	c.S3.Endpoint = strings.TrimRight(strings.TrimSpace(c.S3.Endpoint), "/")
	c.S3.Region = strings.TrimSpace(c.S3.Region)
	if c.S3.Region == "" {
		c.S3.Region = defaultS3Region
	}
	c.S3.Bucket = strings.TrimSpace(c.S3.Bucket)
	c.S3.AccessKeyID = strings.TrimSpace(c.S3.AccessKeyID)
	c.S3.SecretAccessKey = strings.TrimSpace(c.S3.SecretAccessKey)
	c.S3.PublicBaseURL = strings.TrimRight(strings.TrimSpace(c.S3.PublicBaseURL), "/")

	if c.Throttle.MinIntervalMS <= 0 {
		c.Throttle.MinIntervalMS = defaultThrottleIntervalMS
	}
	if c.Workflow.PollIntervalMS <= 0 {
		c.Workflow.PollIntervalMS = defaultPollIntervalMS
	}
	if c.Workflow.ErrorRetryInterval <= 0 {
		c.Workflow.ErrorRetryInterval = defaultErrorRetrySeconds
	}

	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}

	return nil
}
