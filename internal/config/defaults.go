package config

const (
	defaultVideosDir          = "~/videos"
	defaultRemoteFolder       = "remote"
	defaultLogDir             = "~/.local/share/reel/logs"
	defaultProvider           = "mux"
	defaultMuxBaseURL         = "https://api.mux.com"
	defaultMuxCORSOrigin      = "*"
	defaultMuxRequestTimeout  = 30
	defaultS3Region           = "us-east-1"
	defaultThrottleIntervalMS = 1000
	defaultPollIntervalMS     = 1000
	defaultErrorRetrySeconds  = 10
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			VideosDir:    defaultVideosDir,
			RemoteFolder: defaultRemoteFolder,
			LogDir:       defaultLogDir,
		},
		Provider: Provider{
			Default: defaultProvider,
		},
		Mux: Mux{
			BaseURL:        defaultMuxBaseURL,
			CORSOrigin:     defaultMuxCORSOrigin,
			RequestTimeout: defaultMuxRequestTimeout,
		},
		S3: S3{
			Region: defaultS3Region,
		},
		Throttle: Throttle{
			MinIntervalMS: defaultThrottleIntervalMS,
		},
		Workflow: Workflow{
			PollIntervalMS:     defaultPollIntervalMS,
			ErrorRetryInterval: defaultErrorRetrySeconds,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
