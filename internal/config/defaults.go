package config

const (
	defaultDataDir              = "~/.local/share/stockscan"
	defaultLogDir               = "~/.local/share/stockscan/logs"
	defaultAPIBaseURL           = "http://127.0.0.1:8000"
	defaultAPITimeoutSeconds    = 10
	defaultCheckIntervalSeconds = 15
	defaultCheckTimeoutSeconds  = 3
	defaultQueueMaxEntries      = 5000
	defaultProjectIDMaxDigits   = 9
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		API: API{
			BaseURL:        defaultAPIBaseURL,
			TimeoutSeconds: defaultAPITimeoutSeconds,
		},
		Network: Network{
			CheckIntervalSeconds: defaultCheckIntervalSeconds,
			CheckTimeoutSeconds:  defaultCheckTimeoutSeconds,
			NetlinkEnabled:       true,
		},
		Queue: Queue{
			MaxEntries:       defaultQueueMaxEntries,
			FlushOnReconnect: true,
		},
		Scan: Scan{
			ProjectIDMaxDigits: defaultProjectIDMaxDigits,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
