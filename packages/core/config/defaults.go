package config

const (
	// DefaultTimeoutMs is the request timeout used when none is configured
	DefaultTimeoutMs = 30000
	// DefaultHistorySize is the number of history entries kept on disk
	DefaultHistorySize = 1000
	// DefaultHistoryBodyLimit is the number of response body bytes kept per history entry
	DefaultHistoryBodyLimit = 4096
)

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		StateDir:         ".spag",
		DefaultEndpoint:  "",
		RequestDir:       ".",
		Timeout:          DefaultTimeoutMs,
		FollowRedirects:  BoolPtr(true),
		MaxRedirects:     10,
		ValidateSSL:      BoolPtr(true),
		Proxy:            "",
		HistorySize:      DefaultHistorySize,
		HistoryBodyLimit: DefaultHistoryBodyLimit,
		NoColor:          BoolPtr(false),
		LogLevel:         "warn",
		LogFile:          "",
	}
}
