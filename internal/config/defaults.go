package config

import (
	"github.com/teemow/toodledo/internal/instrumentation"
	"github.com/teemow/toodledo/internal/transport"
)

const (
	defaultBaseURL       = transport.DefaultBaseURL
	defaultLogLevel      = "info"
	defaultLogFormat     = "text"
	defaultWatchInterval = 60
	defaultMetricsAddr   = ":9090"
)

// Default returns a Config populated with defaults.
func Default() Config {
	return Config{
		Toodledo: Toodledo{
			BaseURL: defaultBaseURL,
		},
		Logging: Logging{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
		},
		Watch: Watch{
			IntervalSeconds: defaultWatchInterval,
			MetricsAddr:     defaultMetricsAddr,
		},
		Instrumentation: instrumentation.DefaultConfig(),
	}
}
