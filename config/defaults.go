package config

import "time"

const (
	defaultURL              = "ws://127.0.0.1:1804/"
	defaultLogLevel         = "warn"
	defaultHandshakeTimeout = 2 * time.Second
	defaultSendQueue        = 1
	defaultMaxFrameBytes    = 16 << 20
	defaultRetryDelay       = 100 * time.Millisecond
	defaultService          = "controlcenter"
	defaultBalancer         = "round_robin"
	defaultSimulateListen   = "127.0.0.1:1804"
	defaultSimulateDevices  = 2
)

// Default returns a Config populated with the built-in defaults.
func Default() Config {
	return Config{
		URL:      defaultURL,
		LogLevel: defaultLogLevel,
		Transport: Transport{
			HandshakeTimeout: Duration{defaultHandshakeTimeout},
			SendQueue:        defaultSendQueue,
			MaxFrameBytes:    defaultMaxFrameBytes,
		},
		Calls: Calls{
			RetryDelay: Duration{defaultRetryDelay},
		},
		Discovery: Discovery{
			Service:  defaultService,
			Balancer: defaultBalancer,
		},
		Simulate: Simulate{
			Listen:  defaultSimulateListen,
			Devices: defaultSimulateDevices,
		},
	}
}
