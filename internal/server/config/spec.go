package config

// ServerConfig is the root configuration for wirekv-server.
type ServerConfig struct {
	Server  ServerSection  `koanf:"server"`
	Metrics MetricsSection `koanf:"metrics"`
	Log     LogSection     `koanf:"log"`
}

// ServerSection configures the wire protocol listener.
type ServerSection struct {
	// Addr is the TCP listen address.
	Addr string `koanf:"addr"`

	// Decoder selects the decoder implementation per connection:
	// "stream" (the incremental state machine, default) or "batch"
	// (the legacy fixed-chunk decoder). Settable via the
	// WIREKV_SERVER_DECODER environment variable.
	Decoder string `koanf:"decoder"`

	// LegacyAbort restores the historical behavior of closing the
	// connection on a command-validation failure instead of replying
	// with a protocol error and continuing.
	LegacyAbort bool `koanf:"legacy_abort"`

	// RateLimit is the maximum number of commands per second per
	// connection. Zero disables rate limiting.
	RateLimit int `koanf:"rate_limit"`
}

// MetricsSection configures the Prometheus endpoint.
type MetricsSection struct {
	Enabled bool   `koanf:"enabled"`
	Addr    string `koanf:"addr"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}
