package config

// Default configuration values.
const (
	DefaultAddr        = "127.0.0.1:6379"
	DefaultDecoder     = DecoderStream
	DefaultMetricsAddr = "127.0.0.1:9419"

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// Known decoder names.
const (
	DecoderStream = "stream"
	DecoderBatch  = "batch"
)

// Default returns the default server configuration.
func Default() *ServerConfig {
	return &ServerConfig{
		Server: ServerSection{
			Addr:    DefaultAddr,
			Decoder: DefaultDecoder,
		},
		Metrics: MetricsSection{
			Enabled: false,
			Addr:    DefaultMetricsAddr,
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}
