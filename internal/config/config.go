package config

import "time"

// ScreenConfig is the root configuration for one screen client.
type ScreenConfig struct {
	API      APIConfig      `yaml:"api"`
	Stream   StreamConfig   `yaml:"stream"`
	Refresh  RefreshConfig  `yaml:"refresh"`
	Greeting GreetingConfig `yaml:"greeting"`
}

// APIConfig holds backend REST settings.
type APIConfig struct {
	BaseURL    string        `yaml:"base_url"` // http(s) base; the stream URL is derived from it
	Token      string        `yaml:"token"`    // credential header for privileged screens
	Timeout    time.Duration `yaml:"timeout"`
	MaxRetries int           `yaml:"max_retries"`
}

// StreamConfig holds duplex-connection settings.
type StreamConfig struct {
	PingInterval       time.Duration `yaml:"ping_interval"`
	LivenessTimeout    time.Duration `yaml:"liveness_timeout"` // no pong for this long forces a reconnect
	ReconnectBaseDelay time.Duration `yaml:"reconnect_base_delay"`
	ReconnectMaxDelay  time.Duration `yaml:"reconnect_max_delay"`
	ReconnectExpCap    int           `yaml:"reconnect_exp_cap"` // cap on the backoff exponent; attempts are unbounded
	DisconnectedAfter  int           `yaml:"disconnected_after"` // consecutive failures before the persistent banner
	BufferSize         int           `yaml:"buffer_size"`
}

// RefreshConfig holds snapshot reconciliation settings.
type RefreshConfig struct {
	Debounce time.Duration `yaml:"debounce"` // coalesce window for delta-triggered refreshes
	Interval time.Duration `yaml:"interval"` // periodic safety refresh
	Timeout  time.Duration `yaml:"timeout"`  // per-fetch timeout
}

// GreetingConfig holds the per-table greeted-flag store settings.
type GreetingConfig struct {
	Path string        `yaml:"path"` // bbolt file path; empty disables the store
	TTL  time.Duration `yaml:"ttl"`
}
