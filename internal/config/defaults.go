package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultAPITimeout         = 15 * time.Second
	DefaultMaxRetries         = 3
	DefaultPingInterval       = 30 * time.Second
	DefaultLivenessTimeout    = 2 * DefaultPingInterval
	DefaultReconnectBaseDelay = 1 * time.Second
	DefaultReconnectMaxDelay  = 60 * time.Second
	DefaultReconnectExpCap    = 6
	DefaultDisconnectedAfter  = 5
	DefaultBufferSize         = 256
	DefaultRefreshDebounce    = 300 * time.Millisecond
	DefaultRefreshInterval    = 5 * time.Minute
	DefaultRefreshTimeout     = 10 * time.Second
	DefaultGreetingTTL        = 12 * time.Hour
)

func (c *ScreenConfig) applyDefaults() {
	if c.API.Timeout == 0 {
		c.API.Timeout = DefaultAPITimeout
	}
	if c.API.MaxRetries == 0 {
		c.API.MaxRetries = DefaultMaxRetries
	}

	if c.Stream.PingInterval == 0 {
		c.Stream.PingInterval = DefaultPingInterval
	}
	if c.Stream.LivenessTimeout == 0 {
		c.Stream.LivenessTimeout = 2 * c.Stream.PingInterval
	}
	if c.Stream.ReconnectBaseDelay == 0 {
		c.Stream.ReconnectBaseDelay = DefaultReconnectBaseDelay
	}
	if c.Stream.ReconnectMaxDelay == 0 {
		c.Stream.ReconnectMaxDelay = DefaultReconnectMaxDelay
	}
	if c.Stream.ReconnectExpCap == 0 {
		c.Stream.ReconnectExpCap = DefaultReconnectExpCap
	}
	if c.Stream.DisconnectedAfter == 0 {
		c.Stream.DisconnectedAfter = DefaultDisconnectedAfter
	}
	if c.Stream.BufferSize == 0 {
		c.Stream.BufferSize = DefaultBufferSize
	}

	if c.Refresh.Debounce == 0 {
		c.Refresh.Debounce = DefaultRefreshDebounce
	}
	if c.Refresh.Interval == 0 {
		c.Refresh.Interval = DefaultRefreshInterval
	}
	if c.Refresh.Timeout == 0 {
		c.Refresh.Timeout = DefaultRefreshTimeout
	}

	if c.Greeting.TTL == 0 {
		c.Greeting.TTL = DefaultGreetingTTL
	}
}
