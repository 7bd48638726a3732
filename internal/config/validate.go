package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks that all required fields are set and values are valid.
func (c *ScreenConfig) Validate() error {
	if c.API.BaseURL == "" {
		return errors.New("api.base_url is required")
	}
	if !strings.HasPrefix(c.API.BaseURL, "http://") && !strings.HasPrefix(c.API.BaseURL, "https://") {
		return fmt.Errorf("api.base_url must start with http:// or https://, got %q", c.API.BaseURL)
	}

	if c.Stream.PingInterval <= 0 {
		return errors.New("stream.ping_interval must be positive")
	}
	if c.Stream.LivenessTimeout < c.Stream.PingInterval {
		return fmt.Errorf("stream.liveness_timeout (%v) must be at least stream.ping_interval (%v)",
			c.Stream.LivenessTimeout, c.Stream.PingInterval)
	}
	if c.Stream.ReconnectBaseDelay <= 0 {
		return errors.New("stream.reconnect_base_delay must be positive")
	}
	if c.Stream.ReconnectMaxDelay < c.Stream.ReconnectBaseDelay {
		return errors.New("stream.reconnect_max_delay must be >= stream.reconnect_base_delay")
	}
	if c.Stream.ReconnectExpCap < 1 {
		return errors.New("stream.reconnect_exp_cap must be >= 1")
	}
	if c.Stream.DisconnectedAfter < 1 {
		return errors.New("stream.disconnected_after must be >= 1")
	}

	if c.Refresh.Debounce < 0 {
		return errors.New("refresh.debounce cannot be negative")
	}
	if c.Refresh.Timeout <= 0 {
		return errors.New("refresh.timeout must be positive")
	}

	if c.Greeting.Path != "" && c.Greeting.TTL <= 0 {
		return errors.New("greeting.ttl must be positive when greeting.path is set")
	}

	return nil
}
