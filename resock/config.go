package resock

import (
	"fmt"
	"time"
)

// Config controls connection and retry behavior.
//
// The client keeps the pointer it was constructed with and re-reads every
// field on each connection attempt, so fields may be changed at any time and
// take effect on the next attempt. Use DefaultConfig() as a starting point
// and modify as needed.
type Config struct {
	// AutomaticOpen dials immediately on construction.
	AutomaticOpen bool

	// ReconnectInterval is the base delay before the first retry.
	ReconnectInterval time.Duration

	// MaxReconnectInterval caps the retry delay.
	MaxReconnectInterval time.Duration

	// ReconnectDecay is the multiplicative backoff growth factor.
	ReconnectDecay float64

	// TimeoutInterval is the maximum time to await a successful open before
	// the attempt is aborted and retried.
	TimeoutInterval time.Duration

	// MaxReconnectAttempts caps retries. 0 means unlimited.
	//
	// When the cap is exceeded the client stops retrying silently: no event
	// fires and no error surfaces. It stays in StateConnecting until Open
	// is called again. Compare ReconnectAttempts() against the cap to
	// detect the stall.
	MaxReconnectAttempts int

	// Debug enables verbose per-instance tracing through the configured
	// logger. Observational only.
	Debug bool
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		AutomaticOpen:        true,
		ReconnectInterval:    time.Second,
		MaxReconnectInterval: 30 * time.Second,
		ReconnectDecay:       1.5,
		TimeoutInterval:      2 * time.Second,
	}
}

// Validate checks that all values are usable.
func (c *Config) Validate() error {
	if c.ReconnectInterval <= 0 {
		return NewError(ErrorInvalidConfig, "reconnect_interval must be > 0")
	}
	if c.MaxReconnectInterval < c.ReconnectInterval {
		return NewError(ErrorInvalidConfig, fmt.Sprintf(
			"max_reconnect_interval %s is below reconnect_interval %s",
			c.MaxReconnectInterval, c.ReconnectInterval))
	}
	if c.ReconnectDecay < 1 {
		return NewError(ErrorInvalidConfig, "reconnect_decay must be >= 1")
	}
	if c.TimeoutInterval <= 0 {
		return NewError(ErrorInvalidConfig, "timeout_interval must be > 0")
	}
	if c.MaxReconnectAttempts < 0 {
		return NewError(ErrorInvalidConfig, "max_reconnect_attempts must be >= 0")
	}
	return nil
}
