package healthapi

import "time"

// Option configures a Config at construction time.
type Option func(*Config)

func WithAddress(addr string) Option {
	return func(c *Config) { c.Address = addr }
}

func WithReadTimeout(d time.Duration) Option {
	return func(c *Config) { c.ReadTimeout = d }
}

func WithWriteTimeout(d time.Duration) Option {
	return func(c *Config) { c.WriteTimeout = d }
}

func WithIdleTimeout(d time.Duration) Option {
	return func(c *Config) { c.IdleTimeout = d }
}

// WithMetrics toggles whether /metrics is registered.
func WithMetrics(enabled bool) Option {
	return func(c *Config) { c.EnableMetrics = enabled }
}
