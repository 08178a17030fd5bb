package storage

import "time"

// Option configures a Config at Open time.
type Option func(*Config)

func WithMaxOpenConns(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.MaxOpenConns = n
		}
	}
}

func WithMaxIdleConns(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.MaxIdleConns = n
		}
	}
}

func WithConnMaxLifetime(d time.Duration) Option {
	return func(c *Config) {
		if d > 0 {
			c.ConnMaxLifetime = d
		}
	}
}

func WithConnMaxIdleTime(d time.Duration) Option {
	return func(c *Config) {
		if d > 0 {
			c.ConnMaxIdleTime = d
		}
	}
}

func WithConnectTimeout(d time.Duration) Option {
	return func(c *Config) {
		if d > 0 {
			c.ConnectTimeout = d
		}
	}
}

func WithPingTimeout(d time.Duration) Option {
	return func(c *Config) {
		if d > 0 {
			c.PingTimeout = d
		}
	}
}
