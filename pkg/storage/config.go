package storage

import "time"

// Config holds pool tuning and timeout parameters for a Connection.
type Config struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	ConnectTimeout  time.Duration
	PingTimeout     time.Duration
}

// DefaultConfig returns production-safe pool defaults, mirroring the
// values a pgx-backed connection pool is commonly tuned to.
func DefaultConfig() *Config {
	return &Config{
		MaxOpenConns:    25,
		MaxIdleConns:    5,
		ConnMaxLifetime: 5 * time.Minute,
		ConnMaxIdleTime: 10 * time.Minute,
		ConnectTimeout:  10 * time.Second,
		PingTimeout:     5 * time.Second,
	}
}

// Validate checks that the configuration is well-formed.
func (c *Config) Validate() error {
	if c.DSN == "" {
		return &ConnectionError{Op: "validate", Message: "dsn is required"}
	}
	if c.MaxOpenConns <= 0 {
		return &ConnectionError{Op: "validate", Message: "max open conns must be positive"}
	}
	if c.MaxIdleConns <= 0 {
		return &ConnectionError{Op: "validate", Message: "max idle conns must be positive"}
	}
	if c.ConnMaxLifetime <= 0 {
		return &ConnectionError{Op: "validate", Message: "conn max lifetime must be positive"}
	}
	if c.ConnectTimeout <= 0 {
		return &ConnectionError{Op: "validate", Message: "connect timeout must be positive"}
	}
	if c.PingTimeout <= 0 {
		return &ConnectionError{Op: "validate", Message: "ping timeout must be positive"}
	}
	return nil
}
