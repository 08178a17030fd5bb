package healthapi

import (
	"errors"
	"time"
)

// Config holds the HTTP listener settings for a healthapi.Server.
type Config struct {
	Address       string
	ReadTimeout   time.Duration
	WriteTimeout  time.Duration
	IdleTimeout   time.Duration
	EnableMetrics bool
}

// DefaultConfig returns production-safe HTTP timeout defaults, with
// Prometheus metrics exposed by default.
func DefaultConfig() *Config {
	return &Config{
		Address:       ":8081",
		ReadTimeout:   5 * time.Second,
		WriteTimeout:  5 * time.Second,
		IdleTimeout:   60 * time.Second,
		EnableMetrics: true,
	}
}

// Validate checks that the configuration is well-formed.
func (c *Config) Validate() error {
	if c.Address == "" {
		return errors.New("healthapi: address is required")
	}
	if c.ReadTimeout <= 0 {
		return errors.New("healthapi: read timeout must be positive")
	}
	if c.WriteTimeout <= 0 {
		return errors.New("healthapi: write timeout must be positive")
	}
	if c.IdleTimeout <= 0 {
		return errors.New("healthapi: idle timeout must be positive")
	}
	return nil
}
