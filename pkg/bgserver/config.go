package bgserver

import (
	"errors"
	"time"
)

// Config holds the timeouts and retry policy a Server is constructed
// with.
type Config struct {
	// ServiceName identifies this server in logs and dispatcher thread
	// names.
	ServiceName string

	// StopTimeout is how long after sendStop before the "stopped"
	// signal fires, escalating cooperative cancellation.
	StopTimeout time.Duration

	// ShutdownTimeout is how long after sendStop before the "shutdown"
	// signal fires, at which point the server abandons waiting.
	ShutdownTimeout time.Duration

	// LastChanceTimeout extends waitForShutdown beyond ShutdownTimeout
	// to give the dispatcher a final window to observe the shutdown
	// signal and exit.
	LastChanceTimeout time.Duration

	// RestartDelay is the delay before the supervisor goroutine for a
	// process is restarted after a panic or an error escapes the
	// InfiniteLoopTask/AutomaticRetryTask envelope before "stopping" fires.
	RestartDelay time.Duration

	// MaxAttempts bounds AutomaticRetryTask's retries of a single
	// process invocation before it gives up and rethrows.
	MaxAttempts int

	// MaxRetryDelay caps the exponential-jitter backoff computed
	// between retry attempts.
	MaxRetryDelay time.Duration
}

// DefaultConfig returns the configuration used when no options
// override it.
func DefaultConfig() *Config {
	return &Config{
		ServiceName:       "bgserver",
		StopTimeout:       15 * time.Second,
		ShutdownTimeout:   30 * time.Second,
		LastChanceTimeout: 5 * time.Second,
		RestartDelay:      5 * time.Second,
		MaxAttempts:       10,
		MaxRetryDelay:     1 * time.Minute,
	}
}

// Validate checks that the configuration describes a well-formed
// shutdown escalation: stopping no later than stopped, no later than
// shutdown.
func (c *Config) Validate() error {
	if c.ServiceName == "" {
		return errors.New("service name is required")
	}
	if c.StopTimeout <= 0 {
		return errors.New("stop timeout must be positive")
	}
	if c.ShutdownTimeout <= 0 {
		return errors.New("shutdown timeout must be positive")
	}
	if c.ShutdownTimeout < c.StopTimeout {
		return errors.New("shutdown timeout must not be shorter than stop timeout")
	}
	if c.LastChanceTimeout < 0 {
		return errors.New("last chance timeout cannot be negative")
	}
	if c.RestartDelay <= 0 {
		return errors.New("restart delay must be positive")
	}
	if c.MaxAttempts <= 0 {
		return errors.New("max attempts must be positive")
	}
	if c.MaxRetryDelay <= 0 {
		return errors.New("max retry delay must be positive")
	}
	return nil
}
