package bgserver

import "time"

// Option configures a Server's Config at construction time.
type Option func(*Config)

// WithServiceName sets the server's name, used in logs and dispatcher
// thread names.
func WithServiceName(name string) Option {
	return func(c *Config) { c.ServiceName = name }
}

// WithStopTimeout sets how long after sendStop before "stopped" fires.
func WithStopTimeout(timeout time.Duration) Option {
	return func(c *Config) { c.StopTimeout = timeout }
}

// WithShutdownTimeout sets how long after sendStop before "shutdown"
// fires.
func WithShutdownTimeout(timeout time.Duration) Option {
	return func(c *Config) { c.ShutdownTimeout = timeout }
}

// WithLastChanceTimeout extends waitForShutdown past ShutdownTimeout.
func WithLastChanceTimeout(timeout time.Duration) Option {
	return func(c *Config) { c.LastChanceTimeout = timeout }
}

// WithRestartDelay sets the delay before a crashed process supervisor
// goroutine is restarted.
func WithRestartDelay(delay time.Duration) Option {
	return func(c *Config) { c.RestartDelay = delay }
}

// WithMaxAttempts bounds AutomaticRetryTask's attempts per process
// invocation.
func WithMaxAttempts(attempts int) Option {
	return func(c *Config) { c.MaxAttempts = attempts }
}

// WithMaxRetryDelay caps the exponential-jitter backoff between retry
// attempts.
func WithMaxRetryDelay(delay time.Duration) Option {
	return func(c *Config) { c.MaxRetryDelay = delay }
}
