package brokerjob

// Config holds the AMQP topology a Process consumes from.
type Config struct {
	Queue     string
	Name      string
	Prefetch  int
	AutoAck   bool
	Exclusive bool
	NoLocal   bool
	NoWait    bool
}

// DefaultConfig returns conservative defaults: manual ack, a modest
// prefetch, and a non-exclusive consumer, matching the teacher pack's
// rabbitmq consumer defaults.
func DefaultConfig(queue string) *Config {
	return &Config{
		Queue:    queue,
		Name:     "brokerjob",
		Prefetch: 10,
	}
}

// Validate checks that the configuration names a queue to consume from.
func (c *Config) Validate() error {
	if c.Queue == "" {
		return &DispatchError{Op: "validate", Message: "queue is required"}
	}
	if c.Prefetch < 0 {
		return &DispatchError{Op: "validate", Message: "prefetch cannot be negative"}
	}
	return nil
}
