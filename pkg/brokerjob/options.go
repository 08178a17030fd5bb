package brokerjob

// Option configures a Config at construction time.
type Option func(*Config)

func WithName(name string) Option {
	return func(c *Config) { c.Name = name }
}

func WithPrefetch(n int) Option {
	return func(c *Config) { c.Prefetch = n }
}

func WithAutoAck(autoAck bool) Option {
	return func(c *Config) { c.AutoAck = autoAck }
}

func WithExclusive(exclusive bool) Option {
	return func(c *Config) { c.Exclusive = exclusive }
}
