package observability

import "context"

// Metrics provides the application metrics capabilities the job-execution
// core actually needs: counting events (process retry attempts) and
// timing durations (process invocation time). Up-down counters and
// asynchronous gauges have no caller in this domain and are not part
// of the facade.
type Metrics interface {
	// Counter returns a counter metric instrument.
	Counter(name, description, unit string) Counter

	// Histogram returns a histogram metric instrument.
	Histogram(name, description, unit string) Histogram
}

// Counter is a monotonically increasing metric.
type Counter interface {
	// Add increments the counter by the given value with optional attributes.
	Add(ctx context.Context, value int64, fields ...Field)

	// Increment increments the counter by 1 with optional attributes.
	Increment(ctx context.Context, fields ...Field)
}

// Histogram records a distribution of values.
type Histogram interface {
	// Record adds a value to the histogram with optional attributes.
	Record(ctx context.Context, value float64, fields ...Field)
}
