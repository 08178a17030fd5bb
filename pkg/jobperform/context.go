package jobperform

import "context"

// Job identifies the method call a performer is expected to invoke. The
// pipeline never inspects Method or Args — serialization and activation
// are an external collaborator's concern.
type Job struct {
	Type   string
	Method string
	Args   []byte
}

// Connection is the opaque storage handle threaded through a
// PerformContext. The pipeline never interprets it; it only carries it
// from the caller to the inner performer and the filters.
type Connection interface {
	Close() error
}

// CancellationToken carries the two independent cancellation signals a
// running job observes: a job-level signal the caller may cancel, and a
// process-wide shutdown signal owned by the hosting server.
type CancellationToken struct {
	job      context.Context
	shutdown context.Context
}

// NewCancellationToken builds a token from its two sub-signals. Neither
// context may be nil; callers that have no shutdown signal should pass
// context.Background().
func NewCancellationToken(job, shutdown context.Context) CancellationToken {
	if job == nil {
		job = context.Background()
	}
	if shutdown == nil {
		shutdown = context.Background()
	}
	return CancellationToken{job: job, shutdown: shutdown}
}

// Job returns the job-level cancellation signal.
func (t CancellationToken) Job() context.Context { return t.job }

// Shutdown returns the process-wide shutdown signal.
func (t CancellationToken) Shutdown() context.Context { return t.shutdown }

// ShutdownRequested reports whether the shutdown sub-signal has fired.
// This distinction drives the propagate-verbatim vs. wrap decision in
// handleJobPerformanceException.
func (t CancellationToken) ShutdownRequested() bool {
	return t.shutdown.Err() != nil
}

// combined returns a context that is done as soon as either sub-signal
// fires, along with a cancel func that must be called to release the
// two context.AfterFunc registrations once the invocation using it is
// finished.
func (t CancellationToken) combined() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	stopJob := context.AfterFunc(t.job, cancel)
	stopShutdown := context.AfterFunc(t.shutdown, cancel)
	return ctx, func() {
		stopJob()
		stopShutdown()
		cancel()
	}
}

// PerformContext is the execution request that flows through the whole
// pipeline: which job to run, the storage handle it runs against, its
// identifier, and the cancellation signals in effect. A PerformContext
// is exclusive to one pipeline invocation and is never mutated once
// performAsync returns.
type PerformContext struct {
	Job             Job
	Connection      Connection
	BackgroundJobID string
	Cancellation    CancellationToken
}

// PerformingContext is derived from a PerformContext for the pre-phase.
// A filter sets Canceled to suppress the job body and enter the
// cancellation post-walk.
type PerformingContext struct {
	*PerformContext
	Canceled bool
}

// NewPerformingContext wraps a PerformContext for the pre-phase walk.
func NewPerformingContext(ctx *PerformContext) *PerformingContext {
	return &PerformingContext{PerformContext: ctx}
}

// PerformedContext is derived from a PerformContext for the post-phase
// walk. It is constructed either after the job body runs (Result and/or
// Exception set) or when a pre-filter cancels (Canceled=true).
type PerformedContext struct {
	*PerformContext
	Result           any
	Canceled         bool
	Exception        error
	ExceptionHandled bool
}

// NewPerformedContext builds the post-phase context for a completed (or
// canceled) job body invocation.
func NewPerformedContext(ctx *PerformContext, result any, canceled bool, exception error) *PerformedContext {
	return &PerformedContext{
		PerformContext: ctx,
		Result:         result,
		Canceled:       canceled,
		Exception:      exception,
	}
}

// ServerExceptionContext carries an unhandled exception into the
// exception-filter chain. A filter sets ExceptionHandled to suppress the
// final rethrow.
type ServerExceptionContext struct {
	*PerformContext
	Exception        error
	ExceptionHandled bool
}
