package jobperform

import (
	"context"
	"fmt"

	"github.com/hangfire-go/corekit/pkg/observability"
	"github.com/hangfire-go/corekit/pkg/observability/noop"
)

// Performer invokes the job body itself. It is the innermost collaborator
// the pipeline wraps; the pipeline never knows how a Job's method is
// resolved or activated.
type Performer interface {
	PerformAsync(ctx context.Context, pctx *PerformContext) (any, error)
}

// JobPerformer runs a PerformContext through the pre-phase, the inner
// Performer, the post-phase, and — on fault — the exception-filter
// chain. It is the sole implementation of the filter pipeline contract;
// callers obtain one with NewJobPerformer and never construct the state
// machine themselves.
type JobPerformer struct {
	inner    Performer
	provider FilterProvider
	o11y     observability.Observability
}

// NewJobPerformer wires an inner Performer and a FilterProvider into a
// pipeline. o11y may be nil; a noop facade is substituted.
func NewJobPerformer(inner Performer, provider FilterProvider, o11y observability.Observability) *JobPerformer {
	if inner == nil {
		panic(&ArgumentError{Op: "NewJobPerformer", Message: "inner performer is required"})
	}
	if provider == nil {
		provider = StaticFilterProvider{}
	}
	if o11y == nil {
		o11y = noop.NewProvider()
	}
	return &JobPerformer{inner: inner, provider: provider, o11y: o11y}
}

func (p *JobPerformer) logDebug(ctx context.Context, msg string, fields ...observability.Field) {
	p.o11y.Logger().Debug(ctx, msg, fields...)
}

// PerformAsync runs the full pipeline for pctx: pre-phase, inner
// performer, post-phase, and exception-filter chain as described by
// the ordering contract. It returns the job's result, or one of these
// fault kinds: an *AbortedError, a
// context.Canceled/context.DeadlineExceeded carrying error propagated
// verbatim during shutdown, a *PerformanceError wrapping a pre/post
// filter fault, or the job body's own unhandled error.
func (p *JobPerformer) PerformAsync(ctx context.Context, pctx *PerformContext) (result any, err error) {
	if pctx == nil {
		return nil, &ArgumentError{Op: "PerformAsync", Message: "perform context is required"}
	}

	spanCtx, span := p.o11y.Tracer().Start(ctx, "jobperform.PerformAsync",
		observability.WithSpanKind(observability.SpanKindInternal),
		observability.WithAttributes(
			observability.String("background_job_id", pctx.BackgroundJobID),
			observability.String("job_type", pctx.Job.Type),
			observability.String("job_method", pctx.Job.Method),
		),
	)
	ctx = spanCtx
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(observability.StatusCodeError, err.Error())
		} else {
			span.SetStatus(observability.StatusCodeOK, "")
		}
		span.End()
	}()

	combined, release := pctx.Cancellation.combined()
	defer release()

	filters := p.provider.GetFilters(pctx.Job)
	cursor := newFilterCursor(filters)
	performing := NewPerformingContext(pctx)

	p.logDebug(ctx, "perform pipeline begin",
		observability.String("background_job_id", pctx.BackgroundJobID),
		observability.Int("filters", len(filters)))

	lastPreIndex := -1
	for {
		if err := combined.Err(); err != nil {
			return nil, p.faultFromLoop(ctx, combined, cursor, err, pctx)
		}

		res := cursor.nextPerforming()
		if !res.matched {
			break
		}
		lastPreIndex = res.index

		if err := p.invokePerforming(combined, res, performing); err != nil {
			return nil, p.faultFromLoop(ctx, combined, cursor, err, pctx)
		}

		if performing.Canceled {
			return nil, p.runCancellationPostWalk(ctx, combined, cursor, pctx, lastPreIndex)
		}
	}

	innerResult, innerErr := p.inner.PerformAsync(combined, pctx)
	if innerErr != nil {
		if IsAborted(innerErr) {
			p.logDebug(ctx, "perform pipeline aborted", observability.String("background_job_id", pctx.BackgroundJobID))
			return nil, innerErr
		}
		if isOperationCanceled(innerErr) && pctx.Cancellation.ShutdownRequested() {
			return nil, innerErr
		}
	}

	performed := NewPerformedContext(pctx, innerResult, false, innerErr)

	cursor.reset()
	for {
		if err := combined.Err(); err != nil {
			return nil, p.faultFromLoop(ctx, combined, cursor, err, pctx)
		}

		res := cursor.nextPerforming()
		if !res.matched {
			break
		}

		if err := p.invokePerformed(combined, res, performed); err != nil {
			return nil, p.faultFromLoop(ctx, combined, cursor, err, pctx)
		}
	}

	if performed.Exception != nil && !performed.ExceptionHandled {
		// Aborted and shutdown-cancellation job-body exceptions are
		// already intercepted above, before performed is built; any
		// exception reaching here is an ordinary job body fault.
		return nil, p.dispatchExceptionChain(ctx, combined, cursor, pctx, performed.Exception)
	}

	p.logDebug(ctx, "perform pipeline end", observability.String("background_job_id", pctx.BackgroundJobID))
	return performed.Result, nil
}

// runCancellationPostWalk implements the cancellation post-walk: reverse
// from the filter before the canceler (exclusive), invoking onPerformed
// with Canceled=true, and terminates the pipeline with a null result.
func (p *JobPerformer) runCancellationPostWalk(ctx context.Context, combined context.Context, cursor *filterCursor, pctx *PerformContext, cancelerIndex int) error {
	performed := NewPerformedContext(pctx, nil, true, nil)

	from := cancelerIndex
	for {
		res := cursor.prevPerforming(from)
		if !res.matched {
			break
		}
		from = res.index

		if err := p.invokePerformed(combined, res, performed); err != nil {
			return p.faultFromLoop(ctx, combined, cursor, err, pctx)
		}
	}

	return nil
}

// faultFromLoop runs a pre/post filter-loop fault through
// handleJobPerformanceException, then either returns the normalized
// error directly (JobAborted / shutdown-cancellation bypass both the
// remainder of the loop and the exception chain) or dispatches it to
// the exception-filter chain.
func (p *JobPerformer) faultFromLoop(ctx context.Context, combined context.Context, cursor *filterCursor, err error, pctx *PerformContext) error {
	normalized, bypass := p.handleJobPerformanceException(err, pctx.Cancellation)
	if bypass {
		return normalized
	}
	return p.dispatchExceptionChain(ctx, combined, cursor, pctx, normalized)
}

// handleJobPerformanceException normalizes an exception escaping a
// pre- or post-filter method per spec.md §4.1: OperationCanceled is
// re-raised unchanged when shutdown is set, JobAborted is always
// re-raised unchanged, and anything else is wrapped into a
// *PerformanceError. The returned bool reports whether the caller
// should bypass the exception-filter chain entirely (true for both
// special cases).
func (p *JobPerformer) handleJobPerformanceException(err error, token CancellationToken) (error, bool) {
	if isOperationCanceled(err) && token.ShutdownRequested() {
		return err, true
	}
	if IsAborted(err) {
		return err, true
	}
	return newPerformanceError("filter method", err), false
}

// dispatchExceptionChain walks the exception-filter chain in forward
// order, preferring the async variant, sharing a single
// ServerExceptionContext. If no filter sets ExceptionHandled, the
// original exception is re-raised.
func (p *JobPerformer) dispatchExceptionChain(ctx context.Context, combined context.Context, cursor *filterCursor, pctx *PerformContext, err error) error {
	ectx := &ServerExceptionContext{PerformContext: pctx, Exception: err}

	cursor.reset()
	for {
		res := cursor.nextException()
		if !res.matched {
			break
		}
		if callErr := p.invokeException(combined, res, ectx); callErr != nil {
			// A fault inside an exception filter itself is not
			// specified; surface it directly rather than recursing
			// into another chain dispatch.
			return callErr
		}
	}

	if ectx.ExceptionHandled {
		return nil
	}
	return err
}

// recoverAsFault converts a recovered panic value into an error, preserving
// the original error chain (via %w) when the panic value is itself an
// error, so that errors.Is/As still recognizes it downstream.
func recoverAsFault(op string, r any) error {
	if err, ok := r.(error); ok {
		return fmt.Errorf("panic in %s: %w", op, err)
	}
	return fmt.Errorf("panic in %s: %v", op, r)
}

func (p *JobPerformer) invokePerforming(ctx context.Context, res matchResult, pctx *PerformingContext) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = recoverAsFault("onPerforming", r)
		}
	}()
	if res.async {
		return res.entry.asyncPerform.OnPerformingAsync(ctx, pctx)
	}
	res.entry.syncPerform.OnPerforming(pctx)
	return nil
}

func (p *JobPerformer) invokePerformed(ctx context.Context, res matchResult, pctx *PerformedContext) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = recoverAsFault("onPerformed", r)
		}
	}()
	if res.async {
		return res.entry.asyncPerform.OnPerformedAsync(ctx, pctx)
	}
	res.entry.syncPerform.OnPerformed(pctx)
	return nil
}

func (p *JobPerformer) invokeException(ctx context.Context, res matchResult, ectx *ServerExceptionContext) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = recoverAsFault("onServerException", r)
		}
	}()
	if res.async {
		return res.entry.asyncExc.OnServerExceptionAsync(ctx, ectx)
	}
	res.entry.syncExc.OnServerException(ectx)
	return nil
}
