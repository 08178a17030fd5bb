package jobperform

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hangfire-go/corekit/pkg/observability"
	"github.com/hangfire-go/corekit/pkg/observability/fake"
	"github.com/hangfire-go/corekit/pkg/observability/noop"
)

// recordingPerformer is the inner Performer stub used across scenarios.
type recordingPerformer struct {
	result  any
	err     error
	invoked bool
}

func (p *recordingPerformer) PerformAsync(ctx context.Context, pctx *PerformContext) (any, error) {
	p.invoked = true
	return p.result, p.err
}

// recordingFilter implements ServerFilter and optionally cancels in
// onPerforming or marks an exception handled in onPerformed, recording
// every call into a shared event log so ordering can be asserted.
type recordingFilter struct {
	name               string
	events             *[]string
	cancelOnPerforming bool
	handleException    bool
}

func (f *recordingFilter) OnPerforming(pctx *PerformingContext) {
	*f.events = append(*f.events, f.name+".onPerforming")
	if f.cancelOnPerforming {
		pctx.Canceled = true
	}
}

func (f *recordingFilter) OnPerformed(pctx *PerformedContext) {
	msg := f.name + ".onPerformed"
	if pctx.Canceled {
		msg += "(canceled)"
	}
	*f.events = append(*f.events, msg)
	if f.handleException && pctx.Exception != nil {
		pctx.ExceptionHandled = true
	}
}

// panickingFilter raises an error from onPerforming by panicking, the
// only way a ServerFilter's void-shaped hook can signal failure.
type panickingFilter struct {
	err error
}

func (f *panickingFilter) OnPerforming(*PerformingContext) { panic(f.err) }
func (f *panickingFilter) OnPerformed(*PerformedContext)   {}

// exceptionRecorder implements ServerExceptionFilter, recording whether
// it was invoked and optionally marking the exception handled.
type exceptionRecorder struct {
	invoked bool
	handle  bool
	seen    error
}

func (f *exceptionRecorder) OnServerException(ectx *ServerExceptionContext) {
	f.invoked = true
	f.seen = ectx.Exception
	if f.handle {
		ectx.ExceptionHandled = true
	}
}

func newTestContext(job, shutdown context.Context) *PerformContext {
	if job == nil {
		job = context.Background()
	}
	if shutdown == nil {
		shutdown = context.Background()
	}
	return &PerformContext{
		Job:             Job{Method: "DoWork"},
		BackgroundJobID: "01J00000000000000000000000",
		Cancellation:    NewCancellationToken(job, shutdown),
	}
}

// Scenario 1: no filters.
func TestScenarioNoFiltersReturnsInnerResult(t *testing.T) {
	inner := &recordingPerformer{result: "X"}
	perf := NewJobPerformer(inner, StaticFilterProvider{}, noop.NewProvider())

	result, err := perf.PerformAsync(context.Background(), newTestContext(nil, nil))

	require.NoError(t, err)
	assert.Equal(t, "X", result)
	assert.True(t, inner.invoked)
}

// Scenario 2: two sync filters, outer=A inner=B; forward pre, forward post.
func TestScenarioTwoSyncFiltersObservesForwardPostWalk(t *testing.T) {
	var events []string
	a := &recordingFilter{name: "A", events: &events}
	b := &recordingFilter{name: "B", events: &events}
	inner := &recordingPerformer{result: "X"}

	provider := StaticFilterProvider{Filters: []FilterInfo{
		{Instance: a}, {Instance: b},
	}}
	perf := NewJobPerformer(inner, provider, noop.NewProvider())

	result, err := perf.PerformAsync(context.Background(), newTestContext(nil, nil))

	require.NoError(t, err)
	assert.Equal(t, "X", result)
	assert.Equal(t, []string{
		"A.onPerforming", "B.onPerforming",
		"A.onPerformed", "B.onPerformed",
	}, events)
}

// Scenario 3: pre-filter cancels; no inner call; cancellation post-walk
// runs in reverse from before the canceler.
func TestScenarioPreFilterCancelsSkipsInnerAndWalksReverse(t *testing.T) {
	var events []string
	a := &recordingFilter{name: "A", events: &events}
	b := &recordingFilter{name: "B", events: &events, cancelOnPerforming: true}
	c := &recordingFilter{name: "C", events: &events}
	inner := &recordingPerformer{result: "unreachable"}

	provider := StaticFilterProvider{Filters: []FilterInfo{
		{Instance: a}, {Instance: b}, {Instance: c},
	}}
	perf := NewJobPerformer(inner, provider, noop.NewProvider())

	result, err := perf.PerformAsync(context.Background(), newTestContext(nil, nil))

	require.NoError(t, err)
	assert.Nil(t, result)
	assert.False(t, inner.invoked)
	assert.Equal(t, []string{
		"A.onPerforming", "B.onPerforming",
		"A.onPerformed(canceled)",
	}, events)
}

// Scenario 4: job body throws; no exception filter; post-filters observe
// the exception; pipeline re-raises it.
func TestScenarioJobBodyThrowsUnhandledRethrows(t *testing.T) {
	var events []string
	a := &recordingFilter{name: "A", events: &events}
	boom := errors.New("invalid operation")
	inner := &recordingPerformer{err: boom}

	provider := StaticFilterProvider{Filters: []FilterInfo{{Instance: a}}}
	perf := NewJobPerformer(inner, provider, noop.NewProvider())

	result, err := perf.PerformAsync(context.Background(), newTestContext(nil, nil))

	assert.Nil(t, result)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"A.onPerforming", "A.onPerformed"}, events)
}

// Scenario 5: job body throws, handled by a post-filter; pipeline
// returns a nil result without rethrowing.
func TestScenarioJobBodyThrowsHandledByPostFilter(t *testing.T) {
	var events []string
	a := &recordingFilter{name: "A", events: &events, handleException: true}
	inner := &recordingPerformer{err: errors.New("invalid operation")}

	provider := StaticFilterProvider{Filters: []FilterInfo{{Instance: a}}}
	perf := NewJobPerformer(inner, provider, noop.NewProvider())

	result, err := perf.PerformAsync(context.Background(), newTestContext(nil, nil))

	require.NoError(t, err)
	assert.Nil(t, result)
}

// Scenario 6: pre-filter raises a cancellation error, shutdown NOT
// requested; the pipeline wraps it in a *PerformanceError and the
// exception filter observes the wrapped form.
func TestScenarioPreFilterCancelWithoutShutdownWraps(t *testing.T) {
	p := &panickingFilter{err: context.Canceled}
	excFilter := &exceptionRecorder{}
	inner := &recordingPerformer{result: "unreachable"}

	provider := StaticFilterProvider{Filters: []FilterInfo{
		{Instance: p}, {Instance: excFilter},
	}}
	perf := NewJobPerformer(inner, provider, noop.NewProvider())

	result, err := perf.PerformAsync(context.Background(), newTestContext(nil, nil))

	assert.Nil(t, result)
	require.Error(t, err)
	var perfErr *PerformanceError
	require.True(t, errors.As(err, &perfErr))
	assert.ErrorIs(t, perfErr, context.Canceled)
	assert.True(t, excFilter.invoked)
	assert.ErrorIs(t, excFilter.seen, context.Canceled)
	assert.False(t, inner.invoked)
}

// (Exception passthrough) JobAbortedException from the inner performer
// is rethrown without invoking any exception filter.
func TestAbortedErrorFromInnerPerformerBypassesExceptionFilters(t *testing.T) {
	excFilter := &exceptionRecorder{}
	abortErr := NewAbortedError("duplicate execution")
	inner := &recordingPerformer{err: abortErr}

	provider := StaticFilterProvider{Filters: []FilterInfo{{Instance: excFilter}}}
	perf := NewJobPerformer(inner, provider, noop.NewProvider())

	result, err := perf.PerformAsync(context.Background(), newTestContext(nil, nil))

	assert.Nil(t, result)
	assert.Same(t, error(abortErr), err)
	assert.False(t, excFilter.invoked)
}

// (Shutdown cancel passthrough) OperationCanceled raised by the inner
// performer when shutdown is cancelled is rethrown unwrapped, bypassing
// exception filters.
func TestShutdownCancelFromInnerPerformerBypassesExceptionFilters(t *testing.T) {
	excFilter := &exceptionRecorder{}
	inner := &recordingPerformer{err: context.Canceled}

	shutdownCtx, cancel := context.WithCancel(context.Background())
	cancel()

	provider := StaticFilterProvider{Filters: []FilterInfo{{Instance: excFilter}}}
	perf := NewJobPerformer(inner, provider, noop.NewProvider())

	result, err := perf.PerformAsync(context.Background(), newTestContext(nil, shutdownCtx))

	assert.Nil(t, result)
	assert.Same(t, context.Canceled, err)
	assert.False(t, excFilter.invoked)
}

// (Completeness) faulting inside a pre-filter method replaces the
// post-phase entirely: filters whose onPerforming already ran do not
// get onPerformed called.
func TestPreFilterFaultReplacesPostPhase(t *testing.T) {
	var events []string
	a := &recordingFilter{name: "A", events: &events}
	boom := &panickingFilter{err: errors.New("pre fault")}
	inner := &recordingPerformer{result: "unreachable"}

	provider := StaticFilterProvider{Filters: []FilterInfo{{Instance: a}, {Instance: boom}}}
	perf := NewJobPerformer(inner, provider, noop.NewProvider())

	_, err := perf.PerformAsync(context.Background(), newTestContext(nil, nil))

	require.Error(t, err)
	assert.Equal(t, []string{"A.onPerforming"}, events)
	assert.False(t, inner.invoked)
}

func TestPerformAsyncLogsPipelineBeginWithBackgroundJobID(t *testing.T) {
	inner := &recordingPerformer{result: "X"}
	o11y := fake.NewProvider()
	perf := NewJobPerformer(inner, StaticFilterProvider{}, o11y)

	_, err := perf.PerformAsync(context.Background(), newTestContext(nil, nil))
	require.NoError(t, err)

	entries := o11y.Logger().(*fake.FakeLogger).GetEntries()
	require.NotEmpty(t, entries)
	assert.Equal(t, "perform pipeline begin", entries[0].Message)

	found := false
	for _, f := range entries[0].Fields {
		if f.Key == "background_job_id" {
			found = true
			assert.Equal(t, "01J00000000000000000000000", f.Value)
		}
	}
	assert.True(t, found, "expected background_job_id field in log entry")
}

func TestPerformAsyncRecordsSpanForEachInvocation(t *testing.T) {
	inner := &recordingPerformer{result: "X"}
	o11y := fake.NewProvider()
	perf := NewJobPerformer(inner, StaticFilterProvider{}, o11y)

	pctx := newTestContext(nil, nil)
	pctx.Job = Job{Type: "EmailSender", Method: "Send"}
	_, err := perf.PerformAsync(context.Background(), pctx)
	require.NoError(t, err)

	spans := o11y.Tracer().(*fake.FakeTracer).GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "jobperform.PerformAsync", spans[0].Name)
	assert.Equal(t, observability.SpanKindInternal, spans[0].Kind)
	assert.Equal(t, observability.StatusCodeOK, spans[0].Status)
	assert.NotNil(t, spans[0].EndTime)
}

func TestPerformAsyncRecordsSpanErrorOnExceptionRethrow(t *testing.T) {
	inner := &recordingPerformer{err: errors.New("boom")}
	o11y := fake.NewProvider()
	perf := NewJobPerformer(inner, StaticFilterProvider{}, o11y)

	_, err := perf.PerformAsync(context.Background(), newTestContext(nil, nil))
	require.Error(t, err)

	spans := o11y.Tracer().(*fake.FakeTracer).GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, observability.StatusCodeError, spans[0].Status)
	assert.Error(t, spans[0].RecordedErr)
}

func TestPerformAsyncRejectsNilContext(t *testing.T) {
	inner := &recordingPerformer{result: "X"}
	perf := NewJobPerformer(inner, StaticFilterProvider{}, noop.NewProvider())

	_, err := perf.PerformAsync(context.Background(), nil)

	var argErr *ArgumentError
	require.True(t, errors.As(err, &argErr))
}
