package jobperform

import "context"

// ServerFilter is the synchronous pre/post hook capability. A filter
// instance implements it by implementing both methods.
type ServerFilter interface {
	OnPerforming(ctx *PerformingContext)
	OnPerformed(ctx *PerformedContext)
}

// AsyncServerFilter is the asynchronous variant of ServerFilter. When a
// filter implements both, the async variant is preferred at every call
// site.
type AsyncServerFilter interface {
	OnPerformingAsync(ctx context.Context, pctx *PerformingContext) error
	OnPerformedAsync(ctx context.Context, pctx *PerformedContext) error
}

// ServerExceptionFilter is the synchronous exception hook capability.
type ServerExceptionFilter interface {
	OnServerException(ctx *ServerExceptionContext)
}

// AsyncServerExceptionFilter is the asynchronous variant of
// ServerExceptionFilter.
type AsyncServerExceptionFilter interface {
	OnServerExceptionAsync(ctx context.Context, ectx *ServerExceptionContext) error
}

// FilterInfo describes one entry returned by a FilterProvider. The
// pipeline reads only Instance; Scope and Order are carried for the
// provider's own bookkeeping and logging.
type FilterInfo struct {
	Instance any
	Scope    string
	Order    int
}

// FilterProvider resolves the ordered, outer→inner filter list for a
// job. Index 0 is outermost.
type FilterProvider interface {
	GetFilters(job Job) []FilterInfo
}

// StaticFilterProvider returns the same filter list for every job. It
// is the trivial FilterProvider used by tests and simple hosts that do
// not need per-job filter selection.
type StaticFilterProvider struct {
	Filters []FilterInfo
}

// GetFilters implements FilterProvider.
func (p StaticFilterProvider) GetFilters(Job) []FilterInfo {
	return p.Filters
}
