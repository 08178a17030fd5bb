// Package jobperform implements the background-job invocation pipeline:
// a single execution wrapped by an ordered chain of server filters and,
// on fault, an ordered chain of exception filters.
//
// The pipeline is deliberately independent of how a job's method is
// resolved, serialized, or activated — it only knows how to run the
// PerformContext through the filter chain around an injected Performer.
//
// Example:
//
//	performer := jobperform.NewJobPerformer(innerPerformer, provider, o11y)
//	result, err := performer.PerformAsync(ctx, perfCtx)
package jobperform
