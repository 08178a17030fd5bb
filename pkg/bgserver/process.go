package bgserver

import "context"

// BackgroundProcess identifies a user-supplied long-running body the
// server hosts. An implementation provides exactly one of the two
// shapes below; when a process provides both, the async shape is
// preferred and the synchronous one is never called, mirroring the
// sync/async tie-break used throughout jobperform.
type BackgroundProcess interface {
	Name() string
}

// SyncProcess is the synchronous body shape: a single blocking call
// that returns when one unit of work is done (or fails).
type SyncProcess interface {
	BackgroundProcess
	Execute(ctx context.Context) error
}

// AsyncProcess is the asynchronous body shape. In this Go rendering
// "asynchronous" carries no different runtime behavior than Execute —
// both are ordinary blocking calls on their own goroutine — but the
// distinct capability is preserved because the wrapping envelope must
// refuse to call Execute when ExecuteAsync is present.
type AsyncProcess interface {
	BackgroundProcess
	ExecuteAsync(ctx context.Context) error
}

// invokeProcess runs whichever shape p implements, preferring async.
func invokeProcess(ctx context.Context, p BackgroundProcess) error {
	if async, ok := p.(AsyncProcess); ok {
		return async.ExecuteAsync(ctx)
	}
	if sync, ok := p.(SyncProcess); ok {
		return sync.Execute(ctx)
	}
	return &ProcessError{Process: p.Name(), Op: "invoke", Message: "process implements neither Execute nor ExecuteAsync"}
}
