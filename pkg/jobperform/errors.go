package jobperform

import (
	"context"
	"errors"
	"fmt"
)

// ArgumentError signals invalid input to a public operation. It is
// raised eagerly at the call boundary and is never caught by the
// pipeline itself.
type ArgumentError struct {
	Op      string
	Message string
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("jobperform: %s: %s", e.Op, e.Message)
}

// AbortedError is the Go rendering of JobAbortedException: an internal
// control signal meaning "abandon this execution, do not retry, do not
// run exception filters." It always propagates verbatim.
type AbortedError struct {
	Reason string
}

func (e *AbortedError) Error() string {
	if e.Reason == "" {
		return "jobperform: job aborted"
	}
	return "jobperform: job aborted: " + e.Reason
}

// NewAbortedError builds an AbortedError a job body or filter can
// return to abandon the current execution.
func NewAbortedError(reason string) *AbortedError {
	return &AbortedError{Reason: reason}
}

// PerformanceError is the Go rendering of JobPerformanceException: the
// wrapper for any non-control-flow exception that escaped a pre- or
// post-filter method.
type PerformanceError struct {
	Op  string
	Err error
}

func (e *PerformanceError) Error() string {
	return fmt.Sprintf("jobperform: %s: %v", e.Op, e.Err)
}

func (e *PerformanceError) Unwrap() error { return e.Err }

func newPerformanceError(op string, err error) *PerformanceError {
	return &PerformanceError{Op: op, Err: err}
}

// IsAborted reports whether err is (or wraps) an *AbortedError.
func IsAborted(err error) bool {
	var aborted *AbortedError
	return errors.As(err, &aborted)
}

// isOperationCanceled reports whether err represents cooperative
// cancellation in the sense spec.md §7 means by OperationCanceled: the
// combined context was canceled, or the error is (or wraps)
// context.Canceled/context.DeadlineExceeded.
func isOperationCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
