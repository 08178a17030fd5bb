package jobperform

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsAbortedMatchesWrappedAbortedError(t *testing.T) {
	base := NewAbortedError("user requested stop")
	wrapped := newPerformanceError("op", base)

	assert.True(t, IsAborted(base))
	assert.True(t, IsAborted(wrapped), "PerformanceError unwraps to the aborted cause")

	var asAborted error = base
	assert.True(t, IsAborted(asAborted))
}

func TestIsOperationCanceledRecognizesContextErrors(t *testing.T) {
	assert.True(t, isOperationCanceled(context.Canceled))
	assert.True(t, isOperationCanceled(context.DeadlineExceeded))
	assert.False(t, isOperationCanceled(errors.New("boom")))
}

func TestPerformanceErrorUnwrap(t *testing.T) {
	cause := errors.New("boom")
	perfErr := newPerformanceError("onPerformed", cause)

	assert.ErrorIs(t, perfErr, cause)
	assert.Equal(t, cause, perfErr.Unwrap())
}
