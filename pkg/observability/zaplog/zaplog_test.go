package zaplog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/hangfire-go/corekit/pkg/observability"
)

func newObservedLogger() (observability.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return New(zap.New(core)), logs
}

func TestLoggerRoutesToCorrectLevel(t *testing.T) {
	l, logs := newObservedLogger()
	ctx := context.Background()

	l.Debug(ctx, "debug msg")
	l.Info(ctx, "info msg")
	l.Warn(ctx, "warn msg")
	l.Error(ctx, "error msg")

	entries := logs.All()
	require.Len(t, entries, 4)
	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Equal(t, zapcore.InfoLevel, entries[1].Level)
	assert.Equal(t, zapcore.WarnLevel, entries[2].Level)
	assert.Equal(t, zapcore.ErrorLevel, entries[3].Level)
}

func TestLoggerIncludesFields(t *testing.T) {
	l, logs := newObservedLogger()
	l.Info(context.Background(), "msg", observability.String("key", "value"), observability.Int("count", 3))

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "value", entries[0].ContextMap()["key"])
	assert.EqualValues(t, 3, entries[0].ContextMap()["count"])
}

func TestWithAttachesFieldsToChildLogger(t *testing.T) {
	l, logs := newObservedLogger()
	child := l.With(observability.String("service", "test"))
	child.Info(context.Background(), "msg")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "test", entries[0].ContextMap()["service"])
}
