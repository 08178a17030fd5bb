// Package zaplog implements observability.Logger on top of
// go.uber.org/zap, for deployments that want structured JSON logs
// shipped through zap's encoders rather than the otel log bridge.
package zaplog

import (
	"context"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/hangfire-go/corekit/pkg/observability"
)

type logger struct {
	z *zap.Logger
}

var _ observability.Logger = (*logger)(nil)

// New wraps an existing *zap.Logger. Callers own its lifecycle,
// including calling Sync before process exit.
func New(z *zap.Logger) observability.Logger {
	return &logger{z: z}
}

// NewProduction builds a zap production logger (JSON encoding, ISO8601
// timestamps) wrapped as an observability.Logger.
func NewProduction(serviceName string) (observability.Logger, error) {
	cfg := zap.Config{
		Encoding:         "json",
		Level:            zap.NewAtomicLevelAt(zap.DebugLevel),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
		InitialFields: map[string]any{
			"service.name": serviceName,
		},
		EncoderConfig: zapcore.EncoderConfig{
			MessageKey:  "message",
			TimeKey:     "time",
			LevelKey:    "severity",
			EncodeTime:  zapcore.ISO8601TimeEncoder,
			EncodeLevel: zapcore.CapitalLevelEncoder,
		},
	}

	z, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return &logger{z: z}, nil
}

func (l *logger) Debug(_ context.Context, msg string, fields ...observability.Field) {
	l.z.Debug(msg, toZapFields(fields)...)
}

func (l *logger) Info(_ context.Context, msg string, fields ...observability.Field) {
	l.z.Info(msg, toZapFields(fields)...)
}

func (l *logger) Warn(_ context.Context, msg string, fields ...observability.Field) {
	l.z.Warn(msg, toZapFields(fields)...)
}

func (l *logger) Error(_ context.Context, msg string, fields ...observability.Field) {
	l.z.Error(msg, toZapFields(fields)...)
}

func (l *logger) With(fields ...observability.Field) observability.Logger {
	return &logger{z: l.z.With(toZapFields(fields)...)}
}

func toZapFields(fields []observability.Field) []zap.Field {
	out := make([]zap.Field, 0, len(fields))
	for _, f := range fields {
		out = append(out, zap.Any(f.Key, f.Value))
	}
	return out
}
