package bgserver

import (
	"context"
	"errors"
	"time"

	"github.com/hangfire-go/corekit/pkg/observability"
)

// automaticRetryTask runs one invocation of process, retrying on
// failure with exponential-jitter backoff. stoppedCtx is passed to the
// process body itself (the "stopped" signal escalates cooperative
// cancellation of in-flight work); shutdownCtx governs the two
// most-urgent behaviors: an OperationCanceled error during shutdown is
// rethrown immediately, and a wait between attempts breaks early
// without consuming another attempt.
func automaticRetryTask(stoppedCtx, shutdownCtx context.Context, process BackgroundProcess, cfg *Config, o11y observability.Observability) error {
	bo := newJitterBackoff(cfg.MaxRetryDelay)
	duration := o11y.Metrics().Histogram(
		"bgserver.process.duration",
		"wall-clock time a single process invocation takes, success or failure",
		"ms",
	)

	for attempt := 0; ; attempt++ {
		start := time.Now()
		err := invokeProcess(stoppedCtx, process)
		duration.Record(stoppedCtx, float64(time.Since(start).Milliseconds()),
			observability.String("process", process.Name()),
			observability.Bool("failed", err != nil),
		)
		if err == nil {
			return nil
		}

		if isCancellation(err) && shutdownCtx.Err() != nil {
			return err
		}

		if attempt >= cfg.MaxAttempts-1 {
			logRetryExhausted(o11y, process.Name(), attempt, err)
			return err
		}

		delay := bo.NextBackOff()
		logRetryAttempt(o11y, process.Name(), attempt, delay, err)
		retryAttemptsCounter(o11y).Increment(stoppedCtx, observability.String("process", process.Name()))

		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-shutdownCtx.Done():
			timer.Stop()
			return shutdownCtx.Err()
		}
	}
}

func retryAttemptsCounter(o11y observability.Observability) observability.Counter {
	return o11y.Metrics().Counter(
		"bgserver.process.retry_attempts",
		"number of times a background process was retried after a failed invocation",
		"1",
	)
}

func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func logRetryAttempt(o11y observability.Observability, process string, attempt int, delay time.Duration, err error) {
	fields := []observability.Field{
		observability.String("process", process),
		observability.Int("attempt", attempt),
		observability.String("delay", delay.String()),
		observability.Error(err),
	}
	logger := o11y.Logger()
	switch logLevelForAttempt(attempt) {
	case "debug":
		logger.Debug(context.Background(), "process failed, retrying", fields...)
	case "info":
		logger.Info(context.Background(), "process failed, retrying", fields...)
	case "warn":
		logger.Warn(context.Background(), "process failed, retrying", fields...)
	default:
		logger.Error(context.Background(), "process failed, retrying", fields...)
	}
}

func logRetryExhausted(o11y observability.Observability, process string, attempt int, err error) {
	o11y.Logger().Error(context.Background(), "process exhausted retry attempts",
		observability.String("process", process),
		observability.Int("attempts", attempt+1),
		observability.Error(err),
	)
}
