package bgserver

import (
	"context"

	"github.com/hangfire-go/corekit/pkg/observability"
)

// infiniteLoopTask repeats automaticRetryTask(process) while the
// "stopping" signal has not fired. It returns nil on a graceful stop,
// or the error that escaped automaticRetryTask when a process either
// exhausts its retry attempts or is interrupted by shutdown mid-wait.
func infiniteLoopTask(stoppingCtx, stoppedCtx, shutdownCtx context.Context, process BackgroundProcess, cfg *Config, o11y observability.Observability) error {
	for {
		if stoppingCtx.Err() != nil {
			return nil
		}
		if err := automaticRetryTask(stoppedCtx, shutdownCtx, process, cfg, o11y); err != nil {
			return err
		}
	}
}
