package bgserver

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/hangfire-go/corekit/pkg/observability"
)

// dispatcherCounter names each dispatcher goroutine across the process
// lifetime; it is process-wide mutable state used only for naming, per
// spec.md §9.
var dispatcherCounter atomic.Int64

func nextDispatcherID() int64 {
	return dispatcherCounter.Add(1)
}

// signals carries the server's three nested cancellation sources,
// along with the cancel funcs that fire them, down to every dispatcher
// goroutine.
type signals struct {
	stopping       context.Context
	stoppingCancel context.CancelFunc
	stopped        context.Context
	stoppedCancel  context.CancelFunc
	shutdown       context.Context
	shutdownCancel context.CancelFunc
}

// runDispatcher owns one process's supervisor goroutine:
// infiniteLoopTask(automaticRetryTask(process)) wrapped in a
// recover-and-restart envelope, the Go analog of spec.md §4.2's
// "BackgroundExecution" subsystem, so that a panic or propagated error
// from the supervisor body itself is retried after RestartDelay rather
// than silently killing the goroutine.
func runDispatcher(sig signals, process BackgroundProcess, cfg *Config, o11y observability.Observability, id int64) {
	name := fmt.Sprintf("BackgroundServerProcess #%d", id)

	for {
		func() {
			defer func() {
				if r := recover(); r != nil {
					o11y.Logger().Error(context.Background(), "dispatcher panic recovered",
						observability.String("dispatcher", name),
						observability.String("process", process.Name()),
						observability.Any("panic", r),
					)
				}
			}()

			if err := infiniteLoopTask(sig.stopping, sig.stopped, sig.shutdown, process, cfg, o11y); err != nil {
				o11y.Logger().Error(context.Background(), "process supervisor exited",
					observability.String("dispatcher", name),
					observability.String("process", process.Name()),
					observability.Error(err),
				)
			}
		}()

		if sig.stopping.Err() != nil {
			return
		}

		timer := time.NewTimer(cfg.RestartDelay)
		select {
		case <-timer.C:
		case <-sig.shutdown.Done():
			timer.Stop()
			return
		}
	}
}
