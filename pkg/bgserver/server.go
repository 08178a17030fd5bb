package bgserver

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hangfire-go/corekit/pkg/observability"
	"github.com/hangfire-go/corekit/pkg/observability/noop"
)

// Server supervises a set of BackgroundProcess instances, each wrapped
// in InfiniteLoopTask(AutomaticRetryTask(process)), behind cooperative
// three-stage shutdown. Construction starts one dispatcher goroutine
// per process immediately and does not block.
type Server struct {
	config   *Config
	o11y     observability.Observability
	sig      signals
	names    []string
	wg       sync.WaitGroup
	disposed    atomic.Bool
	stopOnce    sync.Once
	disposeOnce sync.Once
}

// New constructs a Server and immediately starts a dispatcher goroutine
// for each process.
func New(o11y observability.Observability, processes []BackgroundProcess, opts ...Option) (*Server, error) {
	if len(processes) == 0 {
		return nil, &ServerError{Op: "new", Message: "at least one background process is required"}
	}

	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, &ServerError{Op: "new", Message: "invalid configuration", Err: err}
	}

	if o11y == nil {
		o11y = noop.NewProvider()
	}

	stoppingCtx, stoppingCancel := context.WithCancel(context.Background())
	stoppedCtx, stoppedCancel := context.WithCancel(context.Background())
	shutdownCtx, shutdownCancel := context.WithCancel(context.Background())

	srv := &Server{
		config: cfg,
		o11y:   o11y,
		sig: signals{
			stopping:       stoppingCtx,
			stoppingCancel: stoppingCancel,
			stopped:        stoppedCtx,
			stoppedCancel:  stoppedCancel,
			shutdown:       shutdownCtx,
			shutdownCancel: shutdownCancel,
		},
		names: make([]string, len(processes)),
	}

	for i, p := range processes {
		srv.names[i] = p.Name()
		srv.wg.Add(1)
		id := nextDispatcherID()
		go func(proc BackgroundProcess, dispatcherID int64) {
			defer srv.wg.Done()
			runDispatcher(srv.sig, proc, srv.config, srv.o11y, dispatcherID)
		}(p, id)
	}

	o11y.Logger().Info(context.Background(), "processing server started",
		observability.String("service", cfg.ServiceName),
		observability.Int("processes", len(processes)),
	)

	return srv, nil
}

// SendStop fires the "stopping" signal immediately and schedules
// "stopped" and "shutdown" to fire StopTimeout and ShutdownTimeout
// after this call, respectively. It is idempotent: only the first call
// has any effect.
func (s *Server) SendStop() error {
	if s.disposed.Load() {
		return ErrServerDisposed
	}
	s.stopOnce.Do(func() {
		s.o11y.Logger().Info(context.Background(), "stop requested", observability.String("service", s.config.ServiceName))
		s.sig.stoppingCancel()
		time.AfterFunc(s.config.StopTimeout, s.sig.stoppedCancel)
		time.AfterFunc(s.config.ShutdownTimeout, s.sig.shutdownCancel)
	})
	return nil
}

// WaitForShutdown blocks until every dispatcher goroutine has exited,
// up to ShutdownTimeout+LastChanceTimeout (or until ctx is done,
// whichever comes first), and reports whether the dispatchers actually
// stopped in time.
func (s *Server) WaitForShutdown(ctx context.Context) (bool, error) {
	if s.disposed.Load() {
		return false, ErrServerDisposed
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	timeout := s.config.ShutdownTimeout + s.config.LastChanceTimeout
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-done:
		return true, nil
	case <-timer.C:
		return false, nil
	case <-ctx.Done():
		return false, nil
	}
}

// Dispose issues SendStop if it hasn't already happened, waits for
// every dispatcher to finish, and releases all cancellation sources.
// It is idempotent via sync.Once: calling it more than once is a
// harmless no-op after the first call completes.
func (s *Server) Dispose(ctx context.Context) error {
	s.disposeOnce.Do(func() {
		s.stopOnce.Do(func() {
			s.o11y.Logger().Info(context.Background(), "stop requested", observability.String("service", s.config.ServiceName))
			s.sig.stoppingCancel()
			time.AfterFunc(s.config.StopTimeout, s.sig.stoppedCancel)
			time.AfterFunc(s.config.ShutdownTimeout, s.sig.shutdownCancel)
		})

		done := make(chan struct{})
		go func() {
			s.wg.Wait()
			close(done)
		}()

		timeout := s.config.ShutdownTimeout + s.config.LastChanceTimeout
		timer := time.NewTimer(timeout)
		defer timer.Stop()

		var stopped bool
		select {
		case <-done:
			stopped = true
		case <-timer.C:
		case <-ctx.Done():
		}

		s.sig.stoppingCancel()
		s.sig.stoppedCancel()
		s.sig.shutdownCancel()
		s.disposed.Store(true)

		s.o11y.Logger().Info(context.Background(), "processing server disposed",
			observability.String("service", s.config.ServiceName),
			observability.Bool("stopped_cleanly", stopped),
		)
	})
	return nil
}
