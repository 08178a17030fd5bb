package healthapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hangfire-go/corekit/pkg/bgserver"
	"github.com/hangfire-go/corekit/pkg/observability"
)

// Reporter is the subset of bgserver.Server that healthapi depends on.
// A *bgserver.Server satisfies this.
type Reporter interface {
	Health(ctx context.Context) (bgserver.HealthStatus, error)
}

// Server exposes a Reporter's status over HTTP. It owns no dashboard
// rendering: /healthz, /readyz, and /livez are a probe surface only.
type Server struct {
	router       chi.Router
	httpServer   *http.Server
	config       *Config
	reporter     Reporter
	o11y         observability.Observability
	shutdownOnce sync.Once
}

// New builds a Server routed with chi and wired to report, but does
// not start listening until Start is called.
func New(reporter Reporter, o11y observability.Observability, opts ...Option) (*Server, error) {
	if reporter == nil {
		return nil, fmt.Errorf("healthapi: reporter is required")
	}

	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Server{
		config:   cfg,
		reporter: reporter,
		o11y:     o11y,
	}

	s.router = chi.NewRouter()
	s.router.Get("/healthz", s.handleHealthz)
	s.router.Get("/readyz", s.handleReadyz)
	s.router.Get("/livez", s.handleLivez)
	if cfg.EnableMetrics {
		s.router.Handle("/metrics", promhttp.Handler())
	}

	s.httpServer = &http.Server{
		Addr:         cfg.Address,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return s, nil
}

// Start begins listening in a background goroutine and returns
// immediately. A non-ErrServerClosed failure is logged.
func (s *Server) Start() {
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			if s.o11y != nil {
				s.o11y.Logger().Error(context.Background(), "healthapi listener failed", observability.Error(err))
			}
		}
	}()
}

// Shutdown gracefully stops the HTTP listener. It is idempotent.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		err = s.httpServer.Shutdown(ctx)
	})
	return err
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	status, err := s.reporter.Health(r.Context())
	if err != nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	code := http.StatusOK
	if !status.Running {
		code = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(status)
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	status, err := s.reporter.Health(r.Context())
	if err != nil || !status.Running {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("Service Unavailable"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func (s *Server) handleLivez(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}
