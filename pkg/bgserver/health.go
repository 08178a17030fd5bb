package bgserver

import (
	"context"
	"time"
)

// HealthStatus reports the liveness of the processing server at a
// point in time.
type HealthStatus struct {
	ServiceName string    `json:"service_name"`
	Running     bool      `json:"running"`
	Disposed    bool      `json:"disposed"`
	Processes   []string  `json:"processes"`
	Timestamp   time.Time `json:"timestamp"`
}

// Health reports the server's current status without blocking on any
// dispatcher. A disposed server reports Running=false.
func (s *Server) Health(_ context.Context) (HealthStatus, error) {
	disposed := s.disposed.Load()
	return HealthStatus{
		ServiceName: s.config.ServiceName,
		Running:     !disposed && s.sig.stopping.Err() == nil,
		Disposed:    disposed,
		Processes:   append([]string(nil), s.names...),
		Timestamp:   time.Now(),
	}, nil
}
