package storage

import (
	"context"
	"database/sql"
	"sync"

	"github.com/XSAM/otelsql"
	_ "github.com/jackc/pgx/v5/stdlib"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"github.com/hangfire-go/corekit/pkg/jobperform"
)

// Connection is a pooled PostgreSQL connection satisfying
// jobperform.Connection. It is opened eagerly and pinged fail-fast, the
// same shape the teacher pack's postgres.Database uses.
type Connection struct {
	db     *sql.DB
	mu     sync.RWMutex
	closed bool
}

var _ jobperform.Connection = (*Connection)(nil)

// Open establishes a pooled connection and verifies it with a ping
// before returning.
func Open(ctx context.Context, dsn string, opts ...Option) (*Connection, error) {
	cfg := DefaultConfig()
	cfg.DSN = dsn
	for _, opt := range opts {
		opt(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	driverName, err := otelsql.Register("pgx", otelsql.WithAttributes(semconv.DBSystemPostgreSQL))
	if err != nil {
		return nil, &ConnectionError{Op: "open", Message: "failed to register traced driver", Err: err}
	}

	db, err := sql.Open(driverName, cfg.DSN)
	if err != nil {
		return nil, &ConnectionError{Op: "open", Message: "failed to open connection", Err: err}
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	pingCtx, cancel := context.WithTimeout(ctx, cfg.PingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, &ConnectionError{Op: "open", Message: "ping failed", Err: err}
	}

	return &Connection{db: db}, nil
}

// DB returns the underlying *sql.DB, or nil once the connection has
// been closed.
func (c *Connection) DB() *sql.DB {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return nil
	}
	return c.db
}

// Ping checks connectivity, respecting ctx for cancellation.
func (c *Connection) Ping(ctx context.Context) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return ErrAlreadyClosed
	}
	if err := c.db.PingContext(ctx); err != nil {
		return &ConnectionError{Op: "ping", Message: "ping failed", Err: err}
	}
	return nil
}

// Close releases the underlying pool. It is idempotent: a second call
// is a no-op returning nil.
func (c *Connection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	if err := c.db.Close(); err != nil {
		return &ConnectionError{Op: "close", Message: "failed to close connection", Err: err}
	}
	return nil
}
