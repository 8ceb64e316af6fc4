// internal/common/database/postgres.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"mentoloop-waitlist/internal/common/config"

	_ "github.com/lib/pq"
)

// PostgresClient wraps the SQL database connection. When the store is
// unconfigured the client is constructed with a nil DB so callers can fail
// fast without attempting network I/O.
type PostgresClient struct {
	DB *sql.DB
}

// NewPostgres creates a new PostgreSQL client. An unconfigured cfg yields a
// degraded client rather than an error.
func NewPostgres(cfg config.PostgresConfig) (*PostgresClient, error) {
	if !cfg.IsConfigured() {
		return &PostgresClient{}, nil
	}

	db, err := sql.Open("postgres", cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxIdle)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	return &PostgresClient{DB: db}, nil
}

// Configured reports whether a real connection pool is behind this client.
func (c *PostgresClient) Configured() bool {
	return c != nil && c.DB != nil
}

// Ping tests the database connection.
func (c *PostgresClient) Ping(ctx context.Context) error {
	if !c.Configured() {
		return fmt.Errorf("postgres is not configured")
	}
	return c.DB.PingContext(ctx)
}

// Close closes the database connection.
func (c *PostgresClient) Close() error {
	if c != nil && c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
