package database

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Config holds database connection configuration
type Config struct {
	DatabaseURL string
	MaxConns    int32
	MinConns    int32
	MaxConnIdle time.Duration
	MaxConnLife time.Duration
	HealthCheck time.Duration
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		MaxConns:    10,
		MinConns:    2,
		MaxConnIdle: 30 * time.Minute,
		MaxConnLife: 1 * time.Hour,
		HealthCheck: 1 * time.Minute,
	}
}

// ConfigFromEnv loads database configuration from environment variables.
// Returns (nil, false) when DATABASE_URL is unset, which callers treat as
// "run without persistence".
func ConfigFromEnv() (*Config, bool) {
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		return nil, false
	}
	cfg := DefaultConfig()
	cfg.DatabaseURL = url
	return cfg, true
}

// DB wraps a pgxpool.Pool
type DB struct {
	Pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, cfg *Config) (*DB, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	poolConfig.MaxConns = cfg.MaxConns
	poolConfig.MinConns = cfg.MinConns
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdle
	poolConfig.MaxConnLifetime = cfg.MaxConnLife
	poolConfig.HealthCheckPeriod = cfg.HealthCheck

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{Pool: pool}, nil
}

// Close closes the connection pool
func (db *DB) Close() {
	if db.Pool != nil {
		db.Pool.Close()
	}
}

// Ping verifies the database connection is alive
func (db *DB) Ping(ctx context.Context) error {
	return db.Pool.Ping(ctx)
}
