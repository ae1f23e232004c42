// Package db provides PostgreSQL storage for reports, consultation requests
// and analysis events.
package db

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
)

//go:embed schema.sql
var schemaSQL string

// ErrNotFound is returned by updates and deletes that matched no row.
var ErrNotFound = errors.New("record not found")

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
	conn *sql.DB
}

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool, conn: stdlib.OpenDBFromPool(pool)}, nil
}

// New wraps an existing *sql.DB. The caller keeps ownership of conn.
func New(conn *sql.DB) *DB {
	return &DB{conn: conn}
}

// Close closes the connection pool
func (db *DB) Close() {
	if db.pool == nil {
		return
	}
	if db.conn != nil {
		_ = db.conn.Close()
	}
	db.pool.Close()
}

// Ping verifies the database is reachable.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// Migrate creates the tables and indexes if they do not exist.
func (db *DB) Migrate(ctx context.Context) error {
	if _, err := db.conn.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// Schema returns the embedded DDL.
func Schema() string {
	return schemaSQL
}
