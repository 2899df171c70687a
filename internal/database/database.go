// Shoprec - Implicit-Feedback Item Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shoprec

package database

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"net/url"
	"runtime"
	"strconv"
	"time"

	_ "github.com/duckdb/duckdb-go/v2" // DuckDB driver

	"github.com/tomtom215/shoprec/internal/config"
	"github.com/tomtom215/shoprec/internal/logging"
)

// DB is an in-memory DuckDB instance used to read the event exports.
// Nothing is persisted; every query reads the CSV files directly.
type DB struct {
	conn *sql.DB
	cfg  *config.DataConfig
}

// New opens an in-memory DuckDB configured from cfg.
func New(cfg *config.DataConfig) (*DB, error) {
	if cfg == nil {
		return nil, fmt.Errorf("data config is required")
	}

	conn, err := sql.Open("duckdb", dsn(&cfg.DuckDB))
	if err != nil {
		return nil, fmt.Errorf("failed to open duckdb: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := conn.PingContext(pingCtx); err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("failed to ping duckdb: %w", err)
	}

	configureConnectionPool(conn)

	logging.Debug().
		Str("data_dir", cfg.Dir).
		Str("max_memory", cfg.DuckDB.MaxMemory).
		Int("threads", cfg.DuckDB.Threads).
		Msg("DuckDB reader opened")

	return &DB{conn: conn, cfg: cfg}, nil
}

// dsn builds an in-memory connection string. Insertion order is preserved
// so rows come back in file order.
func dsn(cfg *config.DuckDBConfig) string {
	threads := cfg.Threads
	if threads <= 0 {
		threads = runtime.NumCPU()
	}
	q := url.Values{}
	q.Set("threads", strconv.Itoa(threads))
	q.Set("preserve_insertion_order", "true")
	if cfg.MaxMemory != "" {
		q.Set("max_memory", cfg.MaxMemory)
	}
	return "?" + q.Encode()
}

func configureConnectionPool(conn *sql.DB) {
	conn.SetMaxOpenConns(runtime.NumCPU())
	conn.SetMaxIdleConns(2)
	conn.SetConnMaxIdleTime(5 * time.Minute)
}

// Ping verifies the connection is alive.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// Close closes the connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// closeQuietly closes a resource and explicitly ignores any error.
// Use this for cleanup in error paths where Close() errors are not actionable.
func closeQuietly(closer io.Closer) {
	if closer != nil {
		_ = closer.Close() //nolint:errcheck // cleanup is best-effort
	}
}
