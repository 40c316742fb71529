package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "modernc.org/sqlite"

	"github.com/atlekbai/report_engine/internal/query"
	"github.com/atlekbai/report_engine/internal/store"
)

// NewPool opens a PostgreSQL connection pool and verifies it with a ping.
func NewPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database config: %w", err)
	}

	poolConfig.MaxConns = 10
	poolConfig.MinConns = 1
	poolConfig.MaxConnLifetime = 30 * time.Minute
	poolConfig.MaxConnIdleTime = 5 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

// OpenSQLite opens a SQLite database. An in-memory database is pinned to a
// single connection so every query sees the same data.
func OpenSQLite(ctx context.Context, path string) (*sql.DB, error) {
	dsn := path
	memory := path == "" || path == ":memory:"
	if memory {
		dsn = ":memory:"
	} else {
		dsn += "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	if memory {
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite %s: %w", path, err)
	}
	return db, nil
}

// Connection is an open backing store of either dialect.
type Connection struct {
	Dialect query.Dialect
	Pool    *pgxpool.Pool
	SQL     *sql.DB
}

// Connect opens the database named by driver and url.
func Connect(ctx context.Context, driver, url string) (*Connection, error) {
	d, ok := query.ParseDialect(driver)
	if !ok {
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	switch d {
	case query.SQLite:
		sqlDB, err := OpenSQLite(ctx, url)
		if err != nil {
			return nil, err
		}
		return &Connection{Dialect: d, SQL: sqlDB}, nil
	default:
		pool, err := NewPool(ctx, url)
		if err != nil {
			return nil, err
		}
		return &Connection{Dialect: d, Pool: pool}, nil
	}
}

// Querier returns the store querier backed by this connection.
func (c *Connection) Querier() store.Querier {
	if c.Pool != nil {
		return store.NewPoolQuerier(c.Pool)
	}
	return store.NewDBQuerier(c.SQL)
}

// Close releases the underlying pool or database handle.
func (c *Connection) Close() {
	if c.Pool != nil {
		c.Pool.Close()
	}
	if c.SQL != nil {
		c.SQL.Close()
	}
}
