package store

import (
	"context"
	"database/sql"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Querier runs a read query and returns each row as a column→value map.
type Querier interface {
	QueryMaps(ctx context.Context, sql string, args ...any) ([]map[string]any, error)
}

// PoolQuerier queries PostgreSQL through a pgx pool.
type PoolQuerier struct {
	pool *pgxpool.Pool
}

func NewPoolQuerier(pool *pgxpool.Pool) *PoolQuerier {
	return &PoolQuerier{pool: pool}
}

func (p *PoolQuerier) QueryMaps(ctx context.Context, sqlStr string, args ...any) ([]map[string]any, error) {
	rows, err := p.pool.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	var out []map[string]any
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, err
		}
		m := make(map[string]any, len(fields))
		for i, f := range fields {
			m[f.Name] = values[i]
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// DBQuerier queries any database/sql driver.
type DBQuerier struct {
	db *sql.DB
}

func NewDBQuerier(db *sql.DB) *DBQuerier {
	return &DBQuerier{db: db}
}

func (d *DBQuerier) QueryMaps(ctx context.Context, sqlStr string, args ...any) ([]map[string]any, error) {
	rows, err := d.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var out []map[string]any
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		m := make(map[string]any, len(cols))
		for i, c := range cols {
			m[c] = values[i]
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
