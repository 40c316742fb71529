package store

import (
	"context"
	"fmt"

	"github.com/atlekbai/report_engine/internal/query"
	"github.com/atlekbai/report_engine/internal/schema"
)

// Store is the backing store the report engine reads from.
type Store interface {
	// Select runs the primary query of a report.
	Select(ctx context.Context, q query.Select) ([]schema.Row, error)
	// Fetch loads every row of a table whose column holds one of the values.
	Fetch(ctx context.Context, q query.Fetch) ([]schema.Row, error)
}

// SQLStore implements Store on top of a SQL database.
type SQLStore struct {
	q       Querier
	builder *query.Builder
}

func NewSQLStore(q Querier, d query.Dialect) *SQLStore {
	return &SQLStore{q: q, builder: query.NewBuilder(d)}
}

func (s *SQLStore) Dialect() query.Dialect { return s.builder.Dialect() }

func (s *SQLStore) Select(ctx context.Context, q query.Select) ([]schema.Row, error) {
	sqlStr, args, err := s.builder.BuildSelect(q)
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}
	raw, err := s.q.QueryMaps(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", q.Table, err)
	}
	return normalizeRows(raw, q.Kinds, q.ListColumns), nil
}

func (s *SQLStore) Fetch(ctx context.Context, q query.Fetch) ([]schema.Row, error) {
	if len(q.Values) == 0 {
		return nil, nil
	}
	sqlStr, args, err := s.builder.BuildFetch(q)
	if err != nil {
		return nil, fmt.Errorf("build fetch: %w", err)
	}
	raw, err := s.q.QueryMaps(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("fetch %s by %s: %w", q.Table, q.Column, err)
	}
	return normalizeRows(raw, nil, nil), nil
}
