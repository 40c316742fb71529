package store

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/atlekbai/report_engine/internal/query"
	"github.com/atlekbai/report_engine/internal/schema"
)

const customFieldTable = "custom_field_definitions"

// Catalog loads custom field definitions from the custom_field_definitions
// table. It implements schema.Catalog.
type Catalog struct {
	q       Querier
	dialect query.Dialect
}

func NewCatalog(q Querier, d query.Dialect) *Catalog {
	return &Catalog{q: q, dialect: d}
}

func (c *Catalog) FieldsFor(ctx context.Context, recordType string, tenant uuid.UUID) ([]schema.CustomField, error) {
	sqlStr, args, err := c.buildQuery(recordType, tenant)
	if err != nil {
		return nil, fmt.Errorf("build catalog query: %w", err)
	}

	raw, err := c.q.QueryMaps(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("load custom fields for %s: %w", recordType, err)
	}

	fields := make([]schema.CustomField, 0, len(raw))
	for _, m := range raw {
		f := schema.CustomField{
			Key:   stringOf(m["key"]),
			Label: stringOf(m["label"]),
			Kind:  schema.Kind(stringOf(m["kind"])),
		}
		if f.Key == "" {
			continue
		}
		if f.Label == "" {
			f.Label = f.Key
		}
		if n, ok := normalizeValue(m["sort_order"]).(float64); ok {
			f.SortOrder = int(n)
		}
		if opts, ok := decodeList(m["options"]).([]any); ok {
			for _, o := range opts {
				if s := stringOf(o); s != "" {
					f.Options = append(f.Options, s)
				}
			}
		}
		fields = append(fields, f)
	}

	schema.SortCustomFields(fields)
	return fields, nil
}

func (c *Catalog) buildQuery(recordType string, tenant uuid.UUID) (string, []any, error) {
	return sq.Select(`"key"`, `"label"`, `"kind"`, `"options"`, `"sort_order"`).
		From(schema.QuoteIdent(customFieldTable)).
		Where(sq.Eq{`"tenant_id"`: tenant.String(), `"record_type"`: recordType}).
		OrderBy(`"sort_order" ASC`, `"key" ASC`).
		PlaceholderFormat(c.dialect.Placeholder()).
		ToSql()
}

func stringOf(v any) string {
	switch s := normalizeValue(v).(type) {
	case nil:
		return ""
	case string:
		return s
	default:
		return fmt.Sprint(s)
	}
}
