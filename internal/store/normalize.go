package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/atlekbai/report_engine/internal/query"
	"github.com/atlekbai/report_engine/internal/schema"
)

// normalizeRows converts driver values into the row value domain: string,
// float64, bool, nil, []any, and a flat map for the extension blob.
func normalizeRows(raw []map[string]any, kinds map[string]schema.Kind, listCols []string) []schema.Row {
	lists := make(map[string]bool, len(listCols))
	for _, c := range listCols {
		lists[c] = true
	}

	rows := make([]schema.Row, len(raw))
	for i, m := range raw {
		row := make(schema.Row, len(m))
		for col, v := range m {
			switch {
			case col == schema.ColumnCustomFields:
				row[col] = decodeBlob(v)
			case lists[col]:
				row[col] = decodeList(v)
			default:
				row[col] = coerce(normalizeValue(v), kinds[col])
			}
		}
		rows[i] = row
	}
	return rows
}

func normalizeValue(v any) any {
	switch v := v.(type) {
	case nil:
		return nil
	case string:
		return v
	case []byte:
		return string(v)
	case bool:
		return v
	case int:
		return float64(v)
	case int8:
		return float64(v)
	case int16:
		return float64(v)
	case int32:
		return float64(v)
	case int64:
		return float64(v)
	case uint8:
		return float64(v)
	case uint16:
		return float64(v)
	case uint32:
		return float64(v)
	case uint64:
		return float64(v)
	case float32:
		return float64(v)
	case float64:
		return v
	case time.Time:
		return query.FormatTime(v)
	case [16]byte:
		return uuid.UUID(v).String()
	case uuid.UUID:
		return v.String()
	case pgtype.Numeric:
		f, err := v.Float64Value()
		if err != nil || !f.Valid {
			return nil
		}
		return f.Float64
	case []string:
		out := make([]any, len(v))
		for i, s := range v {
			out[i] = s
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = normalizeValue(e)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, e := range v {
			out[k] = normalizeValue(e)
		}
		return out
	default:
		return fmt.Sprint(v)
	}
}

// coerce settles dialect differences for typed columns: SQLite keeps booleans
// as integers and timestamps as text.
func coerce(v any, kind schema.Kind) any {
	switch kind {
	case schema.KindBoolean:
		switch b := v.(type) {
		case float64:
			return b != 0
		case string:
			if parsed, ok := query.ParseBool(b); ok {
				return parsed
			}
		}
	case schema.KindDate:
		if s, ok := v.(string); ok {
			if t, _, ok := query.ParseTime(s); ok {
				return query.FormatTime(t)
			}
		}
	}
	return v
}

func decodeBlob(v any) map[string]any {
	switch b := normalizeValue(v).(type) {
	case map[string]any:
		return b
	case string:
		if b == "" {
			return nil
		}
		var m map[string]any
		if err := json.Unmarshal([]byte(b), &m); err != nil {
			return nil
		}
		return m
	}
	return nil
}

func decodeList(v any) any {
	switch l := normalizeValue(v).(type) {
	case []any:
		return l
	case string:
		if l == "" {
			return []any{}
		}
		var out []any
		if err := json.Unmarshal([]byte(l), &out); err != nil {
			return []any{l}
		}
		return out
	}
	return nil
}
