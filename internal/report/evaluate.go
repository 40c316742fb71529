package report

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/atlekbai/report_engine/internal/query"
	"github.com/atlekbai/report_engine/internal/schema"
)

// Match evaluates a filter against an in-memory value. It reaches the same
// decision as the store predicate the query package generates for the same
// kind, operator and operand: text comparison ignores case, null fails every
// comparison except not_equals and is_empty, and operands that cannot be
// coerced never satisfy numeric or date comparisons.
func Match(value any, kind schema.Kind, op schema.Operator, operand string) bool {
	switch op {
	case schema.OpEquals, schema.OpIs:
		return equals(value, kind, operand)

	case schema.OpNotEquals, schema.OpIsNot:
		if value == nil {
			return true
		}
		if kind.IsNumeric() {
			n, ok := query.ParseNumber(operand)
			if !ok {
				return true
			}
			v := number(value)
			return math.IsNaN(v) || v != n
		}
		return strings.ToLower(str(value)) != strings.ToLower(operand)

	case schema.OpContains:
		if value == nil {
			return false
		}
		return strings.Contains(strings.ToLower(str(value)), strings.ToLower(operand))

	case schema.OpStartsWith:
		if value == nil {
			return false
		}
		return strings.HasPrefix(strings.ToLower(str(value)), strings.ToLower(operand))

	case schema.OpGt, schema.OpGte, schema.OpLt, schema.OpLte:
		n, ok := query.ParseNumber(operand)
		if !ok {
			return false
		}
		v := number(value)
		if math.IsNaN(v) {
			return false
		}
		switch op {
		case schema.OpGt:
			return v > n
		case schema.OpGte:
			return v >= n
		case schema.OpLt:
			return v < n
		default:
			return v <= n
		}

	case schema.OpBefore, schema.OpAfter:
		t, _, ok := query.ParseTime(operand)
		if !ok || value == nil {
			return false
		}
		c := compareTime(value, t)
		if op == schema.OpBefore {
			return c < 0
		}
		return c > 0

	case schema.OpIsEmpty:
		return empty(value)

	case schema.OpIsNotEmpty:
		return !empty(value)

	case schema.OpIsTrue:
		b, ok := boolean(value)
		return ok && b

	case schema.OpIsFalse:
		b, ok := boolean(value)
		return ok && !b
	}
	return false
}

func equals(value any, kind schema.Kind, operand string) bool {
	if value == nil {
		return false
	}
	switch {
	case kind.IsNumeric():
		n, ok := query.ParseNumber(operand)
		if !ok {
			return false
		}
		return number(value) == n
	case kind == schema.KindDate:
		t, dateOnly, ok := query.ParseTime(operand)
		if !ok {
			return false
		}
		if !dateOnly {
			return compareTime(value, t) == 0
		}
		return compareTime(value, t) >= 0 && compareTime(value, t.AddDate(0, 0, 1)) < 0
	case kind == schema.KindBoolean:
		want, ok := query.ParseBool(operand)
		if !ok {
			return false
		}
		b, ok := boolean(value)
		return ok && b == want
	}
	return strings.ToLower(str(value)) == strings.ToLower(operand)
}

// compareTime orders a row value against t. Row values that do not parse as
// timestamps are compared by their text against t's canonical form.
func compareTime(value any, t time.Time) int {
	if vt, ok := timestamp(value); ok {
		return vt.Compare(t)
	}
	return strings.Compare(str(value), query.FormatTime(t))
}

func timestamp(v any) (time.Time, bool) {
	switch v := v.(type) {
	case time.Time:
		return v.UTC(), true
	case string:
		t, _, ok := query.ParseTime(v)
		return t, ok
	}
	return time.Time{}, false
}

// number coerces v to a float64, returning NaN when it is not numeric.
func number(v any) float64 {
	switch v := v.(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case int32:
		return float64(v)
	case string:
		if n, ok := query.ParseNumber(v); ok {
			return n
		}
	}
	return math.NaN()
}

func boolean(v any) (bool, bool) {
	switch v := v.(type) {
	case bool:
		return v, true
	case string:
		return query.ParseBool(v)
	}
	return false, false
}

func empty(v any) bool {
	switch v := v.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case []any:
		return len(v) == 0
	}
	return false
}

// str renders a value as the text string operators compare against.
func str(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case []any:
		parts := make([]string, len(v))
		for i, e := range v {
			parts[i] = str(e)
		}
		return strings.Join(parts, ", ")
	case float64:
		return query.FormatNumber(v)
	case time.Time:
		return query.FormatTime(v)
	default:
		return fmt.Sprint(v)
	}
}
