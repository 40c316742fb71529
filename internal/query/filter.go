package query

import (
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"github.com/atlekbai/report_engine/internal/schema"
)

// Predicate is a filter the store evaluates on one of its own columns.
type Predicate struct {
	Column string
	Kind   schema.Kind
	Op     schema.Operator
	Value  string
}

// never and always stand in for comparisons whose operand cannot be coerced.
var (
	never  = sq.Expr("1 = 0")
	always = sq.Expr("1 = 1")
)

// Condition returns the Squirrel condition for p against the SQL expression col.
func (d Dialect) Condition(col string, p Predicate) sq.Sqlizer {
	textual := p.Kind == schema.KindText || p.Kind == schema.KindSelect

	switch p.Op {
	case schema.OpEquals, schema.OpIs:
		switch {
		case p.Kind.IsNumeric():
			n, ok := ParseNumber(p.Value)
			if !ok {
				return never
			}
			return sq.Eq{col: n}
		case p.Kind == schema.KindDate:
			return d.dateEquals(col, p.Value)
		case p.Kind == schema.KindBoolean:
			b, ok := ParseBool(p.Value)
			if !ok {
				return never
			}
			return sq.Eq{col: b}
		}
		return sq.Expr(fmt.Sprintf("LOWER(%s) = ?", col), strings.ToLower(p.Value))

	case schema.OpNotEquals, schema.OpIsNot:
		if p.Kind.IsNumeric() {
			n, ok := ParseNumber(p.Value)
			if !ok {
				return always
			}
			return sq.Or{sq.Eq{col: nil}, sq.NotEq{col: n}}
		}
		return sq.Or{
			sq.Eq{col: nil},
			sq.Expr(fmt.Sprintf("LOWER(%s) <> ?", col), strings.ToLower(p.Value)),
		}

	case schema.OpContains:
		return sq.Expr(fmt.Sprintf(`LOWER(%s) LIKE ? ESCAPE '\'`, col), "%"+escapeLike(strings.ToLower(p.Value))+"%")

	case schema.OpStartsWith:
		return sq.Expr(fmt.Sprintf(`LOWER(%s) LIKE ? ESCAPE '\'`, col), escapeLike(strings.ToLower(p.Value))+"%")

	case schema.OpGt, schema.OpGte, schema.OpLt, schema.OpLte:
		n, ok := ParseNumber(p.Value)
		if !ok {
			return never
		}
		return sq.Expr(fmt.Sprintf("%s %s ?", col, SQLOp(p.Op)), n)

	case schema.OpBefore, schema.OpAfter:
		t, _, ok := ParseTime(p.Value)
		if !ok {
			return never
		}
		return sq.Expr(fmt.Sprintf("%s %s ?", col, SQLOp(p.Op)), d.TimeArg(t))

	case schema.OpIsEmpty:
		if textual {
			return sq.Or{sq.Eq{col: nil}, sq.Eq{col: ""}}
		}
		return sq.Eq{col: nil}

	case schema.OpIsNotEmpty:
		if textual {
			return sq.And{sq.NotEq{col: nil}, sq.NotEq{col: ""}}
		}
		return sq.NotEq{col: nil}

	case schema.OpIsTrue:
		return sq.Eq{col: true}

	case schema.OpIsFalse:
		return sq.Eq{col: false}
	}

	return never
}

// dateEquals matches the whole UTC day for a date-only operand and the exact
// instant otherwise.
func (d Dialect) dateEquals(col, value string) sq.Sqlizer {
	t, dateOnly, ok := ParseTime(value)
	if !ok {
		return never
	}
	if !dateOnly {
		return sq.Eq{col: d.TimeArg(t)}
	}
	return sq.And{
		sq.GtOrEq{col: d.TimeArg(t)},
		sq.Lt{col: d.TimeArg(t.AddDate(0, 0, 1))},
	}
}

// SQLOp returns the SQL comparison for an ordering operator.
func SQLOp(op schema.Operator) string {
	switch op {
	case schema.OpGt, schema.OpAfter:
		return ">"
	case schema.OpGte:
		return ">="
	case schema.OpLt, schema.OpBefore:
		return "<"
	case schema.OpLte:
		return "<="
	default:
		return "="
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string { return likeEscaper.Replace(s) }
