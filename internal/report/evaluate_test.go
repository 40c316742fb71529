package report

import (
	"testing"

	"github.com/atlekbai/report_engine/internal/schema"
)

func TestMatch(t *testing.T) {
	tests := []struct {
		name    string
		value   any
		kind    schema.Kind
		op      schema.Operator
		operand string
		want    bool
	}{
		// text
		{"equals ignores case", "Acme", schema.KindText, schema.OpEquals, "ACME", true},
		{"equals mismatch", "Acme", schema.KindText, schema.OpEquals, "Zeta", false},
		{"equals null", nil, schema.KindText, schema.OpEquals, "x", false},
		{"not equals null", nil, schema.KindText, schema.OpNotEquals, "x", true},
		{"not equals same", "acme", schema.KindText, schema.OpNotEquals, "ACME", false},
		{"contains", "Acme Corp", schema.KindText, schema.OpContains, "me c", true},
		{"contains null", nil, schema.KindText, schema.OpContains, "a", false},
		{"contains literal percent", "50% off", schema.KindText, schema.OpContains, "50%", true},
		{"contains no wildcard", "5000 off", schema.KindText, schema.OpContains, "50%", false},
		{"starts with", "Acme", schema.KindText, schema.OpStartsWith, "ac", true},
		{"starts with miss", "Acme", schema.KindText, schema.OpStartsWith, "me", false},
		{"list contains", []any{"vip", "beta"}, schema.KindText, schema.OpContains, "BETA", true},

		// select
		{"is", "active", schema.KindSelect, schema.OpIs, "Active", true},
		{"is not", "lead", schema.KindSelect, schema.OpIsNot, "active", true},
		{"is not null", nil, schema.KindSelect, schema.OpIsNot, "active", true},

		// numeric
		{"number equals", float64(5), schema.KindNumber, schema.OpEquals, "5.0", true},
		{"number from text", "12", schema.KindNumber, schema.OpGt, "10", true},
		{"gt null", nil, schema.KindNumber, schema.OpGt, "0", false},
		{"gt non-numeric operand", float64(5), schema.KindNumber, schema.OpGt, "abc", false},
		{"gte boundary", float64(10), schema.KindCurrency, schema.OpGte, "10", true},
		{"lt", float64(9.99), schema.KindCurrency, schema.OpLt, "10", true},
		{"lte miss", float64(11), schema.KindCurrency, schema.OpLte, "10", false},
		{"equals non-numeric operand", float64(5), schema.KindNumber, schema.OpEquals, "five", false},
		{"not equals non-numeric operand", float64(5), schema.KindNumber, schema.OpNotEquals, "five", true},
		{"not equals number", float64(5), schema.KindNumber, schema.OpNotEquals, "5", false},
		{"not equals non-numeric value", "n/a", schema.KindNumber, schema.OpNotEquals, "5", true},

		// dates
		{"before", "2024-01-15T00:00:00Z", schema.KindDate, schema.OpBefore, "2024-02-01", true},
		{"after", "2024-01-15T00:00:00Z", schema.KindDate, schema.OpAfter, "2024-02-01", false},
		{"after offset operand", "2024-03-01T09:00:00Z", schema.KindDate, schema.OpAfter, "2024-03-01T10:00:00+02:00", true},
		{"before null", nil, schema.KindDate, schema.OpBefore, "2024-02-01", false},
		{"before bad operand", "2024-01-15T00:00:00Z", schema.KindDate, schema.OpBefore, "soon", false},
		{"equals whole day", "2024-03-01T23:59:59Z", schema.KindDate, schema.OpEquals, "2024-03-01", true},
		{"equals next day", "2024-03-02T00:00:00Z", schema.KindDate, schema.OpEquals, "2024-03-01", false},
		{"equals instant", "2024-03-01T10:00:00Z", schema.KindDate, schema.OpEquals, "2024-03-01T10:00:00Z", true},
		{"is empty null date", nil, schema.KindDate, schema.OpIsEmpty, "", true},
		{"is not empty date", "2024-03-01T10:00:00Z", schema.KindDate, schema.OpIsNotEmpty, "", true},

		// emptiness
		{"is empty blank", "", schema.KindText, schema.OpIsEmpty, "", true},
		{"is empty list", []any{}, schema.KindText, schema.OpIsEmpty, "", true},
		{"is empty zero", float64(0), schema.KindNumber, schema.OpIsEmpty, "", false},
		{"is not empty null", nil, schema.KindText, schema.OpIsNotEmpty, "", false},

		// boolean
		{"is true", true, schema.KindBoolean, schema.OpIsTrue, "", true},
		{"is true null", nil, schema.KindBoolean, schema.OpIsTrue, "", false},
		{"is false", false, schema.KindBoolean, schema.OpIsFalse, "", true},
		{"is false null", nil, schema.KindBoolean, schema.OpIsFalse, "", false},
		{"bool equals", true, schema.KindBoolean, schema.OpEquals, "TRUE", true},

		{"unknown operator", "x", schema.KindText, schema.Operator("matches"), "x", false},
	}
	for _, tt := range tests {
		if got := Match(tt.value, tt.kind, tt.op, tt.operand); got != tt.want {
			t.Errorf("%s: Match(%#v, %s, %s, %q): expected %v, got %v", tt.name, tt.value, tt.kind, tt.op, tt.operand, tt.want, got)
		}
	}
}
