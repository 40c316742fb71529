package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/atlekbai/report_engine/internal/schema"
)

// ErrUnknownRecordType is returned when a definition names a record type the
// registry does not know.
var ErrUnknownRecordType = errors.New("unknown record type")

type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Definition describes a report to run against one record type.
type Definition struct {
	RecordType  string   `json:"record_type"`
	Name        string   `json:"name,omitempty"`
	Description string   `json:"description,omitempty"`
	Columns     []string `json:"columns"`
	Filters     []Filter `json:"filters,omitempty"`
	Sort        *Sort    `json:"sort,omitempty"`
}

type Filter struct {
	Field    string          `json:"field"`
	Operator schema.Operator `json:"operator"`
	Value    string          `json:"value,omitempty"`
}

// UnmarshalJSON accepts scalar values of any JSON type for the filter value.
func (f *Filter) UnmarshalJSON(data []byte) error {
	var raw struct {
		Field    string          `json:"field"`
		Operator schema.Operator `json:"operator"`
		Value    json.RawMessage `json:"value"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	f.Field = raw.Field
	f.Operator = raw.Operator
	f.Value = ""

	if len(raw.Value) == 0 || string(raw.Value) == "null" {
		return nil
	}
	var v any
	if err := json.Unmarshal(raw.Value, &v); err != nil {
		return err
	}
	switch v := v.(type) {
	case string:
		f.Value = v
	case float64:
		f.Value = strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		f.Value = strconv.FormatBool(v)
	default:
		return fmt.Errorf("filter %q: value must be a scalar", raw.Field)
	}
	return nil
}

type Sort struct {
	Field     string    `json:"field"`
	Direction Direction `json:"direction"`
}

// ParseFilter parses the compact "op.value" filter form. Operators that take
// no value may be written bare, e.g. "is_empty".
func ParseFilter(raw string) (schema.Operator, string, error) {
	before, after, _ := strings.Cut(raw, ".")

	op := schema.Operator(before)
	if !op.Known() {
		return "", "", fmt.Errorf("unknown filter operator %q", before)
	}
	if op.NeedsValue() && after == "" {
		return "", "", fmt.Errorf("invalid filter format %q, expected op.value", raw)
	}
	if !op.NeedsValue() {
		after = ""
	}
	return op, after, nil
}

// Plan is a normalized definition with every referenced field resolved.
type Plan struct {
	RecordType *schema.RecordType
	Fields     *schema.Resolution
	Columns    []*schema.FieldDef
	Filters    []Condition
	Sort       SortField
}

// Condition is a filter whose field and operator are known to be compatible.
type Condition struct {
	Field *schema.FieldDef
	Op    schema.Operator
	Value string
}

type SortField struct {
	Field *schema.FieldDef
	Desc  bool
}

// Normalize resolves a definition against the registry and the tenant's
// custom fields. Unknown columns are dropped, falling back to the default
// visible columns when none remain. Filters on unknown fields, with an
// operator outside the field kind's set, or missing a required value are
// dropped; an undefined cf_ key filters as text on the extension blob. An
// unknown sort field becomes the record type's default sort field and an
// unrecognised direction becomes descending.
func Normalize(reg *schema.Registry, custom []schema.CustomField, def Definition) (*Plan, error) {
	rt := reg.RecordType(def.RecordType)
	if rt == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRecordType, def.RecordType)
	}
	res := schema.Resolve(rt, custom)

	plan := &Plan{RecordType: rt, Fields: res}

	seen := make(map[string]bool, len(def.Columns))
	for _, key := range def.Columns {
		f := res.Field(key)
		if f == nil || seen[key] {
			continue
		}
		seen[key] = true
		plan.Columns = append(plan.Columns, f)
	}
	if len(plan.Columns) == 0 {
		for _, key := range res.DefaultColumns() {
			plan.Columns = append(plan.Columns, res.Field(key))
		}
	}

	for _, flt := range def.Filters {
		f := res.FilterField(flt.Field)
		if f == nil {
			continue
		}
		op := canonicalOp(f.Kind, flt.Operator)
		if !schema.Allows(f.Kind, op) {
			continue
		}
		value := flt.Value
		if !op.NeedsValue() {
			value = ""
		} else if strings.TrimSpace(value) == "" {
			continue
		}
		plan.Filters = append(plan.Filters, Condition{Field: f, Op: op, Value: value})
	}

	plan.Sort = SortField{Field: res.Field(rt.DefaultSort), Desc: true}
	if def.Sort != nil {
		if f := res.Field(def.Sort.Field); f != nil {
			plan.Sort.Field = f
		}
		plan.Sort.Desc = !strings.EqualFold(string(def.Sort.Direction), string(Asc))
	}
	return plan, nil
}

// canonicalOp maps equals and not_equals on a select field to is and is_not,
// which compare the same way.
func canonicalOp(kind schema.Kind, op schema.Operator) schema.Operator {
	if kind != schema.KindSelect {
		return op
	}
	switch op {
	case schema.OpEquals:
		return schema.OpIs
	case schema.OpNotEquals:
		return schema.OpIsNot
	}
	return op
}
