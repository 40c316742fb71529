package schema

import (
	"strings"
)

// QuoteIdent quotes a SQL identifier, escaping embedded double quotes.
func QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

type Kind string

const (
	KindText     Kind = "text"
	KindNumber   Kind = "number"
	KindDate     Kind = "date"
	KindBoolean  Kind = "boolean"
	KindSelect   Kind = "select"
	KindCurrency Kind = "currency"
)

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindText, KindNumber, KindDate, KindBoolean, KindSelect, KindCurrency:
		return true
	}
	return false
}

// IsNumeric returns true for kinds compared as numbers.
func (k Kind) IsNumeric() bool {
	return k == KindNumber || k == KindCurrency
}

// Source records where a field's value comes from.
type Source int

const (
	SourceNative   Source = iota // a column on the record's own table
	SourceJoin                   // display value of a related record
	SourceComputed               // aggregate over related records
	SourceCustom                 // tenant-defined, stored in the extension blob
)

func (s Source) String() string {
	switch s {
	case SourceNative:
		return "native"
	case SourceJoin:
		return "join"
	case SourceComputed:
		return "computed"
	case SourceCustom:
		return "custom"
	default:
		return "unknown"
	}
}

type FieldDef struct {
	Key            string
	Label          string
	Kind           Kind
	Options        []string
	Source         Source
	DefaultVisible bool
	// Multi marks list-valued native attributes (e.g. tags).
	Multi bool
	// Column is the storage column for native fields.
	Column string
}

func (f *FieldDef) IsJoin() bool     { return f.Source == SourceJoin }
func (f *FieldDef) IsComputed() bool { return f.Source == SourceComputed }
func (f *FieldDef) IsCustom() bool   { return f.Source == SourceCustom }

// Pushable reports whether the backing store can filter and order by this
// field on its own columns.
func (f *FieldDef) Pushable() bool {
	return f.Source == SourceNative && !f.Multi
}

// CustomField is a tenant-defined extension to a record type.
type CustomField struct {
	Key       string
	Label     string
	Kind      Kind
	Options   []string
	SortOrder int
}

// CustomPrefix namespaces custom field keys so they cannot collide with
// native keys.
const CustomPrefix = "cf_"

// ReportKey returns the namespaced key a report uses for this field.
func (c CustomField) ReportKey() string { return CustomPrefix + c.Key }

// Def converts the custom field into a report field definition.
func (c CustomField) Def() FieldDef {
	kind := c.Kind
	if !kind.Valid() {
		kind = KindText
	}
	return FieldDef{
		Key:     c.ReportKey(),
		Label:   c.Label,
		Kind:    kind,
		Options: c.Options,
		Source:  SourceCustom,
		Column:  c.Key,
	}
}

// Row is one materialized, enriched record keyed by field key.
type Row map[string]any

// Clone returns a shallow copy of the row.
func (r Row) Clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// ID returns the row's id as a string, or "" when absent.
func (r Row) ID() string {
	if v, ok := r["id"].(string); ok {
		return v
	}
	return ""
}
