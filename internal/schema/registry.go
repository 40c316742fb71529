package schema

import (
	"sort"
)

// Columns every record table carries in addition to its field columns.
const (
	ColumnID           = "id"
	ColumnTenantID     = "tenant_id"
	ColumnCreatedAt    = "created_at"
	ColumnCustomFields = "custom_fields"
)

// RecordType describes one reportable entity category.
type RecordType struct {
	Name        string
	Title       string
	Table       string
	// ForeignKeys are stored on the table but never reported directly; join
	// plans read them from primary rows.
	ForeignKeys []string
	DefaultSort string
	Fields      []FieldDef

	fieldsByKey map[string]*FieldDef
}

func newRecordType(rt RecordType) *RecordType {
	rt.Fields = append([]FieldDef(nil), rt.Fields...)
	rt.fieldsByKey = make(map[string]*FieldDef, len(rt.Fields))
	for i := range rt.Fields {
		f := &rt.Fields[i]
		if f.Source == SourceNative && f.Column == "" {
			f.Column = f.Key
		}
		rt.fieldsByKey[f.Key] = f
	}
	if rt.DefaultSort == "" {
		rt.DefaultSort = ColumnCreatedAt
	}
	return &rt
}

// Field returns the registered field with the given key, or nil.
func (rt *RecordType) Field(key string) *FieldDef {
	return rt.fieldsByKey[key]
}

// Columns returns the physical columns the primary query selects.
func (rt *RecordType) Columns() []string {
	cols := []string{ColumnID}
	seen := map[string]bool{ColumnID: true}
	add := func(c string) {
		if !seen[c] {
			seen[c] = true
			cols = append(cols, c)
		}
	}
	for _, f := range rt.Fields {
		if f.Source == SourceNative {
			add(f.Column)
		}
	}
	for _, fk := range rt.ForeignKeys {
		add(fk)
	}
	add(ColumnCreatedAt)
	add(ColumnCustomFields)
	return cols
}

// ListColumns returns the native columns holding list values.
func (rt *RecordType) ListColumns() []string {
	var cols []string
	for _, f := range rt.Fields {
		if f.Source == SourceNative && f.Multi {
			cols = append(cols, f.Column)
		}
	}
	return cols
}

// Registry is the static catalog of reportable record types.
type Registry struct {
	types map[string]*RecordType
}

// NewRegistry builds a registry from record type descriptions.
func NewRegistry(types ...RecordType) *Registry {
	r := &Registry{types: make(map[string]*RecordType, len(types))}
	for _, rt := range types {
		r.types[rt.Name] = newRecordType(rt)
	}
	return r
}

// RecordType returns the named record type, or nil.
func (r *Registry) RecordType(name string) *RecordType {
	return r.types[name]
}

// RecordTypes returns the names of all registered record types, sorted.
func (r *Registry) RecordTypes() []string {
	names := make([]string, 0, len(r.types))
	for name := range r.types {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FieldsFor returns the native, join and computed fields of a record type.
// An unknown record type yields no fields.
func (r *Registry) FieldsFor(recordType string) []FieldDef {
	rt := r.types[recordType]
	if rt == nil {
		return nil
	}
	out := make([]FieldDef, len(rt.Fields))
	copy(out, rt.Fields)
	return out
}

// KindOf resolves the kind of a field key, checking the registry first and
// then the tenant's custom fields. Unresolvable keys are text.
func (r *Registry) KindOf(key, recordType string, custom []CustomField) Kind {
	if rt := r.types[recordType]; rt != nil {
		if f := rt.Field(key); f != nil {
			return f.Kind
		}
	}
	for _, c := range custom {
		if c.ReportKey() == key {
			if c.Kind.Valid() {
				return c.Kind
			}
			break
		}
	}
	return KindText
}
