package schema

import "strings"

// Resolution is the flat field table used for one report execution. It is
// built once from the registry and the tenant's custom fields so filtering
// and sorting look fields up by key without branching on provenance.
type Resolution struct {
	RecordType *RecordType
	fields     map[string]*FieldDef
	ordered    []*FieldDef
}

// Resolve builds the resolution table of a record type. Custom fields whose
// namespaced key collides with a registry field are ignored.
func Resolve(rt *RecordType, custom []CustomField) *Resolution {
	res := &Resolution{
		RecordType: rt,
		fields:     make(map[string]*FieldDef, len(rt.Fields)+len(custom)),
	}
	for i := range rt.Fields {
		f := &rt.Fields[i]
		res.fields[f.Key] = f
		res.ordered = append(res.ordered, f)
	}

	sorted := make([]CustomField, len(custom))
	copy(sorted, custom)
	SortCustomFields(sorted)
	for _, c := range sorted {
		def := c.Def()
		if _, exists := res.fields[def.Key]; exists {
			continue
		}
		res.fields[def.Key] = &def
		res.ordered = append(res.ordered, &def)
	}
	return res
}

// Field returns the resolved field for key, or nil when unknown.
func (r *Resolution) Field(key string) *FieldDef {
	return r.fields[key]
}

// FilterField returns the resolved field for key. A namespaced custom key
// with no definition resolves to a text custom field read from the extension
// blob, so filters on it still apply when the tenant's catalog is missing.
func (r *Resolution) FilterField(key string) *FieldDef {
	if f := r.fields[key]; f != nil {
		return f
	}
	name, ok := strings.CutPrefix(key, CustomPrefix)
	if !ok || name == "" {
		return nil
	}
	return &FieldDef{Key: key, Label: name, Kind: KindText, Source: SourceCustom, Column: name}
}

// KindOf returns the kind of key, defaulting to text when unresolvable.
func (r *Resolution) KindOf(key string) Kind {
	if f := r.fields[key]; f != nil {
		return f.Kind
	}
	return KindText
}

// Fields returns registry fields followed by custom fields.
func (r *Resolution) Fields() []*FieldDef {
	out := make([]*FieldDef, len(r.ordered))
	copy(out, r.ordered)
	return out
}

// DefaultColumns returns the keys of fields visible in a new report.
func (r *Resolution) DefaultColumns() []string {
	var keys []string
	for _, f := range r.ordered {
		if f.DefaultVisible {
			keys = append(keys, f.Key)
		}
	}
	return keys
}
