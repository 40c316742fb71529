package report

import "github.com/atlekbai/report_engine/internal/schema"

// FieldInfo describes a reportable field to report builders.
type FieldInfo struct {
	Key            string            `json:"key"`
	Label          string            `json:"label"`
	Kind           schema.Kind       `json:"kind"`
	Source         string            `json:"source"`
	Options        []string          `json:"options,omitempty"`
	DefaultVisible bool              `json:"default_visible"`
	Pushable       bool              `json:"pushable"`
	Operators      []schema.Operator `json:"operators"`
}

func DescribeFields(fields []*schema.FieldDef) []FieldInfo {
	out := make([]FieldInfo, len(fields))
	for i, f := range fields {
		out[i] = FieldInfo{
			Key:            f.Key,
			Label:          f.Label,
			Kind:           f.Kind,
			Source:         f.Source.String(),
			Options:        f.Options,
			DefaultVisible: f.DefaultVisible,
			Pushable:       f.Pushable(),
			Operators:      schema.OperatorsFor(f.Kind),
		}
	}
	return out
}

// Response is the wire form of a Result.
type Response struct {
	Columns   []FieldInfo  `json:"columns"`
	Rows      []schema.Row `json:"rows"`
	Count     int          `json:"count"`
	Truncated bool         `json:"truncated,omitempty"`
}

func (r Result) Response() Response {
	rows := r.Rows
	if rows == nil {
		rows = []schema.Row{}
	}
	return Response{Columns: DescribeFields(r.Columns), Rows: rows, Count: r.Count, Truncated: r.Truncated}
}
