package handler

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/atlekbai/report_engine/internal/report"
)

var reservedParams = map[string]bool{
	"columns":     true,
	"sort":        true,
	"format":      true,
	"name":        true,
	"description": true,
}

// ParseDefinition builds a report definition from query parameters:
//
//	?columns=first_name,company_name&sort=company_name.asc&status=is.active
//
// Any non-reserved parameter is a filter on the field it names, written as
// op.value. Field and operator compatibility is left to normalization.
func ParseDefinition(recordType string, q url.Values) (report.Definition, error) {
	def := report.Definition{
		RecordType:  recordType,
		Name:        q.Get("name"),
		Description: q.Get("description"),
	}

	if cols := q.Get("columns"); cols != "" {
		for _, c := range strings.Split(cols, ",") {
			if c = strings.TrimSpace(c); c != "" {
				def.Columns = append(def.Columns, c)
			}
		}
	}

	if s := q.Get("sort"); s != "" {
		field, dir, _ := strings.Cut(s, ".")
		def.Sort = &report.Sort{Field: field, Direction: report.Asc}
		if strings.EqualFold(dir, string(report.Desc)) {
			def.Sort.Direction = report.Desc
		}
	}

	keys := make([]string, 0, len(q))
	for key := range q {
		if !reservedParams[key] {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	for _, key := range keys {
		for _, raw := range q[key] {
			op, val, err := report.ParseFilter(raw)
			if err != nil {
				return report.Definition{}, fmt.Errorf("filter %q: %w", key, err)
			}
			def.Filters = append(def.Filters, report.Filter{Field: key, Operator: op, Value: val})
		}
	}

	return def, nil
}
