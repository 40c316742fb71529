package enrich

import (
	"strings"

	"github.com/atlekbai/report_engine/internal/schema"
)

type aggregate int

const (
	// name looks up a display name on the related record by its id.
	name aggregate = iota
	// count counts related records that point back at the primary row.
	count
)

// relation is one hand-specified join: a single batch fetch that resolves
// one join or computed field of the primary rows.
type relation struct {
	Field string
	Agg   aggregate
	// LocalKey is the primary row column holding the lookup key.
	LocalKey string
	// Table and RemoteKey name the related rows whose RemoteKey matches.
	Table     string
	RemoteKey string
	// Columns are selected from the related table in addition to id.
	Columns []string
	// Display renders the related row for name joins.
	Display func(schema.Row) string
}

func (r relation) fallback() any {
	if r.Agg == count {
		return float64(0)
	}
	return ""
}

var plans = map[string][]relation{
	schema.RecordContact: {
		companyName(schema.ColumnCompanyID),
		countOf("deal_count", "deals", schema.ColumnContactID),
		countOf("activity_count", "activities", schema.ColumnContactID),
	},
	schema.RecordCompany: {
		countOf("contact_count", "contacts", schema.ColumnCompanyID),
		countOf("deal_count", "deals", schema.ColumnCompanyID),
	},
	schema.RecordDeal: {
		companyName(schema.ColumnCompanyID),
		contactName(schema.ColumnContactID),
		countOf("activity_count", "activities", schema.ColumnDealID),
	},
	schema.RecordActivity: {
		contactName(schema.ColumnContactID),
		{
			Field:     "deal_title",
			Agg:       name,
			LocalKey:  schema.ColumnDealID,
			Table:     "deals",
			RemoteKey: schema.ColumnID,
			Columns:   []string{"title"},
			Display:   func(r schema.Row) string { return text(r["title"]) },
		},
		companyName(schema.ColumnCompanyID),
	},
}

// relationsFor returns the join plan of a record type.
func relationsFor(recordType string) []relation {
	return plans[recordType]
}

func companyName(localKey string) relation {
	return relation{
		Field:     "company_name",
		Agg:       name,
		LocalKey:  localKey,
		Table:     "companies",
		RemoteKey: schema.ColumnID,
		Columns:   []string{"name"},
		Display:   func(r schema.Row) string { return text(r["name"]) },
	}
}

func contactName(localKey string) relation {
	return relation{
		Field:     "contact_name",
		Agg:       name,
		LocalKey:  localKey,
		Table:     "contacts",
		RemoteKey: schema.ColumnID,
		Columns:   []string{"first_name", "last_name"},
		Display: func(r schema.Row) string {
			return strings.TrimSpace(text(r["first_name"]) + " " + text(r["last_name"]))
		},
	}
}

// countOf counts rows of table whose foreignKey references the primary row.
func countOf(field, table, foreignKey string) relation {
	return relation{
		Field:     field,
		Agg:       count,
		LocalKey:  schema.ColumnID,
		Table:     table,
		RemoteKey: foreignKey,
		Columns:   []string{foreignKey},
	}
}

func text(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}
