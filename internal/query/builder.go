package query

import (
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/atlekbai/report_engine/internal/schema"
)

const qAlias = "_e"

// QI is shorthand for schema.QuoteIdent.
func QI(name string) string { return schema.QuoteIdent(name) }

// Col returns the aliased, quoted reference to a column of the queried table.
func Col(name string) string { return QI(qAlias) + "." + QI(name) }

// Order is the store-level ordering of a primary query.
type Order struct {
	Column string
	Desc   bool
}

// Select describes the primary query of a report: every native column of one
// table, the pushable predicates, and the store order.
type Select struct {
	Table      string
	Columns    []string
	Tenant     string
	Predicates []Predicate
	Order      *Order
	// Limit caps the number of rows; 0 means no cap.
	Limit int
	// Kinds types the native columns so stored values decode consistently
	// across dialects.
	Kinds map[string]schema.Kind
	// ListColumns are decoded from their stored form into lists.
	ListColumns []string
}

// Fetch describes a batch fetch: every row of Table whose Column holds one of
// Values, scoped to a tenant.
type Fetch struct {
	Table   string
	Columns []string
	Tenant  string
	Column  string
	Values  []string
}

// Builder generates SQL for a dialect.
type Builder struct {
	dialect Dialect
}

// NewBuilder returns a query builder for the given dialect.
func NewBuilder(d Dialect) *Builder {
	return &Builder{dialect: d}
}

func (b *Builder) Dialect() Dialect { return b.dialect }

func (b *Builder) BuildSelect(q Select) (string, []any, error) {
	if q.Table == "" || len(q.Columns) == 0 {
		return "", nil, fmt.Errorf("select: table and columns are required")
	}

	qb := sq.Select(selectColumns(q.Columns)...).
		From(QI(q.Table) + " " + QI(qAlias)).
		Where(sq.Eq{Col(schema.ColumnTenantID): q.Tenant}).
		PlaceholderFormat(b.dialect.Placeholder())

	for _, p := range q.Predicates {
		qb = qb.Where(b.dialect.Condition(Col(p.Column), p))
	}
	for _, clause := range buildOrderBy(q.Order) {
		qb = qb.OrderBy(clause)
	}
	if q.Limit > 0 {
		qb = qb.Limit(uint64(q.Limit))
	}

	return qb.ToSql()
}

func (b *Builder) BuildFetch(q Fetch) (string, []any, error) {
	if q.Table == "" || q.Column == "" || len(q.Columns) == 0 {
		return "", nil, fmt.Errorf("fetch: table, column and columns are required")
	}

	values := q.Values
	if values == nil {
		values = []string{}
	}

	return sq.Select(selectColumns(q.Columns)...).
		From(QI(q.Table) + " " + QI(qAlias)).
		Where(sq.Eq{Col(schema.ColumnTenantID): q.Tenant}).
		Where(sq.Eq{Col(q.Column): values}).
		OrderBy(Col(schema.ColumnID) + " ASC").
		PlaceholderFormat(b.dialect.Placeholder()).
		ToSql()
}

func selectColumns(cols []string) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = Col(c)
	}
	return out
}

// buildOrderBy orders by the requested column with nulls last, then by id so
// equal sort values come back in a stable order.
func buildOrderBy(o *Order) []string {
	var clauses []string
	if o != nil && o.Column != "" && o.Column != schema.ColumnID {
		dir := "ASC"
		if o.Desc {
			dir = "DESC"
		}
		clauses = append(clauses, fmt.Sprintf("%s %s NULLS LAST", Col(o.Column), dir))
	}
	clauses = append(clauses, Col(schema.ColumnID)+" ASC")
	return clauses
}
