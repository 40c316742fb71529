package report

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/zeromicro/go-zero/core/logx"

	"github.com/atlekbai/report_engine/internal/enrich"
	"github.com/atlekbai/report_engine/internal/query"
	"github.com/atlekbai/report_engine/internal/schema"
	"github.com/atlekbai/report_engine/internal/store"
)

// Result is the materialized output of one report execution.
type Result struct {
	Columns []*schema.FieldDef
	Rows    []schema.Row
	Count   int
	// Truncated is set when the primary query hit the row cap, so filters
	// and sorts evaluated after enrichment saw only part of the records.
	Truncated bool
}

func emptyResult() Result {
	return Result{Rows: []schema.Row{}}
}

// Executor runs report definitions against a backing store.
type Executor struct {
	registry *schema.Registry
	catalog  schema.Catalog
	store    store.Store
	enricher *enrich.Enricher
	maxRows  int
}

// NewExecutor returns an executor. maxRows caps the primary query; 0 means
// no cap.
func NewExecutor(reg *schema.Registry, catalog schema.Catalog, st store.Store, maxRows int) *Executor {
	return &Executor{
		registry: reg,
		catalog:  catalog,
		store:    st,
		enricher: enrich.New(st),
		maxRows:  maxRows,
	}
}

// Execute runs def for tenant. Filters and sorts on store columns are pushed
// into the primary query; the rest are applied after enrichment. Execute
// never fails: an unknown record type or a failed primary query yields an
// empty result.
func (e *Executor) Execute(ctx context.Context, def Definition, tenant uuid.UUID) Result {
	log := logx.WithContext(ctx)

	plan, err := Normalize(e.registry, e.customFields(ctx, def.RecordType, tenant), def)
	if err != nil {
		log.Infow("report not executed",
			logx.Field("record_type", def.RecordType),
			logx.Field("error", err.Error()),
		)
		return emptyResult()
	}
	rt := plan.RecordType

	var pushed []query.Predicate
	var deferred []Condition
	for _, c := range plan.Filters {
		if c.Field.Pushable() {
			pushed = append(pushed, query.Predicate{
				Column: c.Field.Column,
				Kind:   c.Field.Kind,
				Op:     c.Op,
				Value:  c.Value,
			})
			continue
		}
		deferred = append(deferred, c)
	}

	sortField := plan.Sort.Field
	sortDeferred := sortField != nil && !sortField.Pushable()
	order := &query.Order{Column: rt.DefaultSort, Desc: true}
	if sortField != nil && !sortDeferred {
		order = &query.Order{Column: sortField.Column, Desc: plan.Sort.Desc}
	}

	primary, err := e.store.Select(ctx, query.Select{
		Table:       rt.Table,
		Columns:     rt.Columns(),
		Tenant:      tenant.String(),
		Predicates:  pushed,
		Order:       order,
		Limit:       e.maxRows,
		Kinds:       nativeKinds(rt),
		ListColumns: rt.ListColumns(),
	})
	if err != nil {
		log.Errorw("report primary query failed",
			logx.Field("record_type", rt.Name),
			logx.Field("tenant", tenant.String()),
			logx.Field("error", err.Error()),
		)
		return emptyResult()
	}

	rows := e.enricher.Enrich(ctx, rt.Name, tenant.String(), primary)

	if len(deferred) > 0 {
		kept := rows[:0]
		for _, r := range rows {
			if matchAll(r, deferred) {
				kept = append(kept, r)
			}
		}
		rows = kept
	}

	if sortDeferred {
		SortRows(rows, sortField.Key, sortField.Kind, plan.Sort.Desc)
	}

	return Result{
		Columns:   plan.Columns,
		Rows:      rows,
		Count:     len(rows),
		Truncated: e.maxRows > 0 && len(primary) >= e.maxRows,
	}
}

// Fields returns the registry and custom fields a report on recordType may
// reference. An unknown record type has no fields.
func (e *Executor) Fields(ctx context.Context, recordType string, tenant uuid.UUID) []*schema.FieldDef {
	rt := e.registry.RecordType(recordType)
	if rt == nil {
		return nil
	}
	return schema.Resolve(rt, e.customFields(ctx, recordType, tenant)).Fields()
}

// Registry returns the record type registry the executor resolves against.
func (e *Executor) Registry() *schema.Registry { return e.registry }

func (e *Executor) customFields(ctx context.Context, recordType string, tenant uuid.UUID) []schema.CustomField {
	if e.catalog == nil || e.registry.RecordType(recordType) == nil {
		return nil
	}
	fields, err := e.catalog.FieldsFor(ctx, recordType, tenant)
	if err != nil && !errors.Is(err, context.Canceled) {
		logx.WithContext(ctx).Errorw("load custom fields failed",
			logx.Field("record_type", recordType),
			logx.Field("tenant", tenant.String()),
			logx.Field("error", err.Error()),
		)
	}
	return fields
}

func matchAll(r schema.Row, conds []Condition) bool {
	for _, c := range conds {
		if !Match(r[c.Field.Key], c.Field.Kind, c.Op, c.Value) {
			return false
		}
	}
	return true
}

func nativeKinds(rt *schema.RecordType) map[string]schema.Kind {
	kinds := make(map[string]schema.Kind, len(rt.Fields))
	for _, f := range rt.Fields {
		if f.Source == schema.SourceNative {
			kinds[f.Column] = f.Kind
		}
	}
	return kinds
}
