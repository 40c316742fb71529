package enrich

import (
	"context"
	"sort"

	"github.com/zeromicro/go-zero/core/logx"
	"golang.org/x/sync/errgroup"

	"github.com/atlekbai/report_engine/internal/schema"
	"github.com/atlekbai/report_engine/internal/store"
)

// Enricher resolves join, computed and custom field values onto primary rows.
type Enricher struct {
	store store.Store
}

func New(st store.Store) *Enricher {
	return &Enricher{store: st}
}

// Enrich returns new rows carrying every join and computed field of the
// record type plus the custom field values of each row's extension blob. The
// input rows are not modified.
//
// Each relation is fetched once, concurrently with the others. A relation
// that fails leaves its field at the default value on every row.
func (e *Enricher) Enrich(ctx context.Context, recordType, tenant string, rows []schema.Row) []schema.Row {
	rels := relationsFor(recordType)
	lookups := make([]lookup, len(rels))

	var g errgroup.Group
	for i, rel := range rels {
		keys := distinct(rows, rel.LocalKey)
		g.Go(func() error {
			l, err := e.load(ctx, tenant, rel, keys)
			if err != nil {
				logx.WithContext(ctx).Errorw("enrichment relation failed",
					logx.Field("record_type", recordType),
					logx.Field("field", rel.Field),
					logx.Field("table", rel.Table),
					logx.Field("error", err.Error()),
				)
				l = lookup{}
			}
			lookups[i] = l
			return nil
		})
	}
	_ = g.Wait()

	out := make([]schema.Row, len(rows))
	for i, r := range rows {
		out[i] = merge(r, rels, lookups)
	}
	return out
}

func merge(r schema.Row, rels []relation, lookups []lookup) schema.Row {
	row := r.Clone()
	delete(row, schema.ColumnCustomFields)
	for k, v := range CustomValues(r) {
		row[k] = v
	}
	for i, rel := range rels {
		v, ok := lookups[i][text(r[rel.LocalKey])]
		if !ok {
			v = rel.fallback()
		}
		row[rel.Field] = v
	}
	return row
}

// CustomValues returns the entries of a row's extension blob under their
// namespaced report keys. Keys absent from the blob stay absent.
func CustomValues(r schema.Row) map[string]any {
	blob, _ := r[schema.ColumnCustomFields].(map[string]any)
	out := make(map[string]any, len(blob))
	for k, v := range blob {
		out[schema.CustomPrefix+k] = v
	}
	return out
}

// distinct returns the sorted set of non-empty values of column across rows.
func distinct(rows []schema.Row, column string) []string {
	seen := make(map[string]bool)
	var keys []string
	for _, r := range rows {
		k := text(r[column])
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
