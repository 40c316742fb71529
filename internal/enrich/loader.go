package enrich

import (
	"context"
	"time"

	"github.com/graph-gophers/dataloader"

	"github.com/atlekbai/report_engine/internal/query"
	"github.com/atlekbai/report_engine/internal/schema"
)

// batchWindow bounds how long a loader collects keys. Loaders are sized to
// their key count, so the batch dispatches as soon as the last key arrives.
const batchWindow = time.Second

// lookup maps a local key value to the resolved field value. It is built once
// per relation and only read afterwards.
type lookup map[string]any

// load resolves keys through a loader that issues exactly one store fetch.
func (e *Enricher) load(ctx context.Context, tenant string, rel relation, keys []string) (lookup, error) {
	if len(keys) == 0 {
		return lookup{}, nil
	}

	batchFn := func(ctx context.Context, dk dataloader.Keys) []*dataloader.Result {
		values := make([]string, len(dk))
		for i, k := range dk {
			values[i] = k.String()
		}

		results := make([]*dataloader.Result, len(dk))
		rows, err := e.store.Fetch(ctx, query.Fetch{
			Table:   rel.Table,
			Columns: append([]string{schema.ColumnID}, rel.Columns...),
			Tenant:  tenant,
			Column:  rel.RemoteKey,
			Values:  values,
		})
		if err != nil {
			for i := range results {
				results[i] = &dataloader.Result{Error: err}
			}
			return results
		}

		byKey := collect(rel, rows)
		for i, v := range values {
			results[i] = &dataloader.Result{Data: byKey[v]}
		}
		return results
	}

	loader := dataloader.NewBatchedLoader(batchFn,
		dataloader.WithBatchCapacity(len(keys)),
		dataloader.WithWait(batchWindow),
		dataloader.WithCache(&dataloader.NoCache{}),
	)

	dk := make(dataloader.Keys, len(keys))
	for i, k := range keys {
		dk[i] = dataloader.StringKey(k)
	}
	data, errs := loader.LoadMany(ctx, dk)()
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	out := make(lookup, len(keys))
	for i, k := range keys {
		if data[i] != nil {
			out[k] = data[i]
		}
	}
	return out, nil
}

// collect folds fetched related rows into values keyed by the remote key.
func collect(rel relation, rows []schema.Row) map[string]any {
	out := make(map[string]any, len(rows))
	for _, r := range rows {
		key := text(r[rel.RemoteKey])
		if key == "" {
			continue
		}
		switch rel.Agg {
		case count:
			n, _ := out[key].(float64)
			out[key] = n + 1
		default:
			out[key] = rel.Display(r)
		}
	}
	return out
}
