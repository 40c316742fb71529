package enrich

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"

	"github.com/zeromicro/go-zero/core/logx"

	"github.com/atlekbai/report_engine/internal/query"
	"github.com/atlekbai/report_engine/internal/schema"
)

// fakeStore serves Fetch from in-memory tables and records every call.
type fakeStore struct {
	mu     sync.Mutex
	tables map[string][]schema.Row
	calls  []query.Fetch
	fail   map[string]bool
}

func (s *fakeStore) Select(context.Context, query.Select) ([]schema.Row, error) {
	return nil, errors.New("not used")
}

func (s *fakeStore) Fetch(_ context.Context, q query.Fetch) ([]schema.Row, error) {
	s.mu.Lock()
	s.calls = append(s.calls, q)
	s.mu.Unlock()

	if s.fail[q.Table] {
		return nil, errors.New("table unavailable")
	}
	var out []schema.Row
	for _, r := range s.tables[q.Table] {
		if v, ok := r[q.Column].(string); ok && slices.Contains(q.Values, v) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *fakeStore) callsFor(table string) []query.Fetch {
	var out []query.Fetch
	for _, c := range s.calls {
		if c.Table == table {
			out = append(out, c)
		}
	}
	return out
}

func crmStore() *fakeStore {
	return &fakeStore{tables: map[string][]schema.Row{
		"companies": {
			{"id": "co-1", "name": "Acme"},
			{"id": "co-2", "name": "Zeta"},
		},
		"contacts": {
			{"id": "c1", "first_name": "Ada", "last_name": "Lovelace"},
			{"id": "c2", "first_name": "Grace", "last_name": ""},
		},
		"deals": {
			{"id": "d1", "contact_id": "c1", "company_id": "co-1", "title": "Engine"},
			{"id": "d2", "contact_id": "c1", "company_id": "co-1", "title": "Loom"},
			{"id": "d3", "contact_id": "c2", "company_id": "co-2", "title": "Compiler"},
		},
		"activities": {
			{"id": "a1", "contact_id": "c1", "deal_id": "d1"},
		},
	}}
}

func TestMain(m *testing.M) {
	logx.Disable()
	m.Run()
}

// --- Joins and computed fields ---

func TestEnrichContacts(t *testing.T) {
	st := crmStore()
	rows := []schema.Row{
		{"id": "c1", "company_id": "co-1", "custom_fields": map[string]any{"score": float64(7)}},
		{"id": "c2", "company_id": "co-2", "custom_fields": map[string]any{}},
		{"id": "c3", "company_id": nil, "custom_fields": nil},
	}

	out := New(st).Enrich(context.Background(), schema.RecordContact, "t", rows)

	tests := []struct {
		row  int
		key  string
		want any
	}{
		{0, "company_name", "Acme"},
		{0, "deal_count", float64(2)},
		{0, "activity_count", float64(1)},
		{0, "cf_score", float64(7)},
		{1, "company_name", "Zeta"},
		{1, "deal_count", float64(1)},
		{1, "activity_count", float64(0)},
		{2, "company_name", ""},
		{2, "deal_count", float64(0)},
	}
	for _, tt := range tests {
		if got := out[tt.row][tt.key]; got != tt.want {
			t.Errorf("row %d %s: expected %#v, got %#v", tt.row, tt.key, tt.want, got)
		}
	}
	if _, ok := out[1]["cf_score"]; ok {
		t.Error("custom value absent from the blob must stay absent")
	}
	if _, ok := out[0]["custom_fields"]; ok {
		t.Error("extension blob must not be copied into the output row")
	}
}

func TestEnrichDealAndActivityNames(t *testing.T) {
	st := crmStore()

	deals := New(st).Enrich(context.Background(), schema.RecordDeal, "t", []schema.Row{
		{"id": "d1", "company_id": "co-1", "contact_id": "c1"},
		{"id": "d3", "company_id": "co-9", "contact_id": "c2"},
	})
	if deals[0]["contact_name"] != "Ada Lovelace" || deals[1]["contact_name"] != "Grace" {
		t.Errorf("unexpected contact names %v, %v", deals[0]["contact_name"], deals[1]["contact_name"])
	}
	if deals[1]["company_name"] != "" {
		t.Errorf("expected unknown company to default, got %v", deals[1]["company_name"])
	}
	if deals[0]["activity_count"] != float64(1) {
		t.Errorf("expected one activity on d1, got %v", deals[0]["activity_count"])
	}

	acts := New(st).Enrich(context.Background(), schema.RecordActivity, "t", []schema.Row{
		{"id": "a1", "contact_id": "c1", "deal_id": "d1", "company_id": nil},
	})
	if acts[0]["deal_title"] != "Engine" || acts[0]["company_name"] != "" {
		t.Errorf("unexpected activity joins %v", acts[0])
	}
}

// --- Batching ---

func TestEnrichIssuesOneFetchPerRelation(t *testing.T) {
	st := crmStore()
	var rows []schema.Row
	for i := 0; i < 50; i++ {
		co := "co-1"
		if i%3 == 0 {
			co = "co-2"
		}
		rows = append(rows, schema.Row{"id": string(rune('A' + i)), "company_id": co})
	}

	New(st).Enrich(context.Background(), schema.RecordContact, "tenant-7", rows)

	if len(st.calls) != 3 {
		t.Fatalf("expected 3 fetches, got %d", len(st.calls))
	}
	companies := st.callsFor("companies")
	if len(companies) != 1 {
		t.Fatalf("expected a single companies fetch, got %d", len(companies))
	}
	got := slices.Clone(companies[0].Values)
	slices.Sort(got)
	if !slices.Equal(got, []string{"co-1", "co-2"}) {
		t.Fatalf("expected distinct company ids, got %v", got)
	}
	if companies[0].Tenant != "tenant-7" || companies[0].Column != "id" {
		t.Fatalf("unexpected fetch %+v", companies[0])
	}
	if deals := st.callsFor("deals"); len(deals) != 1 || len(deals[0].Values) != 50 || deals[0].Column != "contact_id" {
		t.Fatalf("expected one deals fetch by contact_id for all 50 ids, got %+v", deals)
	}
}

func TestEnrichSkipsFetchWithoutKeys(t *testing.T) {
	st := crmStore()
	New(st).Enrich(context.Background(), schema.RecordContact, "t", []schema.Row{{"id": "", "company_id": nil}})
	if len(st.calls) != 0 {
		t.Fatalf("expected no fetches, got %d", len(st.calls))
	}
}

// --- Failure and immutability ---

func TestEnrichRelationFailureUsesDefaults(t *testing.T) {
	st := crmStore()
	st.fail = map[string]bool{"deals": true}

	out := New(st).Enrich(context.Background(), schema.RecordContact, "t", []schema.Row{
		{"id": "c1", "company_id": "co-1"},
	})
	if out[0]["deal_count"] != float64(0) {
		t.Errorf("expected failed count to default to 0, got %v", out[0]["deal_count"])
	}
	if out[0]["company_name"] != "Acme" || out[0]["activity_count"] != float64(1) {
		t.Errorf("expected other relations to resolve, got %v", out[0])
	}
}

func TestEnrichDoesNotModifyInput(t *testing.T) {
	in := []schema.Row{{"id": "c1", "company_id": "co-1", "custom_fields": map[string]any{"x": "y"}}}
	New(crmStore()).Enrich(context.Background(), schema.RecordContact, "t", in)

	if len(in[0]) != 3 {
		t.Fatalf("input row was modified: %v", in[0])
	}
	if _, ok := in[0]["company_name"]; ok {
		t.Fatal("input row gained an enriched field")
	}
}

func TestEnrichUnknownRecordType(t *testing.T) {
	out := New(crmStore()).Enrich(context.Background(), "invoice", "t", []schema.Row{
		{"id": "1", "custom_fields": map[string]any{"a": "b"}},
	})
	if len(out) != 1 || out[0]["cf_a"] != "b" {
		t.Fatalf("expected custom extraction only, got %v", out)
	}
}
