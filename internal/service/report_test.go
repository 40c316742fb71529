package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"connectrpc.com/connect"
	"github.com/google/uuid"
	"github.com/zeromicro/go-zero/core/logx"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/atlekbai/report_engine/internal/db"
	"github.com/atlekbai/report_engine/internal/query"
	"github.com/atlekbai/report_engine/internal/report"
	"github.com/atlekbai/report_engine/internal/schema"
	"github.com/atlekbai/report_engine/internal/store"
)

var testTenant = uuid.MustParse("3c9a1f7e-5b2d-4e8a-9f6c-1d0b2a3e4f5c")

func newTestService(t *testing.T) *ReportService {
	t.Helper()
	logx.Disable()

	sqlDB, err := db.OpenSQLite(context.Background(), ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { sqlDB.Close() })
	if err := db.MigrateSQLite(sqlDB); err != nil {
		t.Fatal(err)
	}
	_, err = sqlDB.Exec(`INSERT INTO deals (id, tenant_id, title, stage, value, created_at)
		VALUES ('d1', ?, 'Renewal', 'won', 1200, '2024-01-01T00:00:00Z'),
		       ('d2', ?, 'Pilot', 'lead', 300, '2024-01-02T00:00:00Z')`,
		testTenant.String(), testTenant.String())
	if err != nil {
		t.Fatal(err)
	}

	st := store.NewSQLStore(store.NewDBQuerier(sqlDB), query.SQLite)
	return NewReportService(report.NewExecutor(schema.CRM(), nil, st, 0))
}

func mustStruct(t *testing.T, m map[string]any) *structpb.Struct {
	t.Helper()
	s, err := structpb.NewStruct(m)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

// --- Execute ---

func TestExecute(t *testing.T) {
	svc := newTestService(t)
	req := connect.NewRequest(mustStruct(t, map[string]any{
		"record_type": "deal",
		"columns":     []any{"title", "value"},
		"filters": []any{
			map[string]any{"field": "value", "operator": "gt", "value": 500},
		},
	}))
	req.Header().Set(TenantHeader, testTenant.String())

	resp, err := svc.Execute(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	fields := resp.Msg.GetFields()
	if fields["count"].GetNumberValue() != 1 {
		t.Fatalf("expected count 1, got %v", fields["count"])
	}
	row := fields["rows"].GetListValue().GetValues()[0].GetStructValue().GetFields()
	if row["title"].GetStringValue() != "Renewal" {
		t.Fatalf("expected Renewal, got %v", row["title"])
	}
}

func TestExecuteTenantFromBody(t *testing.T) {
	svc := newTestService(t)
	req := connect.NewRequest(mustStruct(t, map[string]any{
		"record_type": "deal",
		"tenant_id":   testTenant.String(),
	}))
	resp, err := svc.Execute(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.Msg.GetFields()["count"].GetNumberValue() != 2 {
		t.Fatalf("expected 2 rows, got %v", resp.Msg.GetFields()["count"])
	}
}

func TestExecuteInvalidArguments(t *testing.T) {
	svc := newTestService(t)
	tests := []struct {
		name   string
		body   map[string]any
		tenant string
	}{
		{"missing tenant", map[string]any{"record_type": "deal"}, ""},
		{"invalid tenant", map[string]any{"record_type": "deal"}, "nope"},
		{"missing record type", map[string]any{"columns": []any{"title"}}, testTenant.String()},
		{"bad filter value", map[string]any{"record_type": "deal", "filters": []any{
			map[string]any{"field": "value", "operator": "gt", "value": []any{1}},
		}}, testTenant.String()},
	}
	for _, tt := range tests {
		req := connect.NewRequest(mustStruct(t, tt.body))
		if tt.tenant != "" {
			req.Header().Set(TenantHeader, tt.tenant)
		}
		_, err := svc.Execute(context.Background(), req)
		if connect.CodeOf(err) != connect.CodeInvalidArgument {
			t.Errorf("%s: expected invalid_argument, got %v", tt.name, err)
		}
	}
}

// --- Fields ---

func TestFields(t *testing.T) {
	svc := newTestService(t)

	req := connect.NewRequest(mustStruct(t, map[string]any{"record_type": "company"}))
	req.Header().Set(TenantHeader, testTenant.String())
	resp, err := svc.Fields(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	if n := len(resp.Msg.GetFields()["fields"].GetListValue().GetValues()); n == 0 {
		t.Fatal("expected company fields")
	}

	req = connect.NewRequest(mustStruct(t, map[string]any{"record_type": "invoice"}))
	req.Header().Set(TenantHeader, testTenant.String())
	_, err = svc.Fields(context.Background(), req)
	if connect.CodeOf(err) != connect.CodeNotFound {
		t.Fatalf("expected not_found, got %v", err)
	}
	var cerr *connect.Error
	if !errors.As(err, &cerr) || !errors.Is(cerr.Unwrap(), report.ErrUnknownRecordType) {
		t.Fatalf("expected wrapped ErrUnknownRecordType, got %v", err)
	}
}

// --- Transport ---

func TestRegisterHandlerServesConnect(t *testing.T) {
	svc := newTestService(t)
	path, h := svc.RegisterHandler()
	mux := http.NewServeMux()
	mux.Handle(path, h)
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := connect.NewClient[structpb.Struct, structpb.Struct](srv.Client(), srv.URL+ExecuteProcedure)
	req := connect.NewRequest(mustStruct(t, map[string]any{
		"record_type": "deal",
		"sort":        map[string]any{"field": "value", "direction": "asc"},
	}))
	req.Header().Set(TenantHeader, testTenant.String())

	resp, err := client.CallUnary(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	rows := resp.Msg.GetFields()["rows"].GetListValue().GetValues()
	if len(rows) != 2 || rows[0].GetStructValue().GetFields()["id"].GetStringValue() != "d2" {
		t.Fatalf("expected d2 first when sorted by value asc, got %v", rows)
	}
}
