package db

import (
	"context"
	"testing"
)

func TestMigrateSQLite(t *testing.T) {
	ctx := context.Background()
	sqlDB, err := OpenSQLite(ctx, ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer sqlDB.Close()

	if err := MigrateSQLite(sqlDB); err != nil {
		t.Fatalf("first migration: %v", err)
	}
	if err := MigrateSQLite(sqlDB); err != nil {
		t.Fatalf("second migration should be a no-op, got %v", err)
	}

	for _, table := range []string{"companies", "contacts", "deals", "activities", "custom_field_definitions"} {
		var name string
		err := sqlDB.QueryRowContext(ctx,
			`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		if err != nil {
			t.Errorf("table %s missing: %v", table, err)
		}
	}
}

func TestConnectSQLite(t *testing.T) {
	conn, err := Connect(context.Background(), "sqlite", "")
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	if conn.SQL == nil || conn.Pool != nil {
		t.Fatalf("expected a database/sql handle, got %+v", conn)
	}
	if err := conn.Migrate(""); err != nil {
		t.Fatal(err)
	}
	rows, err := conn.Querier().QueryMaps(context.Background(), `SELECT COUNT(*) AS n FROM contacts`)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 || rows[0]["n"] != int64(0) {
		t.Fatalf("expected an empty contacts table, got %v", rows)
	}
}

func TestConnectRejectsUnknownDriver(t *testing.T) {
	if _, err := Connect(context.Background(), "mysql", "root@/crm"); err == nil {
		t.Fatal("expected error for unsupported driver")
	}
}

func TestPgx5URL(t *testing.T) {
	tests := map[string]string{
		"postgres://u:p@localhost:5432/crm":   "pgx5://u:p@localhost:5432/crm",
		"postgresql://u@db/crm?sslmode=off":   "pgx5://u@db/crm?sslmode=off",
		"pgx5://already@localhost/crm":        "pgx5://already@localhost/crm",
	}
	for in, want := range tests {
		if got := pgx5URL(in); got != want {
			t.Errorf("pgx5URL(%q): expected %q, got %q", in, want, got)
		}
	}
}
