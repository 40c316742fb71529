package query

import (
	"time"

	sq "github.com/Masterminds/squirrel"
)

// Dialect captures the differences between the SQL engines the store runs on.
type Dialect int

const (
	Postgres Dialect = iota
	SQLite
)

// ParseDialect maps a configured driver name to a dialect.
func ParseDialect(driver string) (Dialect, bool) {
	switch driver {
	case "pgx", "postgres", "postgresql":
		return Postgres, true
	case "sqlite", "sqlite3":
		return SQLite, true
	}
	return Postgres, false
}

func (d Dialect) String() string {
	if d == SQLite {
		return "sqlite"
	}
	return "postgres"
}

func (d Dialect) Placeholder() sq.PlaceholderFormat {
	if d == SQLite {
		return sq.Question
	}
	return sq.Dollar
}

// TimeArg converts t to the parameter type the dialect compares timestamps
// with. SQLite keeps timestamps as canonical text.
func (d Dialect) TimeArg(t time.Time) any {
	if d == SQLite {
		return FormatTime(t)
	}
	return t.UTC()
}
