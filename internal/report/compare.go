package report

import (
	"math"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/atlekbai/report_engine/internal/schema"
)

// SortRows orders rows by key in place. Numbers and currency compare
// numerically, dates as timestamps, and everything else by English
// collation. Null values sort last in either direction and ties fall back to
// ascending record id.
func SortRows(rows []schema.Row, key string, kind schema.Kind, desc bool) {
	cmp := newComparator(kind)
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		va, vb := cmp.value(a[key]), cmp.value(b[key])

		switch {
		case va == nil && vb == nil:
		case va == nil:
			return false
		case vb == nil:
			return true
		default:
			c := cmp.compare(va, vb)
			if desc {
				c = -c
			}
			if c != 0 {
				return c < 0
			}
		}
		return a.ID() < b.ID()
	})
}

type comparator struct {
	kind     schema.Kind
	collator *collate.Collator
}

func newComparator(kind schema.Kind) *comparator {
	return &comparator{
		kind:     kind,
		collator: collate.New(language.English),
	}
}

// value maps a row value to its sortable form, or nil when it sorts as null.
func (c *comparator) value(v any) any {
	if v == nil {
		return nil
	}
	switch {
	case c.kind.IsNumeric():
		n := number(v)
		if math.IsNaN(n) {
			return nil
		}
		return n
	case c.kind == schema.KindDate:
		if t, ok := timestamp(v); ok {
			return t
		}
		if s := str(v); s != "" {
			return s
		}
		return nil
	}
	return str(v)
}

func (c *comparator) compare(a, b any) int {
	switch a := a.(type) {
	case float64:
		b := b.(float64)
		switch {
		case a < b:
			return -1
		case a > b:
			return 1
		}
		return 0
	case string:
		if c.kind == schema.KindDate {
			return strings.Compare(a, str(b))
		}
		return c.collator.CompareString(a, b.(string))
	default:
		ta, okA := timestamp(a)
		tb, okB := timestamp(b)
		if okA && okB {
			return ta.Compare(tb)
		}
		return strings.Compare(str(a), str(b))
	}
}
