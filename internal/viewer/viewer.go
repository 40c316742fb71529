package viewer

import (
	"github.com/atlekbai/report_engine/internal/report"
	"github.com/atlekbai/report_engine/internal/schema"
)

// Viewer is transient display state over one report result: an optional
// column sort chosen by the user and a row selection. It never re-queries
// the store and never changes the report's own sort.
type Viewer struct {
	format  *Formatter
	columns []*schema.FieldDef
	result  []schema.Row
	rows    []schema.Row

	sortKey  string
	sortDesc bool

	selected map[string]bool
}

func New(res report.Result, f *Formatter) *Viewer {
	v := &Viewer{format: f}
	v.Load(res)
	return v
}

// Load replaces the result and resets sort and selection.
func (v *Viewer) Load(res report.Result) {
	v.columns = res.Columns
	v.result = res.Rows
	v.rows = append([]schema.Row(nil), res.Rows...)
	v.sortKey = ""
	v.sortDesc = false
	v.selected = make(map[string]bool)
}

func (v *Viewer) Columns() []*schema.FieldDef { return v.columns }

// Rows returns the rows in display order.
func (v *Viewer) Rows() []schema.Row { return v.rows }

// ToggleSort sorts by the visible column key, ascending on first use and
// flipping direction on repeated use.
func (v *Viewer) ToggleSort(key string) {
	col := v.column(key)
	if col == nil {
		return
	}
	if v.sortKey == key {
		v.sortDesc = !v.sortDesc
	} else {
		v.sortKey = key
		v.sortDesc = false
	}

	v.rows = append(v.rows[:0:0], v.result...)
	report.SortRows(v.rows, col.Key, col.Kind, v.sortDesc)
}

// SortState reports the active column sort, if any.
func (v *Viewer) SortState() (key string, desc bool, ok bool) {
	return v.sortKey, v.sortDesc, v.sortKey != ""
}

// Toggle flips the selection of the row with the given id.
func (v *Viewer) Toggle(id string) {
	if v.selected[id] {
		delete(v.selected, id)
		return
	}
	for _, r := range v.result {
		if r.ID() == id {
			v.selected[id] = true
			return
		}
	}
}

// ToggleAll clears the selection when every row is selected and selects
// every row otherwise.
func (v *Viewer) ToggleAll() {
	if len(v.selected) == len(v.result) {
		v.selected = make(map[string]bool)
		return
	}
	for _, r := range v.result {
		v.selected[r.ID()] = true
	}
}

func (v *Viewer) IsSelected(id string) bool { return v.selected[id] }

// AllSelected reports whether the selection covers every row.
func (v *Viewer) AllSelected() bool {
	return len(v.result) > 0 && len(v.selected) == len(v.result)
}

// Selected returns the selected row ids in display order.
func (v *Viewer) Selected() []string {
	var ids []string
	for _, r := range v.rows {
		if v.selected[r.ID()] {
			ids = append(ids, r.ID())
		}
	}
	return ids
}

// Cell formats a visible column of a row.
func (v *Viewer) Cell(r schema.Row, key string) Cell {
	col := v.column(key)
	if col == nil {
		return Cell{}
	}
	return v.format.Format(r, col)
}

// Table returns the visible columns of every row, formatted, in display
// order.
func (v *Viewer) Table() [][]Cell {
	out := make([][]Cell, len(v.rows))
	for i, r := range v.rows {
		cells := make([]Cell, len(v.columns))
		for j, col := range v.columns {
			cells[j] = v.format.Format(r, col)
		}
		out[i] = cells
	}
	return out
}

func (v *Viewer) column(key string) *schema.FieldDef {
	for _, c := range v.columns {
		if c.Key == key {
			return c
		}
	}
	return nil
}
