// Package models contains domain types for the polar plant EC dashboard.
package models

import "time"

// Table is an in-memory tabular dataset with named columns. Cells keep
// their source text; numeric interpretation happens at the point of use so
// a malformed cell degrades one statistic instead of failing the load.
type Table struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`

	// TimeIndex is the position of the parsed time column, or -1 when no
	// time column was parsed. When TimeIndex >= 0, Times holds one parsed
	// timestamp per row and the rows are sorted ascending by it.
	TimeIndex int         `json:"timeIndex"`
	Times     []time.Time `json:"times,omitempty"`
}

// NewTable creates an empty table with the given header.
func NewTable(columns []string) *Table {
	return &Table{
		Columns:   columns,
		Rows:      make([][]string, 0),
		TimeIndex: -1,
	}
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// ColumnIndex returns the position of the named column, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// HasColumn reports whether the named column is present.
func (t *Table) HasColumn(name string) bool {
	return t.ColumnIndex(name) >= 0
}

// Cell returns the value at (row, column index), or "" when the row is
// shorter than the header.
func (t *Table) Cell(row, col int) string {
	if col < 0 || row < 0 || row >= len(t.Rows) {
		return ""
	}
	r := t.Rows[row]
	if col >= len(r) {
		return ""
	}
	return r[col]
}

// Head returns a copy of the table truncated to at most n rows.
// Used for raw-data previews.
func (t *Table) Head(n int) *Table {
	if n < 0 || n >= len(t.Rows) {
		return t
	}
	out := &Table{
		Columns:   t.Columns,
		Rows:      t.Rows[:n],
		TimeIndex: t.TimeIndex,
	}
	if t.Times != nil {
		out.Times = t.Times[:n]
	}
	return out
}

// Warning is a non-fatal problem surfaced while loading a dataset. The
// table is still usable; features relying on the affected column degrade
// instead of the whole load failing.
type Warning struct {
	Dataset string `json:"dataset,omitempty"`
	Column  string `json:"column,omitempty"`
	Reason  string `json:"reason"`
}
