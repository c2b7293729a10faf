package dbx

import "fmt"

// Table is the structural result of a read: named columns resolved from the
// query's result metadata and rows of driver values. A query returning zero
// rows produces a valid Table with empty Rows, never nil.
type Table struct {
	Columns []string
	Rows    [][]any
}

func (t *Table) Len() int {
	return len(t.Rows)
}

func (t *Table) Empty() bool {
	return len(t.Rows) == 0
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

// Value returns the cell at (row, column name), or nil when out of range or
// the column does not exist.
func (t *Table) Value(row int, column string) any {
	idx := t.ColumnIndex(column)
	if idx < 0 || row < 0 || row >= len(t.Rows) || idx >= len(t.Rows[row]) {
		return nil
	}
	return t.Rows[row][idx]
}

// Strings flattens one column into strings, skipping NULLs. Useful for
// dropdown value lists.
func (t *Table) Strings(column string) []string {
	idx := t.ColumnIndex(column)
	if idx < 0 {
		return nil
	}
	out := make([]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		if idx >= len(row) || row[idx] == nil {
			continue
		}
		if s, ok := row[idx].(string); ok {
			out = append(out, s)
			continue
		}
		out = append(out, fmt.Sprint(row[idx]))
	}
	return out
}
