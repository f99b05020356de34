package table

import "fmt"

// CellAddress is a 0-based row/column position on a page.
type CellAddress struct {
	Row    int
	Column int
}

// NotFound is returned by page searches that find nothing.
var NotFound = CellAddress{Row: -1, Column: -1}

// IsFound reports whether the address points at a cell.
func (a CellAddress) IsFound() bool {
	return a.Row >= 0 && a.Column >= 0
}

func (a CellAddress) String() string {
	if !a.IsFound() {
		return "<not found>"
	}
	return fmt.Sprintf("R%dC%d", a.Row+1, a.Column+1)
}

// Range is an inclusive, 0-based rectangle of cells.
// Ranges are values; the grow operations return new ranges.
type Range struct {
	FirstRow    int
	LastRow     int
	FirstColumn int
	LastColumn  int
}

// EmptyRange marks a table that was not found on the page.
var EmptyRange = Range{FirstRow: -1, LastRow: -1, FirstColumn: -1, LastColumn: -1}

// NewRange returns a validated range.
// The first row and column must not exceed the last ones, and none may be negative.
func NewRange(firstRow, lastRow, firstColumn, lastColumn int) (Range, error) {
	r := Range{FirstRow: firstRow, LastRow: lastRow, FirstColumn: firstColumn, LastColumn: lastColumn}
	if firstRow < 0 || firstColumn < 0 || firstRow > lastRow || firstColumn > lastColumn {
		return EmptyRange, fmt.Errorf("invalid table range %s", r)
	}
	return r, nil
}

// MustRange is NewRange that panics on invalid bounds. Intended for tests and static tables.
func MustRange(firstRow, lastRow, firstColumn, lastColumn int) Range {
	r, err := NewRange(firstRow, lastRow, firstColumn, lastColumn)
	if err != nil {
		panic(err)
	}
	return r
}

// IsEmpty reports whether r is the EmptyRange sentinel.
func (r Range) IsEmpty() bool {
	return r == EmptyRange
}

// Contains reports whether the address lies inside the range.
func (r Range) Contains(a CellAddress) bool {
	if r.IsEmpty() || !a.IsFound() {
		return false
	}
	return r.ContainsRow(a.Row) && a.Column >= r.FirstColumn && a.Column <= r.LastColumn
}

// ContainsRow reports whether the row index lies inside the range.
func (r Range) ContainsRow(row int) bool {
	return !r.IsEmpty() && row >= r.FirstRow && row <= r.LastRow
}

// RowCount returns the number of rows, including the header band.
func (r Range) RowCount() int {
	if r.IsEmpty() {
		return 0
	}
	return r.LastRow - r.FirstRow + 1
}

// ColumnCount returns the number of columns.
func (r Range) ColumnCount() int {
	if r.IsEmpty() {
		return 0
	}
	return r.LastColumn - r.FirstColumn + 1
}

// AddRowsToTop returns a range whose first row moved up by n rows.
// Negative n or a first row moving above the page is rejected.
func (r Range) AddRowsToTop(n int) (Range, error) {
	if n < 0 {
		return r, fmt.Errorf("add %d rows to top: count must be non-negative", n)
	}
	if n == 0 {
		return r, nil
	}
	return NewRange(r.FirstRow-n, r.LastRow, r.FirstColumn, r.LastColumn)
}

// AddRowsToBottom returns a range whose last row moved down by n rows.
func (r Range) AddRowsToBottom(n int) (Range, error) {
	if n < 0 {
		return r, fmt.Errorf("add %d rows to bottom: count must be non-negative", n)
	}
	if n == 0 {
		return r, nil
	}
	return NewRange(r.FirstRow, r.LastRow+n, r.FirstColumn, r.LastColumn)
}

// withColumns returns a copy of r with new column bounds.
func (r Range) withColumns(first, last int) Range {
	r.FirstColumn = first
	r.LastColumn = last
	return r
}

func (r Range) String() string {
	if r.IsEmpty() {
		return "<empty>"
	}
	return fmt.Sprintf("R%dC%d:R%dC%d", r.FirstRow+1, r.FirstColumn+1, r.LastRow+1, r.LastColumn+1)
}
