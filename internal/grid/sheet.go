// Package grid holds report pages in memory and loads them from CSV and XLSX
// files.
package grid

import (
	"reflect"
	"strings"

	"github.com/JonMunkholm/tablewrap/internal/coerce"
	"github.com/JonMunkholm/tablewrap/internal/table"
)

// Sheet is an in-memory page. Blank rows are absent and blank cells are
// missing, the way spreadsheet files store them. A Sheet is read-only after
// construction and safe for concurrent readers.
type Sheet struct {
	name     string
	rows     []*row
	coercion table.CellCoercion
}

var (
	_ table.Page             = (*Sheet)(nil)
	_ table.CoercionProvider = (*Sheet)(nil)
)

type row struct {
	num   int
	cells []any
	first int
	last  int
}

type cell struct {
	col int
	v   any
}

func (c cell) Column() int { return c.col }
func (c cell) Value() any  { return c.v }

// NewSheet copies data into a sheet. nil values and whitespace-only strings
// are blank. A nil coercion selects coerce.Cells with default settings.
func NewSheet(name string, data [][]any, coercion table.CellCoercion) *Sheet {
	if coercion == nil {
		coercion = coerce.Cells{}
	}
	s := &Sheet{
		name:     name,
		rows:     make([]*row, len(data)),
		coercion: coercion,
	}
	for i, values := range data {
		s.rows[i] = newRow(i, values)
	}
	s.trim()
	return s
}

func newRow(num int, values []any) *row {
	r := &row{num: num, first: -1, last: -1}
	for i, v := range values {
		if isBlank(v) {
			continue
		}
		if r.first < 0 {
			r.first = i
		}
		r.last = i
	}
	if r.first < 0 {
		return nil
	}
	r.cells = make([]any, r.last+1)
	for i := r.first; i <= r.last; i++ {
		if !isBlank(values[i]) {
			r.cells[i] = values[i]
		}
	}
	return r
}

func isBlank(v any) bool {
	switch v := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	default:
		return false
	}
}

// trim drops trailing absent rows.
func (s *Sheet) trim() {
	n := len(s.rows)
	for n > 0 && s.rows[n-1] == nil {
		n--
	}
	s.rows = s.rows[:n]
}

// Name returns the sheet or file name the sheet was loaded from.
func (s *Sheet) Name() string { return s.name }

// Len returns the number of rows up to the last non-blank one.
func (s *Sheet) Len() int { return len(s.rows) }

// Coercion returns the converter for the cells of this sheet.
func (s *Sheet) Coercion() table.CellCoercion { return s.coercion }

func (s *Sheet) Row(i int) (table.PageRow, bool) {
	if i < 0 || i >= len(s.rows) || s.rows[i] == nil {
		return nil, false
	}
	return s.rows[i], true
}

// Find scans rows [startRow, endRow) top to bottom and cells left to right.
func (s *Sheet) Find(startRow, endRow int, match func(v any) bool) table.CellAddress {
	for i := max(startRow, 0); i < min(endRow, len(s.rows)); i++ {
		r := s.rows[i]
		if r == nil {
			continue
		}
		for c := r.first; c <= r.last; c++ {
			if v := r.cells[c]; v != nil && match(v) {
				return table.CellAddress{Row: i, Column: c}
			}
		}
	}
	return table.NotFound
}

// FindByPrefix returns the first cell whose trimmed text starts with prefix.
func (s *Sheet) FindByPrefix(prefix string) table.CellAddress {
	return s.Find(0, len(s.rows), func(v any) bool {
		return strings.HasPrefix(strings.TrimSpace(textOf(v)), prefix)
	})
}

func (r *row) RowNum() int       { return r.num }
func (r *row) FirstCellNum() int { return r.first }
func (r *row) LastCellNum() int  { return r.last }

func (r *row) Cell(i int) (table.Cell, bool) {
	if i < r.first || i > r.last || r.cells[i] == nil {
		return nil, false
	}
	return cell{col: i, v: r.cells[i]}, true
}

// Contains compares strings by trimmed text and other values deeply.
func (r *row) Contains(v any) bool {
	for _, c := range r.cells {
		if c != nil && sameValue(c, v) {
			return true
		}
	}
	return false
}

// startsWith reports whether the first cell of the row starts with prefix.
func (r *row) startsWith(prefix string) bool {
	return strings.HasPrefix(strings.TrimSpace(textOf(r.cells[r.first])), prefix)
}

func sameValue(cell, v any) bool {
	if s, ok := v.(string); ok {
		return strings.TrimSpace(textOf(cell)) == strings.TrimSpace(s)
	}
	return reflect.DeepEqual(cell, v)
}

func textOf(v any) string {
	return table.Text(cell{v: v})
}
