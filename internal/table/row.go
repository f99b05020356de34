package table

import (
	"fmt"
	"iter"
	"time"

	"github.com/shopspring/decimal"
)

// Row gives typed access to the cells of one data row by logical column.
//
// A row either wraps a page row or is empty. Empty rows stand for rows that
// are inside the table range but missing from the page: every lookup reports
// absence, and the cell bounds are -1.
//
// Each typed getter has an Or variant that returns the default for absent
// cells and for cells that fail conversion.
type Row struct {
	table *Table
	num   int
	row   PageRow
}

// IsEmpty reports whether the row is missing from the page.
func (r *Row) IsEmpty() bool { return r.row == nil }

// Table returns the table the row belongs to.
func (r *Row) Table() *Table { return r.table }

// RowNum returns the absolute 0-based row index on the page.
func (r *Row) RowNum() int { return r.num }

// PageRow returns the wrapped page row.
func (r *Row) PageRow() (PageRow, bool) {
	return r.row, r.row != nil
}

func (r *Row) FirstCellNum() int {
	if r.row == nil {
		return -1
	}
	return r.row.FirstCellNum()
}

func (r *Row) LastCellNum() int {
	if r.row == nil {
		return -1
	}
	return r.row.LastCellNum()
}

// CellAt returns the cell at an absolute column index.
func (r *Row) CellAt(i int) (Cell, bool) {
	if r.row == nil {
		return nil, false
	}
	return r.row.Cell(i)
}

// Cell returns the cell of a logical column.
func (r *Row) Cell(col ColumnID) (Cell, bool) {
	c, err := r.lookup(col)
	return c, err == nil
}

// Cells iterates over the populated cells of the row.
func (r *Row) Cells() iter.Seq[Cell] {
	return func(yield func(Cell) bool) {
		if r.row == nil {
			return
		}
		for i := r.row.FirstCellNum(); i >= 0 && i <= r.row.LastCellNum(); i++ {
			c, ok := r.row.Cell(i)
			if !ok {
				continue
			}
			if !yield(c) {
				return
			}
		}
	}
}

// Contains reports whether any cell of the row holds v.
func (r *Row) Contains(v any) bool {
	return r.row != nil && r.row.Contains(v)
}

// Clone returns a copy that is not rebound by the cursor.
func (r *Row) Clone() *Row {
	c := *r
	return &c
}

// Equal compares rows by table and position; non-empty rows must also wrap
// the same page row.
func (r *Row) Equal(o *Row) bool {
	if r == nil || o == nil {
		return r == o
	}
	if r.table != o.table || r.num != o.num || r.IsEmpty() != o.IsEmpty() {
		return false
	}
	return r.IsEmpty() || r.row == o.row
}

// Value returns the raw cell value of col.
func (r *Row) Value(col ColumnID) (any, bool) {
	res := get(r, col, r.table.coercion.Value)
	return res.v, res.err == nil
}

func (r *Row) ValueOr(col ColumnID, def any) any {
	return get(r, col, r.table.coercion.Value).or(def)
}

func (r *Row) Int(col ColumnID) (int, error) {
	return get(r, col, r.table.coercion.Int).unwrap()
}

func (r *Row) IntOr(col ColumnID, def int) int {
	return get(r, col, r.table.coercion.Int).or(def)
}

func (r *Row) Int64(col ColumnID) (int64, error) {
	return get(r, col, r.table.coercion.Int64).unwrap()
}

func (r *Row) Int64Or(col ColumnID, def int64) int64 {
	return get(r, col, r.table.coercion.Int64).or(def)
}

func (r *Row) Float64(col ColumnID) (float64, error) {
	return get(r, col, r.table.coercion.Float64).unwrap()
}

func (r *Row) Float64Or(col ColumnID, def float64) float64 {
	return get(r, col, r.table.coercion.Float64).or(def)
}

func (r *Row) Decimal(col ColumnID) (decimal.Decimal, error) {
	return get(r, col, r.table.coercion.Decimal).unwrap()
}

func (r *Row) DecimalOr(col ColumnID, def decimal.Decimal) decimal.Decimal {
	return get(r, col, r.table.coercion.Decimal).or(def)
}

func (r *Row) String(col ColumnID) (string, error) {
	return get(r, col, r.table.coercion.String).unwrap()
}

func (r *Row) StringOr(col ColumnID, def string) string {
	return get(r, col, r.table.coercion.String).or(def)
}

// Instant returns the cell as an absolute time in UTC.
func (r *Row) Instant(col ColumnID) (time.Time, error) {
	return get(r, col, r.table.coercion.Instant).unwrap()
}

func (r *Row) InstantOr(col ColumnID, def time.Time) time.Time {
	return get(r, col, r.table.coercion.Instant).or(def)
}

// LocalDateTime returns the cell as a wall-clock time.
func (r *Row) LocalDateTime(col ColumnID) (time.Time, error) {
	return get(r, col, r.table.coercion.LocalDateTime).unwrap()
}

func (r *Row) LocalDateTimeOr(col ColumnID, def time.Time) time.Time {
	return get(r, col, r.table.coercion.LocalDateTime).or(def)
}

func (r *Row) lookup(col ColumnID) (Cell, error) {
	if r.row == nil {
		return nil, fmt.Errorf("row %d is absent: %w", r.num+1, ErrCellAbsent)
	}
	idx, ok := r.table.header.Index(col)
	if !ok {
		return nil, fmt.Errorf("column %q is not in table %q: %w", col, r.table.name, ErrCellAbsent)
	}
	c, ok := r.row.Cell(idx)
	if !ok {
		return nil, fmt.Errorf("row %d column %q: %w", r.num+1, col, ErrCellAbsent)
	}
	return c, nil
}

type result[T any] struct {
	v   T
	err error
}

func (res result[T]) or(def T) T {
	if res.err != nil {
		return def
	}
	return res.v
}

func (res result[T]) unwrap() (T, error) {
	return res.v, res.err
}

func get[T any](r *Row, col ColumnID, conv func(Cell) (T, error)) result[T] {
	c, err := r.lookup(col)
	if err != nil {
		return result[T]{err: err}
	}
	v, err := conv(c)
	if err != nil {
		return result[T]{err: fmt.Errorf("row %d column %q: %w", r.num+1, col, err)}
	}
	return result[T]{v: v}
}
