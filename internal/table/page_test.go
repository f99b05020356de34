package table

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ----------------------------------------------------------------------------
// In-memory page used by the tests of this package
// ----------------------------------------------------------------------------

type memCell struct {
	col int
	v   any
}

func (c memCell) Column() int { return c.col }
func (c memCell) Value() any  { return c.v }

type memRow struct {
	num   int
	cells map[int]any
	first int
	last  int
}

func (r *memRow) RowNum() int       { return r.num }
func (r *memRow) FirstCellNum() int { return r.first }
func (r *memRow) LastCellNum() int  { return r.last }

func (r *memRow) Cell(i int) (Cell, bool) {
	v, ok := r.cells[i]
	if !ok {
		return nil, false
	}
	return memCell{col: i, v: v}, true
}

func (r *memRow) Contains(v any) bool {
	for _, c := range r.cells {
		if c == v {
			return true
		}
	}
	return false
}

// memPage holds rows keyed by index; missing keys are absent rows.
// nil values in a row literal are skipped.
type memPage struct {
	rows map[int]*memRow
}

func newMemPage(rows map[int][]any) *memPage {
	p := &memPage{rows: make(map[int]*memRow, len(rows))}
	for num, values := range rows {
		r := &memRow{num: num, cells: map[int]any{}, first: -1, last: -1}
		for i, v := range values {
			if v == nil {
				continue
			}
			r.cells[i] = v
			if r.first < 0 {
				r.first = i
			}
			r.last = i
		}
		p.rows[num] = r
	}
	return p
}

func (p *memPage) Row(i int) (PageRow, bool) {
	r, ok := p.rows[i]
	if !ok {
		return nil, false
	}
	return r, true
}

func (p *memPage) Find(start, end int, match func(any) bool) CellAddress {
	for i := start; i < end; i++ {
		r, ok := p.rows[i]
		if !ok {
			continue
		}
		for c := r.first; c >= 0 && c <= r.last; c++ {
			if v, ok := r.cells[c]; ok && match(v) {
				return CellAddress{Row: i, Column: c}
			}
		}
	}
	return NotFound
}

func (p *memPage) FindByPrefix(prefix string) CellAddress {
	last := -1
	for i := range p.rows {
		last = max(last, i)
	}
	return p.Find(0, last+1, func(v any) bool {
		s, ok := v.(string)
		return ok && strings.HasPrefix(s, prefix)
	})
}

func (p *memPage) Coercion() CellCoercion { return textCoercion{} }

// textCoercion converts cells through their text form.
type textCoercion struct{}

func (textCoercion) text(c Cell) (string, error) {
	s := strings.TrimSpace(Text(c))
	if s == "" {
		return "", ErrCellAbsent
	}
	return s, nil
}

func (tc textCoercion) Value(c Cell) (any, error) {
	if c.Value() == nil {
		return nil, ErrCellAbsent
	}
	return c.Value(), nil
}

func (tc textCoercion) Int(c Cell) (int, error) {
	s, err := tc.text(c)
	if err != nil {
		return 0, err
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrCellType, err)
	}
	return v, nil
}

func (tc textCoercion) Int64(c Cell) (int64, error) {
	v, err := tc.Int(c)
	return int64(v), err
}

func (tc textCoercion) Float64(c Cell) (float64, error) {
	s, err := tc.text(c)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrCellType, err)
	}
	return v, nil
}

func (tc textCoercion) Decimal(c Cell) (decimal.Decimal, error) {
	s, err := tc.text(c)
	if err != nil {
		return decimal.Zero, err
	}
	v, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %v", ErrCellType, err)
	}
	return v, nil
}

func (tc textCoercion) String(c Cell) (string, error) {
	return tc.text(c)
}

func (tc textCoercion) Instant(c Cell) (time.Time, error) {
	s, err := tc.text(c)
	if err != nil {
		return time.Time{}, err
	}
	v, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrCellType, err)
	}
	return v.UTC(), nil
}

func (tc textCoercion) LocalDateTime(c Cell) (time.Time, error) {
	s, err := tc.text(c)
	if err != nil {
		return time.Time{}, err
	}
	v, err := time.Parse("2006-01-02 15:04:05", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrCellType, err)
	}
	return v, nil
}
