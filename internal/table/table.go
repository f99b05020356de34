package table

import (
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"
)

// NameNotFound is the name of a table whose title cell could not be located.
const NameNotFound = "<not found>"

// Config describes how to build a Table over a page.
type Config struct {
	// Name overrides the table name. When empty the name is read from the
	// first row of Range.
	Name string

	// NameMatch selects the title cell in the first row of Range.
	// Defaults to the first cell with non-blank text.
	NameMatch func(v any) bool

	// Range bounds the table. The first row holds the table name, the next
	// LabelRows rows the header, everything below is data.
	Range Range

	Schema *Schema

	// LabelRows is the number of header rows under the name row.
	LabelRows int

	// Coercion converts cells. Defaults to the page's own coercion when the
	// page implements CoercionProvider.
	Coercion CellCoercion

	Logger *slog.Logger
}

// Table is a bounded region of a page with a resolved header.
// A Table never changes after New returns; Grow returns a new one.
type Table struct {
	page          Page
	name          string
	rng           Range
	header        HeaderMapping
	dataRowOffset int
	coercion      CellCoercion
	logger        *slog.Logger
}

// New resolves the header of the table described by cfg.
//
// A table without data rows (an EmptyRange, or a range no taller than the
// name and label rows) gets an empty header mapping and keeps its range; the
// label rows are not read. Otherwise every required column must be found in
// the label rows; optional columns may be missing. The resulting column
// bounds are narrowed to the resolved columns.
func New(page Page, cfg Config) (*Table, error) {
	if page == nil {
		return nil, errors.New("table: nil page")
	}
	if cfg.Schema == nil {
		return nil, fmt.Errorf("%w: nil schema", ErrHeaderConfig)
	}
	if cfg.LabelRows < 0 {
		return nil, fmt.Errorf("%w: negative label row count %d", ErrHeaderConfig, cfg.LabelRows)
	}

	coercion := cfg.Coercion
	if coercion == nil {
		p, ok := page.(CoercionProvider)
		if !ok {
			return nil, fmt.Errorf("%w: no cell coercion for page %T", ErrHeaderConfig, page)
		}
		coercion = p.Coercion()
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	t := &Table{
		page:          page,
		name:          cfg.Name,
		rng:           cfg.Range,
		dataRowOffset: 1 + cfg.LabelRows,
		coercion:      coercion,
		logger:        logger,
	}
	if t.name == "" {
		t.name = LookupName(page, cfg.Range, cfg.NameMatch)
	}

	if cfg.Range.IsEmpty() || t.IsEmpty() {
		t.header = HeaderMapping{index: map[ColumnID]int{}}
		logger.Debug("table has no data rows, header not resolved",
			"table", t.name,
			"range", t.rng.String(),
		)
		return t, nil
	}

	header, err := resolveHeader(page, cfg.Range, cfg.Schema, cfg.LabelRows, t.name, logger)
	if err != nil {
		return nil, err
	}
	t.header = header
	if lo, hi, ok := header.bounds(); ok {
		t.rng = t.rng.withColumns(lo, hi)
	}

	logger.Debug("table header resolved",
		"table", t.name,
		"range", t.rng.String(),
		"columns", header.Len(),
	)
	return t, nil
}

// LookupName returns the text of the first cell in the top row of rng that
// satisfies match, or NameNotFound.
func LookupName(page Page, rng Range, match func(v any) bool) string {
	if rng.IsEmpty() {
		return NameNotFound
	}
	if match == nil {
		match = func(v any) bool {
			return strings.TrimSpace(valueText(v)) != ""
		}
	}
	addr := page.Find(rng.FirstRow, rng.FirstRow+1, match)
	if !addr.IsFound() {
		return NameNotFound
	}
	row, ok := page.Row(addr.Row)
	if !ok {
		return NameNotFound
	}
	c, ok := row.Cell(addr.Column)
	if !ok {
		return NameNotFound
	}
	return strings.TrimSpace(Text(c))
}

// Grow returns a table whose range is extended by top rows above and bottom
// rows below. The header is not resolved again.
func (t *Table) Grow(top, bottom int) (*Table, error) {
	if t.rng.IsEmpty() {
		return nil, fmt.Errorf("grow table %q: table is empty", t.name)
	}
	rng, err := t.rng.AddRowsToTop(top)
	if err != nil {
		return nil, fmt.Errorf("grow table %q: %w", t.name, err)
	}
	if rng, err = rng.AddRowsToBottom(bottom); err != nil {
		return nil, fmt.Errorf("grow table %q: %w", t.name, err)
	}
	grown := *t
	grown.rng = rng
	return &grown, nil
}

// Name returns the table name or NameNotFound.
func (t *Table) Name() string { return t.name }

// Range returns the bounds of the table, including the name and header rows.
func (t *Table) Range() Range { return t.rng }

// Header returns the resolved column mapping.
func (t *Table) Header() HeaderMapping { return t.header }

// Page returns the underlying page.
func (t *Table) Page() Page { return t.page }

// Coercion returns the cell converter used by the rows of t.
func (t *Table) Coercion() CellCoercion { return t.coercion }

// DataRowOffset is the index of the first data row relative to the range top.
func (t *Table) DataRowOffset() int { return t.dataRowOffset }

// IsEmpty reports whether the table has no data rows.
func (t *Table) IsEmpty() bool {
	return t.rng.RowCount() <= t.dataRowOffset
}

// DataRowCount returns the number of data rows, including absent ones.
func (t *Table) DataRowCount() int {
	return max(0, t.rng.RowCount()-t.dataRowOffset)
}

// Row returns the page row at the absolute index i without range checks.
func (t *Table) Row(i int) (PageRow, bool) {
	return t.page.Row(i)
}

// FindRow returns the first row of the table holding a cell equal to value
// within the table's columns, or nil.
func (t *Table) FindRow(value any) *Row {
	return t.findRow(func(v any) bool { return sameValue(v, value) })
}

// FindRowByPrefix returns the first row of the table holding a cell whose
// text starts with prefix within the table's columns, or nil.
func (t *Table) FindRowByPrefix(prefix string) *Row {
	return t.findRow(func(v any) bool {
		return strings.HasPrefix(strings.TrimSpace(valueText(v)), prefix)
	})
}

// findRow scans the cells inside the range row by row. Cells left or right
// of the range never match.
func (t *Table) findRow(match func(v any) bool) *Row {
	if t.rng.IsEmpty() {
		return nil
	}
	for i := t.rng.FirstRow; i <= t.rng.LastRow; i++ {
		pr, ok := t.page.Row(i)
		if !ok || pr.FirstCellNum() < 0 {
			continue
		}
		first := max(t.rng.FirstColumn, pr.FirstCellNum())
		last := min(t.rng.LastColumn, pr.LastCellNum())
		for col := first; col <= last; col++ {
			if c, ok := pr.Cell(col); ok && match(c.Value()) {
				return &Row{table: t, num: i, row: pr}
			}
		}
	}
	return nil
}

func (t *Table) String() string {
	return t.name
}

func sameValue(cell, want any) bool {
	if s, ok := want.(string); ok {
		return valueText(cell) == s
	}
	return reflect.DeepEqual(cell, want)
}

func valueText(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}
