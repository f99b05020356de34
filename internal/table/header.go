package table

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
)

// HeaderMapping maps logical columns to absolute column indexes of one table.
// Optional columns missing from the report header are absent from the mapping.
type HeaderMapping struct {
	index map[ColumnID]int
	order []ColumnID
}

// Index returns the absolute column index of id.
func (m HeaderMapping) Index(id ColumnID) (int, bool) {
	i, ok := m.index[id]
	return i, ok
}

// Has reports whether id was found in the header.
func (m HeaderMapping) Has(id ColumnID) bool {
	_, ok := m.index[id]
	return ok
}

// Len returns the number of resolved columns.
func (m HeaderMapping) Len() int {
	return len(m.index)
}

// IDs returns the resolved column ids in declaration order.
func (m HeaderMapping) IDs() []ColumnID {
	out := make([]ColumnID, len(m.order))
	copy(out, m.order)
	return out
}

// Map returns a copy of the mapping.
func (m HeaderMapping) Map() map[ColumnID]int {
	return maps.Clone(m.index)
}

// bounds returns the smallest and largest resolved index.
func (m HeaderMapping) bounds() (lo, hi int, ok bool) {
	for _, i := range m.index {
		if !ok {
			lo, hi, ok = i, i, true
			continue
		}
		lo = min(lo, i)
		hi = max(hi, i)
	}
	return lo, hi, ok
}

// resolveHeader finds every declared column in the label rows that follow
// the table name row.
func resolveHeader(page Page, rng Range, schema *Schema, labelRows int, tableName string, logger *slog.Logger) (HeaderMapping, error) {
	headerRows := make([]PageRow, labelRows)
	for i := range labelRows {
		num := rng.FirstRow + 1 + i
		row, ok := page.Row(num)
		if !ok {
			return HeaderMapping{}, fmt.Errorf("table %q row %d: %w", tableName, num+1, ErrHeaderRowAbsent)
		}
		headerRows[i] = row
	}

	m := HeaderMapping{
		index: make(map[ColumnID]int, schema.Len()),
		order: make([]ColumnID, 0, schema.Len()),
	}
	for _, d := range schema.decls {
		idx, err := d.Column.Index(rng.FirstColumn, headerRows...)
		if err != nil {
			if IsOptional(d.Column) && errors.Is(err, ErrColumnNotFound) && !errors.Is(err, ErrHeaderConfig) {
				logger.Debug("optional header column is not found",
					"table", tableName,
					"column", string(d.ID),
					"error", err,
				)
				continue
			}
			return HeaderMapping{}, &ColumnError{Table: tableName, Column: d.ID, Err: err}
		}
		m.index[d.ID] = idx
		m.order = append(m.order, d.ID)
	}
	return m, nil
}
