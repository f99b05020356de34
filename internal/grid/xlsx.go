package grid

import (
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/tablewrap/internal/table"
)

// ErrSheetNotFound is returned when a workbook has no sheet with the requested name.
var ErrSheetNotFound = errors.New("sheet not found")

// XLSXOptions configures ReadXLSX.
type XLSXOptions struct {
	// Sheet selects the worksheet. Empty means the first one.
	Sheet string

	MaxRows  int
	Coercion table.CellCoercion
}

// ReadXLSX loads one worksheet of a workbook. Cells are read as the formatted
// strings excelize renders, so coercion sees what the report author saw.
func ReadXLSX(r io.Reader, opts XLSXOptions) (*Sheet, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets: %w", ErrSheetNotFound)
	}
	name := opts.Sheet
	if name == "" {
		name = sheets[0]
	} else if !slices.Contains(sheets, name) {
		return nil, fmt.Errorf("%w: %q (have %q)", ErrSheetNotFound, name, sheets)
	}

	rows, err := f.Rows(name)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", name, err)
	}
	defer rows.Close()

	var data [][]any
	for rows.Next() {
		if opts.MaxRows > 0 && len(data) >= opts.MaxRows {
			return nil, fmt.Errorf("read sheet %s: %w (limit %d)", name, ErrTooManyRows, opts.MaxRows)
		}
		cols, err := rows.Columns()
		if err != nil {
			return nil, fmt.Errorf("read sheet %s row %d: %w", name, len(data)+1, err)
		}
		values := make([]any, len(cols))
		for i, v := range cols {
			values[i] = v
		}
		data = append(data, values)
	}
	if err := rows.Error(); err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", name, err)
	}
	return NewSheet(name, data, opts.Coercion), nil
}
