package grid

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/JonMunkholm/tablewrap/internal/table"
)

// ErrTooManyRows is returned when a file exceeds the configured row limit.
var ErrTooManyRows = errors.New("too many rows")

// CSVOptions configures ReadCSV.
type CSVOptions struct {
	// Name is reported by Sheet.Name, usually the file name.
	Name string

	// Comma is the field delimiter. Zero means ','.
	Comma rune

	// MaxRows limits the number of records read. Zero means no limit.
	MaxRows int

	Coercion table.CellCoercion
}

// ReadCSV loads a delimited text export into a sheet. Report exports have
// rows of different widths (title rows, totals), so the field count is not
// checked.
func ReadCSV(r io.Reader, opts CSVOptions) (*Sheet, error) {
	cr := csv.NewReader(CleanText(r))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	if opts.Comma != 0 {
		cr.Comma = opts.Comma
	}

	var data [][]any
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv %s: %w", opts.Name, err)
		}
		if opts.MaxRows > 0 && len(data) >= opts.MaxRows {
			return nil, fmt.Errorf("read csv %s: %w (limit %d)", opts.Name, ErrTooManyRows, opts.MaxRows)
		}
		values := make([]any, len(rec))
		for i, v := range rec {
			values[i] = v
		}
		data = append(data, values)
	}
	return NewSheet(opts.Name, data, opts.Coercion), nil
}
