package grid

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/JonMunkholm/tablewrap/internal/table"
)

// ErrUnsupportedFormat is returned for files that are neither delimited text
// nor workbooks.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// Format is the container of a report file.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatTSV  Format = "tsv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat returns the format named s, or detects it from the extension
// of name when s is empty.
func ParseFormat(s, name string) (Format, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		s = strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
	}
	switch s {
	case "csv", "txt":
		return FormatCSV, nil
	case "tsv":
		return FormatTSV, nil
	case "xlsx", "xlsm":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
	}
}

// ReadOptions configures Read.
type ReadOptions struct {
	Name   string
	Format Format

	// Sheet selects the worksheet of a workbook.
	Sheet string

	// Comma overrides the delimiter of CSV files. TSV is always tab separated.
	Comma rune

	MaxRows  int
	Coercion table.CellCoercion
}

// Read loads a report file of any supported format.
func Read(r io.Reader, opts ReadOptions) (*Sheet, error) {
	switch opts.Format {
	case FormatCSV, FormatTSV:
		comma := opts.Comma
		if opts.Format == FormatTSV {
			comma = '\t'
		}
		return ReadCSV(r, CSVOptions{Name: opts.Name, Comma: comma, MaxRows: opts.MaxRows, Coercion: opts.Coercion})
	case FormatXLSX:
		return ReadXLSX(r, XLSXOptions{Sheet: opts.Sheet, MaxRows: opts.MaxRows, Coercion: opts.Coercion})
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, opts.Format)
	}
}
