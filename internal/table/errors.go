package table

import (
	"errors"
	"fmt"
)

var (
	// ErrColumnNotFound means a column matcher found no header cell.
	// It is tolerated for optional columns.
	ErrColumnNotFound = errors.New("table column not found")

	// ErrHeaderConfig is a programming error in a table declaration, such as
	// a multi-line column whose level count differs from the header row count.
	// It is never tolerated, not even for optional columns.
	ErrHeaderConfig = errors.New("invalid table header configuration")

	// ErrHeaderRowAbsent means a header label row is missing from the page.
	ErrHeaderRowAbsent = errors.New("table header row is absent")

	// ErrCellAbsent means the row, the column mapping or the cell is missing.
	ErrCellAbsent = errors.New("cell not found")

	// ErrCellType means the cell content cannot be converted to the requested type.
	ErrCellType = errors.New("cell type mismatch")
)

// ColumnError reports a column that could not be resolved while building a table.
type ColumnError struct {
	Table  string
	Column ColumnID
	Err    error
}

func (e *ColumnError) Error() string {
	if e.Table != "" {
		return fmt.Sprintf("table %q column %q: %v", e.Table, e.Column, e.Err)
	}
	return fmt.Sprintf("column %q: %v", e.Column, e.Err)
}

func (e *ColumnError) Unwrap() error {
	return e.Err
}

// notFound builds an ErrColumnNotFound error describing the matcher.
func notFound(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrColumnNotFound, fmt.Sprintf(format, args...))
}
