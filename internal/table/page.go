package table

import (
	"time"

	"github.com/shopspring/decimal"
)

// Page is the storage a table reads its cells from: a sheet, a CSV file, a
// parsed PDF page. Implementations must be safe for concurrent reads if tables
// over the same page are used from different goroutines.
type Page interface {
	// Row returns the row at the 0-based index, or false if the page has no
	// such row.
	Row(i int) (PageRow, bool)

	// Find returns the first cell in rows [startRow, endRow) whose value
	// satisfies match, scanning rows top to bottom and cells left to right.
	Find(startRow, endRow int, match func(v any) bool) CellAddress

	// FindByPrefix returns the first cell on the page whose text starts with
	// prefix.
	FindByPrefix(prefix string) CellAddress
}

// PageRow is one physical row of a page.
type PageRow interface {
	RowNum() int

	// FirstCellNum and LastCellNum bound the populated cells of the row.
	// Both are -1 for a row without cells.
	FirstCellNum() int
	LastCellNum() int

	Cell(i int) (Cell, bool)
	Contains(v any) bool
}

// Cell is one populated cell.
type Cell interface {
	Column() int
	Value() any
}

// CellCoercion converts the cells of one storage backend into Go values.
// Every method fails with ErrCellAbsent for blank cells and with ErrCellType
// for content that cannot be converted.
type CellCoercion interface {
	Value(c Cell) (any, error)
	Int(c Cell) (int, error)
	Int64(c Cell) (int64, error)
	Float64(c Cell) (float64, error)
	Decimal(c Cell) (decimal.Decimal, error)
	String(c Cell) (string, error)
	// Instant returns an absolute point in time, normalized to UTC.
	Instant(c Cell) (time.Time, error)
	// LocalDateTime returns a wall-clock time without a meaningful zone.
	LocalDateTime(c Cell) (time.Time, error)
}

// CoercionProvider is implemented by pages that know how to convert their own cells.
type CoercionProvider interface {
	Coercion() CellCoercion
}
