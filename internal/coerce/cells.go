// Package coerce converts report cells into Go values.
package coerce

// cells.go implements table.CellCoercion for text and native cell values.
//
// Report exports are messy in the same ways everywhere:
//   - Multiple date formats (US, EU, ISO, etc.)
//   - Currency symbols, thousands separators and decimal commas in numbers
//   - Accounting negatives written as (123.45)
//   - Excel formula prefixes (="value")
//
// Blank cells fail with table.ErrCellAbsent and unparsable content with
// table.ErrCellType, so the Or accessors of table.Row can substitute defaults.

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/JonMunkholm/tablewrap/internal/table"
)

// DefaultTwoDigitYearPivot is used when Cells.TwoDigitYearPivot is zero.
const DefaultTwoDigitYearPivot = 20

// Cells converts cells holding strings or native Go values.
// The zero value is ready to use and reads zone-less timestamps as UTC.
type Cells struct {
	// Location is the zone of timestamps that carry no offset when an
	// instant is requested. nil means UTC.
	Location *time.Location

	// TwoDigitYearPivot defines how 2-digit years are interpreted. Years
	// more than this many years in the future are moved to the previous
	// century.
	TwoDigitYearPivot int
}

var _ table.CellCoercion = Cells{}

func (c Cells) location() *time.Location {
	if c.Location == nil {
		return time.UTC
	}
	return c.Location
}

func (c Cells) pivot() int {
	if c.TwoDigitYearPivot == 0 {
		return DefaultTwoDigitYearPivot
	}
	return c.TwoDigitYearPivot
}

// raw returns the cell value with strings cleaned, or ErrCellAbsent for
// blank cells.
func raw(cell table.Cell) (any, error) {
	if cell == nil {
		return nil, table.ErrCellAbsent
	}
	switch v := cell.Value().(type) {
	case nil:
		return nil, table.ErrCellAbsent
	case string:
		s := CleanCell(v)
		if s == "" {
			return nil, table.ErrCellAbsent
		}
		return s, nil
	default:
		return v, nil
	}
}

func typeError(v any, want string) error {
	return fmt.Errorf("%w: %q is not %s", table.ErrCellType, fmt.Sprint(v), want)
}

func (c Cells) Value(cell table.Cell) (any, error) {
	return raw(cell)
}

func (c Cells) String(cell table.Cell) (string, error) {
	v, err := raw(cell)
	if err != nil {
		return "", err
	}
	switch v := v.(type) {
	case string:
		return v, nil
	case time.Time:
		return v.Format(time.RFC3339), nil
	case fmt.Stringer:
		return v.String(), nil
	default:
		return fmt.Sprint(v), nil
	}
}

func (c Cells) Decimal(cell table.Cell) (decimal.Decimal, error) {
	v, err := raw(cell)
	if err != nil {
		return decimal.Zero, err
	}
	switch v := v.(type) {
	case decimal.Decimal:
		return v, nil
	case int:
		return decimal.NewFromInt(int64(v)), nil
	case int32:
		return decimal.NewFromInt32(v), nil
	case int64:
		return decimal.NewFromInt(v), nil
	case float32:
		return decimal.NewFromFloat32(v), nil
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return decimal.Zero, typeError(v, "a finite number")
		}
		return decimal.NewFromFloat(v), nil
	case string:
		return ParseDecimal(v)
	default:
		return decimal.Zero, typeError(v, "a number")
	}
}

func (c Cells) Int64(cell table.Cell) (int64, error) {
	switch v := valueOf(cell).(type) {
	case int:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case int64:
		return v, nil
	}
	d, err := c.Decimal(cell)
	if err != nil {
		return 0, err
	}
	if !d.IsInteger() {
		return 0, typeError(d, "an integer")
	}
	if d.GreaterThan(decimal.NewFromInt(math.MaxInt64)) || d.LessThan(decimal.NewFromInt(math.MinInt64)) {
		return 0, typeError(d, "a 64-bit integer")
	}
	return d.IntPart(), nil
}

func (c Cells) Int(cell table.Cell) (int, error) {
	v, err := c.Int64(cell)
	if err != nil {
		return 0, err
	}
	if v > math.MaxInt || v < math.MinInt {
		return 0, typeError(v, "an int")
	}
	return int(v), nil
}

func (c Cells) Float64(cell table.Cell) (float64, error) {
	switch v := valueOf(cell).(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	}
	d, err := c.Decimal(cell)
	if err != nil {
		return 0, err
	}
	f, _ := d.Float64()
	return f, nil
}

// Instant returns the cell as an absolute time in UTC. Timestamps without an
// offset are read in c.Location.
func (c Cells) Instant(cell table.Cell) (time.Time, error) {
	v, err := raw(cell)
	if err != nil {
		return time.Time{}, err
	}
	switch v := v.(type) {
	case time.Time:
		return v.UTC(), nil
	case string:
		if t, ok := parseZoned(v); ok {
			return t.UTC(), nil
		}
		t, err := ParseDateTime(v, c.pivot())
		if err != nil {
			return time.Time{}, err
		}
		return wallClock(t, c.location()).UTC(), nil
	default:
		return time.Time{}, typeError(v, "a timestamp")
	}
}

// LocalDateTime returns the wall-clock time of the cell, in UTC without
// conversion. Offsets present in the text are dropped.
func (c Cells) LocalDateTime(cell table.Cell) (time.Time, error) {
	v, err := raw(cell)
	if err != nil {
		return time.Time{}, err
	}
	switch v := v.(type) {
	case time.Time:
		return wallClock(v, time.UTC), nil
	case string:
		if t, ok := parseZoned(v); ok {
			return wallClock(t, time.UTC), nil
		}
		return ParseDateTime(v, c.pivot())
	default:
		return time.Time{}, typeError(v, "a timestamp")
	}
}

func valueOf(cell table.Cell) any {
	if cell == nil {
		return nil
	}
	return cell.Value()
}

// wallClock keeps the clock reading of t and moves it to loc.
func wallClock(t time.Time, loc *time.Location) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), loc)
}

// CleanCell removes common export artifacts from a cell value:
// - Trims whitespace
// - Removes Excel formula prefix (="...")
// - Removes surrounding quotes
func CleanCell(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") {
		s = s[2 : len(s)-1]
	} else if strings.HasPrefix(s, "=") {
		s = s[1:]
	}

	return strings.TrimSpace(strings.Trim(s, `"'`))
}
