package table

import (
	"fmt"
	"regexp"
	"strings"
)

// Column finds the index of one logical column inside the header rows of a table.
//
// firstColumn is the column the search starts from. Implementations return an
// error wrapping ErrColumnNotFound when the header has no matching cell, and
// ErrHeaderConfig when the declaration itself cannot work with the given rows.
type Column interface {
	Index(firstColumn int, headerRows ...PageRow) (int, error)
}

// PatternColumn matches header cells by their text.
type PatternColumn struct {
	desc  string
	match func(text string) bool
}

// Match returns a column that accepts the first header cell whose text satisfies match.
// desc names the pattern in error messages.
func Match(desc string, match func(text string) bool) PatternColumn {
	return PatternColumn{desc: desc, match: match}
}

// Exact matches a header cell whose trimmed text equals text.
func Exact(text string) PatternColumn {
	want := strings.TrimSpace(text)
	return Match(fmt.Sprintf("exact %q", want), func(s string) bool {
		return strings.TrimSpace(s) == want
	})
}

// Fold matches a header cell whose text equals text ignoring case and
// differences in whitespace.
func Fold(text string) PatternColumn {
	want := normalizeSpace(text)
	return Match(fmt.Sprintf("%q", want), func(s string) bool {
		return strings.EqualFold(normalizeSpace(s), want)
	})
}

// Regexp matches a header cell whose text matches expr. Matching is case
// insensitive unless expr sets its own flags. Regexp panics if expr does not
// compile, so declare such columns at package level.
func Regexp(expr string) PatternColumn {
	if !strings.HasPrefix(expr, "(?") {
		expr = "(?i)" + expr
	}
	re := regexp.MustCompile(expr)
	return Match(fmt.Sprintf("regexp %s", re), re.MatchString)
}

// Words matches a header cell that contains all words in the given order,
// ignoring case. "Trade date" and "Date of the trade" are both matched by
// Words("date") but only the first by Words("trade", "date").
func Words(words ...string) PatternColumn {
	parts := make([]string, 0, len(words))
	for _, w := range words {
		parts = append(parts, regexp.QuoteMeta(strings.ToLower(normalizeSpace(w))))
	}
	re := regexp.MustCompile("(?is)^.*" + strings.Join(parts, ".*") + ".*$")
	return Match(fmt.Sprintf("words %q", words), func(s string) bool {
		return re.MatchString(normalizeSpace(s))
	})
}

// Index scans the header rows in order and returns the first matching cell
// at or right of firstColumn.
func (p PatternColumn) Index(firstColumn int, headerRows ...PageRow) (int, error) {
	if p.match == nil {
		return -1, fmt.Errorf("%w: pattern column without matcher", ErrHeaderConfig)
	}
	for _, row := range headerRows {
		if row == nil || row.LastCellNum() < 0 {
			continue
		}
		for i := max(firstColumn, row.FirstCellNum()); i <= row.LastCellNum(); i++ {
			c, ok := row.Cell(i)
			if !ok {
				continue
			}
			if p.match(Text(c)) {
				return i, nil
			}
		}
	}
	return -1, notFound("%s from column %d", p.desc, firstColumn)
}

func (p PatternColumn) String() string {
	return p.desc
}

// MultiLineColumn resolves a column under a hierarchical header such as
//
//	|           One           |           Two           |
//	|   a1   |   a2   |   a3  |   a1   |   a2   |   a3  |
//	| b1 | b2| b1 | b2|b1 | b2| b1 | b2| b1 | b2|b1 | b2|
//
// Each level is resolved in its own header row, starting at the column found
// by the previous level, so ("Two", "a3", "b1") finds the b1 under Two/a3.
type MultiLineColumn struct {
	levels []Column
}

// MultiLine returns a column with one level per header row.
func MultiLine(levels ...Column) MultiLineColumn {
	return MultiLineColumn{levels: levels}
}

// MultiLineText is MultiLine with a Fold matcher per level.
func MultiLineText(texts ...string) MultiLineColumn {
	levels := make([]Column, len(texts))
	for i, t := range texts {
		levels[i] = Fold(t)
	}
	return MultiLine(levels...)
}

// Index requires exactly one header row per level.
func (m MultiLineColumn) Index(firstColumn int, headerRows ...PageRow) (int, error) {
	if len(headerRows) != len(m.levels) {
		return -1, fmt.Errorf("%w: multi-line column %s expects %d header rows, got %d",
			ErrHeaderConfig, m, len(m.levels), len(headerRows))
	}
	col := firstColumn
	for i, level := range m.levels {
		next, err := level.Index(col, headerRows[i])
		if err != nil {
			return -1, fmt.Errorf("header level %d: %w", i+1, err)
		}
		col = next
	}
	return col, nil
}

func (m MultiLineColumn) String() string {
	parts := make([]string, len(m.levels))
	for i, l := range m.levels {
		parts[i] = fmt.Sprint(l)
	}
	return strings.Join(parts, " -> ")
}

// FixedColumn is a column at a known position. It ignores the header content.
type FixedColumn int

// At returns a column that always resolves to index.
func At(index int) FixedColumn {
	return FixedColumn(index)
}

func (f FixedColumn) Index(int, ...PageRow) (int, error) {
	if f < 0 {
		return -1, fmt.Errorf("%w: negative fixed column %d", ErrHeaderConfig, int(f))
	}
	return int(f), nil
}

func (f FixedColumn) String() string {
	return fmt.Sprintf("column #%d", int(f))
}

type optionalColumn struct {
	Column
}

// Optional marks a column that some report versions do not have. A table is
// still built when the column is missing from the header; the column is then
// absent from the header mapping and every cell of it reads as absent.
func Optional(c Column) Column {
	if IsOptional(c) {
		return c
	}
	return optionalColumn{Column: c}
}

// IsOptional reports whether c was declared with Optional.
func IsOptional(c Column) bool {
	_, ok := c.(optionalColumn)
	return ok
}

func (o optionalColumn) String() string {
	return fmt.Sprintf("optional %v", o.Column)
}

// Text returns the textual content of a cell as used by header matching.
func Text(c Cell) string {
	if c == nil {
		return ""
	}
	return valueText(c.Value())
}

// normalizeSpace trims s and collapses runs of whitespace, including
// non-breaking spaces and line breaks, into single spaces.
func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
