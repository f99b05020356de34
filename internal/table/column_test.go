package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// matrixPage holds a three level header:
//
//	row 1: One at 0, Two at 6
//	row 2: a1 a2 a3 under each, two columns apart
//	row 3: b1 b2 repeated
func matrixPage() *memPage {
	rows := map[int][]any{
		0: {"Matrix"},
		1: {"One", nil, nil, nil, nil, nil, "Two"},
		2: make([]any, 12),
		3: make([]any, 12),
		4: make([]any, 12),
	}
	for i := range 12 {
		if i%2 == 0 {
			rows[2][i] = []string{"a1", "a2", "a3"}[(i/2)%3]
			rows[3][i] = "b1"
		} else {
			rows[3][i] = "b2"
		}
		rows[4][i] = i * 100
	}
	return newMemPage(rows)
}

func headerRows(t *testing.T, p Page, nums ...int) []PageRow {
	t.Helper()
	out := make([]PageRow, len(nums))
	for i, n := range nums {
		r, ok := p.Row(n)
		require.True(t, ok)
		out[i] = r
	}
	return out
}

func TestPatternColumn(t *testing.T) {
	page := newMemPage(map[int][]any{
		0: {"Symbol", "Trade  Date", "Net amount", "Amount", 2024},
	})
	rows := headerRows(t, page, 0)

	tests := []struct {
		name  string
		col   Column
		first int
		want  int
	}{
		{"exact", Exact("Amount"), 0, 3},
		{"fold collapses spaces", Fold("trade date"), 0, 1},
		{"words in order", Words("net", "amount"), 0, 2},
		{"words first match", Words("amount"), 0, 2},
		{"start column skips earlier cells", Words("amount"), 3, 3},
		{"regexp is case insensitive", Regexp("^symbol$"), 0, 0},
		{"non string cell", Exact("2024"), 0, 4},
		{"custom match", Match("long text", func(s string) bool { return len(s) > 8 }), 0, 1},
		{"fixed", At(7), 0, 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.col.Index(tt.first, rows...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPatternColumn_NotFound(t *testing.T) {
	page := newMemPage(map[int][]any{0: {"Symbol", "Amount"}})
	rows := headerRows(t, page, 0)

	_, err := Exact("Price").Index(0, rows...)
	assert.ErrorIs(t, err, ErrColumnNotFound)

	_, err = Exact("Symbol").Index(1, rows...)
	assert.ErrorIs(t, err, ErrColumnNotFound, "cells left of the start column are ignored")

	_, err = Words("amount", "net").Index(0, rows...)
	assert.ErrorIs(t, err, ErrColumnNotFound)
}

func TestPatternColumn_ScansRowsInOrder(t *testing.T) {
	page := newMemPage(map[int][]any{
		0: {nil, nil, "Total"},
		1: {"Total"},
	})
	got, err := Exact("Total").Index(0, headerRows(t, page, 0, 1)...)
	require.NoError(t, err)
	assert.Equal(t, 2, got)
}

func TestMultiLineColumn(t *testing.T) {
	page := matrixPage()

	got, err := MultiLineText("Two", "a3", "b1").Index(0, headerRows(t, page, 1, 2, 3)...)
	require.NoError(t, err)
	assert.Equal(t, 10, got)

	got, err = MultiLineText("Two", "a3").Index(0, headerRows(t, page, 1, 2)...)
	require.NoError(t, err)
	assert.Equal(t, 10, got)

	got, err = MultiLine(Fold("One"), Fold("a2"), Exact("b2")).Index(0, headerRows(t, page, 1, 2, 3)...)
	require.NoError(t, err)
	assert.Equal(t, 3, got)

	_, err = MultiLineText("Three", "a1").Index(0, headerRows(t, page, 1, 2)...)
	assert.ErrorIs(t, err, ErrColumnNotFound)
}

func TestMultiLineColumn_RowCountMismatch(t *testing.T) {
	page := matrixPage()

	_, err := MultiLineText("Two", "a3").Index(0, headerRows(t, page, 1, 2, 3)...)
	assert.ErrorIs(t, err, ErrHeaderConfig)
	assert.NotErrorIs(t, err, ErrColumnNotFound)

	_, err = Optional(MultiLineText("Two", "a3")).Index(0, headerRows(t, page, 1, 2, 3)...)
	assert.ErrorIs(t, err, ErrHeaderConfig)
}

func TestMultiLineTable(t *testing.T) {
	schema := MustSchema(
		Declare("two_a3_b1", MultiLineText("Two", "a3", "b1")),
		Declare("one_a1_b2", MultiLineText("One", "a1", "b2")),
	)
	tbl, err := New(matrixPage(), Config{Range: MustRange(0, 4, 0, 11), Schema: schema, LabelRows: 3})
	require.NoError(t, err)

	assert.Equal(t, MustRange(0, 4, 1, 10), tbl.Range())

	c := tbl.Cursor()
	require.True(t, c.Next())
	assert.Equal(t, 1000, c.Row().ValueOr("two_a3_b1", 0))
	assert.Equal(t, 100, c.Row().ValueOr("one_a1_b2", 0))
	assert.False(t, c.Next())
}

func TestNew_MismatchedOptionalMultiLineIsFatal(t *testing.T) {
	schema := MustSchema(Declare("x", Optional(MultiLineText("Two", "a3"))))
	_, err := New(matrixPage(), Config{Range: MustRange(0, 4, 0, 11), Schema: schema, LabelRows: 3})
	assert.ErrorIs(t, err, ErrHeaderConfig)
}

func TestFixedColumn_Negative(t *testing.T) {
	_, err := At(-1).Index(0)
	assert.ErrorIs(t, err, ErrHeaderConfig)
}

func TestOptional(t *testing.T) {
	c := Optional(Fold("x"))
	assert.True(t, IsOptional(c))
	assert.True(t, IsOptional(Optional(c)))
	assert.False(t, IsOptional(Fold("x")))
}

func TestNewSchema(t *testing.T) {
	_, err := NewSchema(
		Declare("a", Fold("A")),
		Declare("a", Fold("B")),
	)
	assert.ErrorIs(t, err, ErrHeaderConfig)

	_, err = NewSchema(Declare("", Fold("A")))
	assert.ErrorIs(t, err, ErrHeaderConfig)

	_, err = NewSchema(Declare("a", nil))
	assert.ErrorIs(t, err, ErrHeaderConfig)

	s, err := NewSchema(Declare("b", At(1)), Declare("a", At(0)))
	require.NoError(t, err)
	assert.Equal(t, []ColumnID{"b", "a"}, s.IDs())
	assert.Equal(t, 2, s.Len())

	col, ok := s.Column("a")
	assert.True(t, ok)
	assert.Equal(t, At(0), col)

	assert.Panics(t, func() { MustSchema(Declare("a", nil)) })
}
