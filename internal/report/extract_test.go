package report

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/tablewrap/internal/grid"
	"github.com/JonMunkholm/tablewrap/internal/table"
)

func flowsShape() *Definition {
	return &Definition{
		Info:      Info{Key: "flows", Group: "test", Label: "Flows", Table: "Cash flows", End: "Total"},
		LabelRows: 1,
		Fields: []FieldSpec{
			{ID: "date", Header: table.Fold("Date"), Type: FieldDateTime, Required: true},
			{ID: "currency", Header: table.Fold("Currency"), Type: FieldText, Required: true, Normalizer: strings.ToUpper},
			{ID: "type", Header: table.Fold("Type"), Type: FieldEnum, Required: true, EnumValues: []string{"deposit", "fee"}, Normalizer: strings.ToLower},
			{ID: "amount", Header: table.Fold("Amount"), Type: FieldDecimal, Required: true},
			{ID: "note", Header: table.Fold("Note"), Type: FieldText, Optional: true},
		},
		UniqueKey: []table.ColumnID{"date", "currency", "type"},
		Sum:       []table.ColumnID{"amount"},
	}
}

func flowsSheet() *grid.Sheet {
	return grid.NewSheet("statement", [][]any{
		{"Statement"},
		{},
		{"Cash flows"},
		{"Date", "Currency", "Type", "Amount"},
		{"2024-01-02", "usd", "Deposit", "100"},
		{"2024-01-02", "USD", "deposit", "50"},
		{"2024-01-03", "EUR", "fee", "-5"},
		{"2024-01-04", "EUR", "bogus", "1"},
		{"2024-01-05", "EUR", "fee", "5"},
		{"2024-01-05", "EUR", "fee", "-5"},
		{"Total", "", "", "145"},
	}, nil)
}

func quietLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewTextHandler(&buf, nil)), &buf
}

// ----------------------------------------------------------------------------
// Extract
// ----------------------------------------------------------------------------

func TestExtract_MergesAndSkips(t *testing.T) {
	def := flowsShape()
	require.NoError(t, def.Validate())
	logger, logs := quietLogger()

	res, err := Extract(flowsSheet(), def, "statement.xlsx", Options{Logger: logger})
	require.NoError(t, err)

	assert.Equal(t, "flows", res.Shape)
	assert.Equal(t, "statement.xlsx", res.Source)
	assert.Equal(t, "Cash flows", res.Table)
	assert.Equal(t, map[string]int{"date": 0, "currency": 1, "type": 2, "amount": 3}, res.Mapping)

	require.Len(t, res.Records, 2)

	usd := res.Records[0]
	assert.Equal(t, 5, usd.Line)
	assert.Equal(t, "USD", usd.Values["currency"])
	assert.Equal(t, "deposit", usd.Values["type"])
	assert.True(t, decimal.NewFromInt(150).Equal(usd.Values["amount"].(decimal.Decimal)))
	_, hasNote := usd.Values["note"]
	assert.False(t, hasNote)

	eur := res.Records[1]
	assert.Equal(t, 7, eur.Line)
	assert.True(t, decimal.NewFromInt(-5).Equal(eur.Values["amount"].(decimal.Decimal)))

	require.Len(t, res.Failed, 1)
	assert.Equal(t, 8, res.Failed[0].Line)
	assert.Contains(t, res.Failed[0].Reason, "bogus")

	assert.Contains(t, logs.String(), "cannot parse table row")
	assert.Contains(t, logs.String(), "report table extracted")
}

func TestExtract_WithoutUniqueKeyKeepsEveryRow(t *testing.T) {
	def := flowsShape()
	def.UniqueKey, def.Sum = nil, nil
	logger, _ := quietLogger()

	res, err := Extract(flowsSheet(), def, "s", Options{Logger: logger})
	require.NoError(t, err)
	assert.Len(t, res.Records, 5)
	assert.Len(t, res.Failed, 1)
}

func TestExtract_TableNotFound(t *testing.T) {
	def := flowsShape()
	def.Info.Table = "Dividends"
	logger, _ := quietLogger()

	_, err := Extract(flowsSheet(), def, "s", Options{Logger: logger})
	assert.ErrorIs(t, err, ErrTableNotFound)
}

func TestExtract_SectionWithoutRows(t *testing.T) {
	tests := []struct {
		name string
		rows [][]any
	}{
		{"title only", [][]any{
			{"Statement"},
			{"Cash flows"},
			{"Total", "", "", "0"},
		}},
		{"title and header", [][]any{
			{"Statement"},
			{"Cash flows"},
			{"Date", "Currency"},
			{"Total", "", "", "0"},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, _ := quietLogger()
			res, err := Extract(grid.NewSheet("statement", tt.rows, nil), flowsShape(), "statement.xlsx", Options{Logger: logger})
			require.NoError(t, err)

			assert.Equal(t, "Cash flows", res.Table)
			assert.Empty(t, res.Records)
			assert.Empty(t, res.Failed)
			assert.Empty(t, res.Mapping)
		})
	}
}

func TestExtract_RequiredColumnMissing(t *testing.T) {
	def := flowsShape()
	def.Fields = append(def.Fields, FieldSpec{ID: "isin", Header: table.Fold("ISIN"), Type: FieldText})
	logger, _ := quietLogger()

	_, err := Extract(flowsSheet(), def, "s", Options{Logger: logger})
	require.Error(t, err)
	assert.ErrorIs(t, err, table.ErrColumnNotFound)

	var ce *table.ColumnError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, table.ColumnID("isin"), ce.Column)
}

func TestExtract_BlankRequiredCell(t *testing.T) {
	def := flowsShape()
	def.UniqueKey, def.Sum = nil, nil
	sheet := grid.NewSheet("s", [][]any{
		{"Cash flows"},
		{"Date", "Currency", "Type", "Amount", "Note"},
		{"2024-01-02", "USD", "fee", "", "monthly"},
		{"2024-01-02", "USD", "fee", "abc", ""},
		{"2024-01-02", "USD", "fee", "1", ""},
	}, nil)
	logger, _ := quietLogger()

	res, err := Extract(sheet, def, "s", Options{Logger: logger})
	require.NoError(t, err)
	require.Len(t, res.Records, 1)
	assert.Equal(t, 5, res.Records[0].Line)

	require.Len(t, res.Failed, 2)
	assert.Contains(t, res.Failed[0].Reason, "required field is empty")
	assert.Contains(t, res.Failed[1].Reason, "invalid decimal")
}

// ----------------------------------------------------------------------------
// Merge
// ----------------------------------------------------------------------------

func TestDefinition_Merge(t *testing.T) {
	def := flowsShape()
	a := Record{Line: 1, Values: map[string]any{"amount": decimal.NewFromInt(3), "currency": "USD"}}
	b := Record{Line: 2, Values: map[string]any{"amount": decimal.NewFromInt(4), "currency": "USD"}}

	merged := def.merge(a, b)
	require.Len(t, merged, 1)
	assert.Equal(t, 1, merged[0].Line)
	assert.True(t, decimal.NewFromInt(7).Equal(merged[0].Values["amount"].(decimal.Decimal)))
	assert.True(t, decimal.NewFromInt(3).Equal(a.Values["amount"].(decimal.Decimal)), "input must not change")

	b.Values["amount"] = decimal.NewFromInt(-3)
	assert.Empty(t, def.merge(a, b))

	def.Sum = nil
	merged = def.merge(a, b)
	require.Len(t, merged, 1)
	assert.Equal(t, a.Values, merged[0].Values)
}

func TestDefinition_SameKey(t *testing.T) {
	def := flowsShape()
	a := Record{Values: map[string]any{"date": "d", "currency": "USD", "type": "fee"}}
	b := Record{Values: map[string]any{"date": "d", "currency": "USD", "type": "fee", "amount": 1}}
	c := Record{Values: map[string]any{"date": "d", "currency": "USD"}}

	assert.True(t, def.sameKey(a, b))
	assert.False(t, def.sameKey(a, c))
}
