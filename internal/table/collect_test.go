package table

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cashFlow struct {
	Account string
	Amount  decimal.Decimal
}

var flowDedup = Dedup[cashFlow]{
	Equal: func(a, b cashFlow) bool { return a.Account == b.Account },
	Merge: func(a, b cashFlow) []cashFlow {
		sum := a.Amount.Add(b.Amount)
		if sum.IsZero() {
			return nil
		}
		return []cashFlow{{Account: a.Account, Amount: sum}}
	},
}

func flowTable(t *testing.T, logger *slog.Logger, rows ...[]any) *Table {
	t.Helper()
	data := map[int][]any{
		0: {"Cash flows"},
		1: {"Account", "Amount"},
	}
	for i, r := range rows {
		if r != nil {
			data[2+i] = r
		}
	}
	tbl, err := New(newMemPage(data), Config{
		Range: MustRange(0, 1+len(rows), 0, 1),
		Schema: MustSchema(
			Declare("account", Fold("Account")),
			Declare("amount", Fold("Amount")),
		),
		LabelRows: 1,
		Logger:    logger,
	})
	require.NoError(t, err)
	return tbl
}

func extractFlow(row *Row) (cashFlow, bool, error) {
	if row.IsEmpty() {
		return cashFlow{}, false, nil
	}
	account, err := row.String("account")
	if err != nil {
		return cashFlow{}, false, err
	}
	amount, err := row.Decimal("amount")
	if err != nil {
		return cashFlow{}, false, err
	}
	return cashFlow{Account: account, Amount: amount}, true, nil
}

func accounts(flows []cashFlow) []string {
	out := make([]string, len(flows))
	for i, f := range flows {
		out[i] = f.Account + "=" + f.Amount.String()
	}
	return out
}

func TestCollect_RowOrder(t *testing.T) {
	tbl := flowTable(t, nil,
		[]any{"A", "10"},
		[]any{"B", "5"},
		[]any{"A", "15"},
	)
	got := Collect(tbl, "statement.xlsx", Single(extractFlow))
	assert.Equal(t, []string{"A=10", "B=5", "A=15"}, accounts(got))
}

func TestCollectDedup(t *testing.T) {
	tbl := flowTable(t, nil,
		[]any{"A", "10"},
		[]any{"B", "5"},
		[]any{"A", "15"},
		[]any{"C", "3"},
		[]any{"C", "-3"},
	)
	got := CollectDedup(tbl, "statement.xlsx", Single(extractFlow), flowDedup)
	assert.Equal(t, []string{"B=5", "A=25"}, accounts(got))
}

func TestAddMerging_ManyReplacements(t *testing.T) {
	split := Dedup[int]{
		Equal: func(a, b int) bool { return a == b },
		Merge: func(a, b int) []int { return []int{a * 10, b * 100} },
	}
	out := AddMerging([]int{1, 2, 3}, 2, split)
	assert.Equal(t, []int{1, 3, 20, 200}, out)

	out = AddMerging(out, 4, split)
	assert.Equal(t, []int{1, 3, 20, 200, 4}, out)
}

func TestCollector_SkipsBadRows(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	tbl := flowTable(t, logger,
		[]any{"A", "10"},
		[]any{"B", "n/a"},
		[]any{"PANIC", "1"},
		nil,
		[]any{"C", "2"},
	)

	var failed []int
	c := Collector[cashFlow]{
		Report: "statement.xlsx",
		Extract: Single(func(row *Row) (cashFlow, bool, error) {
			if row.StringOr("account", "") == "PANIC" {
				panic("boom")
			}
			return extractFlow(row)
		}),
		OnError: func(row *Row, err error) {
			failed = append(failed, row.RowNum()+1)
		},
	}
	got := c.Collect(tbl)

	assert.Equal(t, []string{"A=10", "C=2"}, accounts(got))
	assert.Equal(t, []int{4, 5}, failed)

	logs := buf.String()
	assert.Contains(t, logs, "cannot parse table row")
	assert.Contains(t, logs, `table="Cash flows"`)
	assert.Contains(t, logs, "report=statement.xlsx")
	assert.Contains(t, logs, "row=4")
	assert.Contains(t, logs, "row extraction panicked: boom")
	assert.Equal(t, 2, strings.Count(logs, "level=WARN"))
}

func TestCollector_ExtractorError(t *testing.T) {
	tbl := flowTable(t, slog.New(slog.DiscardHandler), []any{"A", "1"}, []any{"B", "2"})
	errSkip := errors.New("skip")

	got := Collect(tbl, "r", func(row *Row) ([]cashFlow, error) {
		if row.StringOr("account", "") == "A" {
			return []cashFlow{{Account: "A"}}, errSkip
		}
		return []cashFlow{{Account: "B1"}, {Account: "B2"}}, nil
	})
	assert.Len(t, got, 2)
	assert.Equal(t, "B1", got[0].Account)
	assert.Equal(t, "B2", got[1].Account)
}
