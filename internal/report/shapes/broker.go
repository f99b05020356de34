package shapes

import (
	"strings"

	"github.com/JonMunkholm/tablewrap/internal/report"
	"github.com/JonMunkholm/tablewrap/internal/table"
)

func init() {
	registerBrokerTrades()
	registerCashFlows()
}

// registerBrokerTrades declares the trades table of a broker statement. The
// header has two rows; price and value share an "Amount" group cell:
//
//	| Date | Symbol | Quantity |     Amount      | Commission |
//	|      |        |          | Price  | Value  |            |
func registerBrokerTrades() {
	report.Register(report.Definition{
		Info: report.Info{
			Key:   "broker_trades",
			Group: "broker",
			Label: "Trades",
			Table: "Trades",
			End:   "Total",
		},
		LabelRows: 2,
		Fields: []report.FieldSpec{
			{ID: "date", Header: table.Words("date"), Type: report.FieldDateTime, Required: true},
			{ID: "symbol", Header: table.Regexp(`^\s*(symbol|ticker|instrument)\s*$`), Type: report.FieldText, Required: true, Normalizer: NormalizeSymbol},
			{ID: "quantity", Header: table.Regexp(`^\s*(quantity|qty)\s*$`), Type: report.FieldInt, Required: true},
			{ID: "price", Header: table.MultiLineText("Amount", "Price"), Type: report.FieldDecimal, Required: true},
			{ID: "value", Header: table.MultiLineText("Amount", "Value"), Type: report.FieldDecimal},
			{ID: "commission", Header: table.Words("commission"), Type: report.FieldDecimal, Optional: true},
			{ID: "currency", Header: table.Fold("Currency"), Type: report.FieldText, Optional: true, Normalizer: NormalizeCurrency},
		},
	})
}

// registerCashFlows declares the cash flow table. Flows of the same day,
// currency and type are merged into one record with the summed amount;
// flows that cancel each other out disappear.
func registerCashFlows() {
	report.Register(report.Definition{
		Info: report.Info{
			Key:   "cash_flows",
			Group: "broker",
			Label: "Cash flows",
			Table: "Cash flows",
			End:   "Total",
		},
		LabelRows: 1,
		Fields: []report.FieldSpec{
			{ID: "date", Header: table.Words("date"), Type: report.FieldDateTime, Required: true},
			{ID: "currency", Header: table.Fold("Currency"), Type: report.FieldText, Required: true, Normalizer: NormalizeCurrency},
			{
				ID:         "type",
				Header:     table.Regexp(`^\s*(type|operation)\s*$`),
				Type:       report.FieldEnum,
				Required:   true,
				EnumValues: []string{"deposit", "withdrawal", "dividend", "coupon", "interest", "tax", "fee"},
				Normalizer: strings.ToLower,
			},
			{ID: "amount", Header: table.Words("amount"), Type: report.FieldDecimal, Required: true},
			{ID: "description", Header: table.Words("description"), Type: report.FieldText, Optional: true},
		},
		UniqueKey: []table.ColumnID{"date", "currency", "type"},
		Sum:       []table.ColumnID{"amount"},
	})
}
