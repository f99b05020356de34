// Package table resolves logical columns inside human-authored report tables
// and exposes the table as a sequence of typed rows.
//
// A report table is a rectangular band of a page: one name row, a fixed
// number of header label rows, then data rows. Vendors rename, reorder and
// drop columns between report versions, so columns are never addressed by
// position. Instead a [Schema] declares every logical column together with a
// [Column] strategy that finds it in the header.
//
// # Construction
//
//	schema := table.MustSchema(
//	    table.Declare("date", table.Fold("Trade date")),
//	    table.Declare("price", table.MultiLineText("Amount", "Price")),
//	    table.Declare("fee", table.Optional(table.Words("commission"))),
//	)
//	t, err := table.New(page, table.Config{Range: rng, Schema: schema, LabelRows: 2})
//
// [New] resolves every column once, drops optional columns that are not in the
// header and narrows the table range to the discovered columns.
//
// # Iteration
//
// [Table.Cursor] and [Table.Rows] walk the data rows. The cursor reuses a
// single mutable [Row] for every physical row; call [Row.Clone] to keep a row
// past the next step. Rows missing from the page are returned as empty rows
// whose typed getters fail with [ErrCellAbsent].
//
// # Typed access
//
// Every getter has an Or sibling that returns a default on any failure:
//
//	qty := row.Int64Or("qty", 0)
//	price, err := row.Decimal("price")
//
// # Collecting records
//
// [Collector] drives a cursor, turns each row into zero or more records and
// optionally merges records that describe the same entity. A row whose
// extraction fails is logged and skipped; the scan continues.
package table
