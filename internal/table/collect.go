package table

import (
	"fmt"
	"slices"
)

// Extractor turns one data row into zero or more records.
type Extractor[T any] func(row *Row) ([]T, error)

// Single adapts a function producing at most one record per row.
func Single[T any](f func(row *Row) (T, bool, error)) Extractor[T] {
	return func(row *Row) ([]T, error) {
		v, ok, err := f(row)
		if err != nil || !ok {
			return nil, err
		}
		return []T{v}, nil
	}
}

// Dedup merges records that describe the same thing. When Equal reports a
// match against an already collected record, that record is removed and the
// records returned by Merge are appended instead. Merge may return nothing,
// in which case both records vanish.
type Dedup[T any] struct {
	Equal func(existing, candidate T) bool
	Merge func(existing, candidate T) []T
}

// AddMerging adds v to out applying d.
func AddMerging[T any](out []T, v T, d Dedup[T]) []T {
	for i, existing := range out {
		if d.Equal(existing, v) {
			out = slices.Delete(out, i, i+1)
			return append(out, d.Merge(existing, v)...)
		}
	}
	return append(out, v)
}

// Collector runs an Extractor over every data row of a table.
//
// A row whose extraction fails or panics is logged and skipped; the other
// rows are still collected.
type Collector[T any] struct {
	// Report identifies the source document in log records.
	Report  string
	Extract Extractor[T]
	Dedup   *Dedup[T]

	// OnError, if set, is called for every skipped row. The row is only
	// valid during the call.
	OnError func(row *Row, err error)
}

// Collect returns the records of all rows in row order, merged per Dedup.
func (c Collector[T]) Collect(t *Table) []T {
	var out []T
	for row := range t.Rows() {
		records, err := c.extract(row)
		if err != nil {
			t.logger.Warn("cannot parse table row",
				"table", t.name,
				"report", c.Report,
				"row", row.RowNum()+1,
				"error", err,
			)
			if c.OnError != nil {
				c.OnError(row, err)
			}
			continue
		}
		for _, rec := range records {
			if c.Dedup != nil {
				out = AddMerging(out, rec, *c.Dedup)
			} else {
				out = append(out, rec)
			}
		}
	}
	return out
}

func (c Collector[T]) extract(row *Row) (records []T, err error) {
	defer func() {
		if p := recover(); p != nil {
			records, err = nil, fmt.Errorf("row extraction panicked: %v", p)
		}
	}()
	return c.Extract(row)
}

// Collect is a Collector without deduplication.
func Collect[T any](t *Table, report string, extract Extractor[T]) []T {
	return Collector[T]{Report: report, Extract: extract}.Collect(t)
}

// CollectDedup is a Collector with deduplication.
func CollectDedup[T any](t *Table, report string, extract Extractor[T], d Dedup[T]) []T {
	return Collector[T]{Report: report, Extract: extract, Dedup: &d}.Collect(t)
}
