package table

import "iter"

// Cursor walks the data rows of a table, top to bottom.
//
// Rows present on the page are served through one shared Row that is rebound
// on every step, so a Row obtained from the cursor is only valid until the
// next call to Next. Use Row.Clone to keep it. Rows missing from the page are
// served as fresh empty rows.
type Cursor struct {
	t      *Table
	shared Row
	cur    *Row
	next   int
	end    int
}

// Cursor returns a cursor positioned before the first data row.
func (t *Table) Cursor() *Cursor {
	return &Cursor{
		t:      t,
		shared: Row{table: t},
		next:   t.dataRowOffset,
		end:    t.rng.RowCount(),
	}
}

// Next advances to the next data row and reports whether there is one.
func (c *Cursor) Next() bool {
	if c.next >= c.end {
		c.cur = nil
		return false
	}
	num := c.t.rng.FirstRow + c.next
	c.next++
	if pr, ok := c.t.page.Row(num); ok {
		c.shared.num = num
		c.shared.row = pr
		c.cur = &c.shared
	} else {
		c.cur = &Row{table: c.t, num: num}
	}
	return true
}

// Row returns the current row, or nil before the first and after the last call to Next.
func (c *Cursor) Row() *Row {
	return c.cur
}

// Rows returns an iterator over the data rows with Cursor semantics.
func (t *Table) Rows() iter.Seq[*Row] {
	return func(yield func(*Row) bool) {
		c := t.Cursor()
		for c.Next() {
			if !yield(c.Row()) {
				return
			}
		}
	}
}
