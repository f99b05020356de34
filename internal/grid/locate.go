package grid

import "github.com/JonMunkholm/tablewrap/internal/table"

// TableRange locates a table by the text of its name cell.
//
// The table starts at the row holding the first cell that starts with
// namePrefix. With an endPrefix it ends right above the first later row whose
// first cell starts with endPrefix, or at the end of the sheet, and blank rows
// in between belong to the table. Without one it ends right above the first
// blank row. The columns span the populated cells
// of all rows in between. EmptyRange is returned when the name is not found.
func (s *Sheet) TableRange(namePrefix, endPrefix string) table.Range {
	start := s.FindByPrefix(namePrefix)
	if !start.IsFound() {
		return table.EmptyRange
	}

	last := start.Row
	for i := start.Row + 1; i < len(s.rows); i++ {
		r := s.rows[i]
		if r == nil {
			if endPrefix == "" {
				break
			}
			last = i
			continue
		}
		if endPrefix != "" && r.startsWith(endPrefix) {
			break
		}
		last = i
	}

	firstCol, lastCol := -1, -1
	for i := start.Row; i <= last; i++ {
		r := s.rows[i]
		if r == nil {
			continue
		}
		if firstCol < 0 || r.first < firstCol {
			firstCol = r.first
		}
		lastCol = max(lastCol, r.last)
	}

	rng, err := table.NewRange(start.Row, last, firstCol, lastCol)
	if err != nil {
		return table.EmptyRange
	}
	return rng
}
