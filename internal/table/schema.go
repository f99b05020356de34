package table

import (
	"errors"
	"fmt"
	"slices"
)

// ColumnID names a logical column independently of its position in a report.
type ColumnID string

// Declaration binds a logical column to the strategy that finds it.
type Declaration struct {
	ID     ColumnID
	Column Column
}

// Declare is shorthand for a Declaration literal.
func Declare(id ColumnID, c Column) Declaration {
	return Declaration{ID: id, Column: c}
}

// Schema is the ordered set of columns declared for one table shape.
// A schema is immutable and may be shared by any number of tables.
type Schema struct {
	decls []Declaration
	index map[ColumnID]int
}

// NewSchema validates the declarations and returns a schema that keeps their order.
func NewSchema(decls ...Declaration) (*Schema, error) {
	s := &Schema{
		decls: make([]Declaration, 0, len(decls)),
		index: make(map[ColumnID]int, len(decls)),
	}
	var errs []error
	for _, d := range decls {
		switch {
		case d.ID == "":
			errs = append(errs, errors.New("column with empty id"))
			continue
		case d.Column == nil:
			errs = append(errs, fmt.Errorf("column %q has no matcher", d.ID))
			continue
		}
		if _, dup := s.index[d.ID]; dup {
			errs = append(errs, fmt.Errorf("column %q declared twice", d.ID))
			continue
		}
		s.index[d.ID] = len(s.decls)
		s.decls = append(s.decls, d)
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: %w", ErrHeaderConfig, errors.Join(errs...))
	}
	return s, nil
}

// MustSchema is NewSchema that panics on invalid declarations.
// Use it for package-level schemas.
func MustSchema(decls ...Declaration) *Schema {
	s, err := NewSchema(decls...)
	if err != nil {
		panic(err)
	}
	return s
}

// Len returns the number of declared columns.
func (s *Schema) Len() int {
	return len(s.decls)
}

// Declarations returns a copy of the declarations in declaration order.
func (s *Schema) Declarations() []Declaration {
	return slices.Clone(s.decls)
}

// Column returns the matcher declared for id.
func (s *Schema) Column(id ColumnID) (Column, bool) {
	i, ok := s.index[id]
	if !ok {
		return nil, false
	}
	return s.decls[i].Column, true
}

// IDs returns the declared column ids in declaration order.
func (s *Schema) IDs() []ColumnID {
	ids := make([]ColumnID, len(s.decls))
	for i, d := range s.decls {
		ids[i] = d.ID
	}
	return ids
}
