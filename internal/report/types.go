// Package report declares report shapes and extracts their records from pages.
//
// A shape names the table on the page, its header band and the fields to
// read. Shapes are registered at init time by the shapes package or loaded
// from YAML with LoadDefinitions.
package report

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/JonMunkholm/tablewrap/internal/table"
)

// FieldType represents the Go type a field is read as.
type FieldType int

const (
	FieldText FieldType = iota
	FieldEnum
	FieldInt
	FieldDecimal
	FieldFloat
	FieldDateTime
	FieldInstant
)

var fieldTypeNames = map[FieldType]string{
	FieldText:     "text",
	FieldEnum:     "enum",
	FieldInt:      "int",
	FieldDecimal:  "decimal",
	FieldFloat:    "float",
	FieldDateTime: "datetime",
	FieldInstant:  "instant",
}

func (t FieldType) String() string {
	if name, ok := fieldTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("FieldType(%d)", int(t))
}

// ParseFieldType returns the type named s. An empty name means text.
func ParseFieldType(s string) (FieldType, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return FieldText, nil
	}
	for t, name := range fieldTypeNames {
		if name == s {
			return t, nil
		}
	}
	return FieldText, fmt.Errorf("unknown field type %q", s)
}

// FieldSpec declares one field of a report shape.
type FieldSpec struct {
	ID     table.ColumnID // Key of the value in Record.Values
	Header table.Column   // How the column is found in the header
	Type   FieldType

	// Required fields fail the row when their cell is blank.
	Required bool

	// Optional fields may be missing from the header altogether.
	Optional bool

	EnumValues []string            // Valid values for FieldEnum
	Normalizer func(string) string // Optional transformation of text values
}

// Info contains display and lookup information about a shape.
type Info struct {
	Key   string // Unique identifier: "broker_trades"
	Group string // Report family: "broker"
	Label string // Display name: "Trades"

	// Table is the prefix of the table name cell on the page.
	Table string

	// End is the prefix of the first row below the table, such as "Total".
	// Empty means the table ends at the first blank row.
	End string
}

// Definition contains everything needed to extract one table shape.
type Definition struct {
	Info      Info
	LabelRows int
	Fields    []FieldSpec

	// UniqueKey lists the fields that identify a record. Records with equal
	// keys are merged.
	UniqueKey []table.ColumnID

	// Sum lists decimal fields that are added up when records are merged.
	// A merged record whose sums are all zero is dropped.
	Sum []table.ColumnID

	schema *table.Schema
}

// Field returns the FieldSpec with the given id.
func (d *Definition) Field(id table.ColumnID) (FieldSpec, bool) {
	i := slices.IndexFunc(d.Fields, func(f FieldSpec) bool { return f.ID == id })
	if i < 0 {
		return FieldSpec{}, false
	}
	return d.Fields[i], true
}

// Columns returns the field ids in declaration order.
func (d *Definition) Columns() []string {
	out := make([]string, len(d.Fields))
	for i, f := range d.Fields {
		out[i] = string(f.ID)
	}
	return out
}

// Schema returns the column schema of the shape, building it on first use.
func (d *Definition) Schema() (*table.Schema, error) {
	if d.schema != nil {
		return d.schema, nil
	}
	decls := make([]table.Declaration, len(d.Fields))
	for i, f := range d.Fields {
		col := f.Header
		if f.Optional && col != nil {
			col = table.Optional(col)
		}
		decls[i] = table.Declare(f.ID, col)
	}
	s, err := table.NewSchema(decls...)
	if err != nil {
		return nil, fmt.Errorf("shape %s: %w", d.Info.Key, err)
	}
	d.schema = s
	return s, nil
}

// Validate checks the definition for declaration mistakes and builds its schema.
func (d *Definition) Validate() error {
	var errs []error
	if d.Info.Key == "" {
		errs = append(errs, errors.New("missing key"))
	}
	if d.Info.Table == "" {
		errs = append(errs, errors.New("missing table name prefix"))
	}
	if d.LabelRows < 0 {
		errs = append(errs, fmt.Errorf("negative label rows %d", d.LabelRows))
	}
	if len(d.Fields) == 0 {
		errs = append(errs, errors.New("no fields"))
	}
	for _, f := range d.Fields {
		if f.Type == FieldEnum && len(f.EnumValues) == 0 {
			errs = append(errs, fmt.Errorf("enum field %s has no values", f.ID))
		}
	}
	for _, id := range d.UniqueKey {
		if _, ok := d.Field(id); !ok {
			errs = append(errs, fmt.Errorf("unique key field %s is not declared", id))
		}
	}
	for _, id := range d.Sum {
		f, ok := d.Field(id)
		switch {
		case !ok:
			errs = append(errs, fmt.Errorf("sum field %s is not declared", id))
		case f.Type != FieldDecimal:
			errs = append(errs, fmt.Errorf("sum field %s must be decimal, is %s", id, f.Type))
		}
	}
	if len(d.Sum) > 0 && len(d.UniqueKey) == 0 {
		errs = append(errs, errors.New("sum fields require a unique key"))
	}
	if len(errs) == 0 {
		if _, err := d.Schema(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid shape %q: %w", d.Info.Key, errors.Join(errs...))
	}
	return nil
}
