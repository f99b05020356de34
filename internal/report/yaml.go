package report

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/JonMunkholm/tablewrap/internal/table"
)

// shapeFile is the YAML document read by LoadDefinitions:
//
//	shapes:
//	  - key: fees
//	    group: broker
//	    table: Fees
//	    end: Total
//	    label_rows: 1 # default
//	    unique_key: [date, currency]
//	    sum: [amount]
//	    fields:
//	      - {id: date, header: Date, type: datetime, required: true}
//	      - {id: currency, header: [Amount, Currency]}
//	      - {id: amount, header: "amount|sum", mode: regexp, type: decimal}
//	      - {id: note, index: 5, optional: true}
type shapeFile struct {
	Shapes []shapeDoc `yaml:"shapes" validate:"required,min=1,dive"`
}

type shapeDoc struct {
	Key       string     `yaml:"key" validate:"required"`
	Group     string     `yaml:"group"`
	Label     string     `yaml:"label"`
	Table     string     `yaml:"table" validate:"required"`
	End       string     `yaml:"end"`
	LabelRows *int       `yaml:"label_rows" validate:"omitempty,min=0,max=10"`
	UniqueKey []string   `yaml:"unique_key"`
	Sum       []string   `yaml:"sum"`
	Fields    []fieldDoc `yaml:"fields" validate:"required,min=1,dive"`
}

type fieldDoc struct {
	ID       string        `yaml:"id" validate:"required"`
	Header   StringOrArray `yaml:"header" validate:"required_without=Index"`
	Index    *int          `yaml:"index" validate:"omitempty,min=0"`
	Mode     string        `yaml:"mode" validate:"omitempty,oneof=exact fold regexp words"`
	Type     string        `yaml:"type" validate:"omitempty,oneof=text enum int decimal float datetime instant"`
	Required bool          `yaml:"required"`
	Optional bool          `yaml:"optional"`
	Enum     []string      `yaml:"enum"`
}

// StringOrArray accepts either a single string or a list of strings.
// A list declares a multi-line header with one entry per label row.
type StringOrArray []string

// UnmarshalYAML implements custom YAML unmarshaling for StringOrArray.
func (s *StringOrArray) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var str string
		if err := node.Decode(&str); err != nil {
			return err
		}
		if str != "" {
			*s = StringOrArray{str}
		} else {
			*s = StringOrArray{}
		}
		return nil

	case yaml.SequenceNode:
		var arr []string
		if err := node.Decode(&arr); err != nil {
			return err
		}
		*s = arr
		return nil

	default:
		return fmt.Errorf("line %d: expected string or array", node.Line)
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// LoadDefinitions parses and validates shape definitions from YAML.
func LoadDefinitions(r io.Reader) ([]Definition, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var doc shapeFile
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("parse shapes: %w", err)
	}
	if err := validate.Struct(doc); err != nil {
		return nil, fmt.Errorf("invalid shapes: %w", describeValidation(err))
	}

	defs := make([]Definition, 0, len(doc.Shapes))
	seen := make(map[string]bool, len(doc.Shapes))
	for _, s := range doc.Shapes {
		if seen[s.Key] {
			return nil, fmt.Errorf("shape %q declared twice", s.Key)
		}
		seen[s.Key] = true

		def, err := s.definition()
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	return defs, nil
}

// LoadFile reads shape definitions from a YAML file.
func LoadFile(path string) ([]Definition, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open shapes file: %w", err)
	}
	defer f.Close()

	defs, err := LoadDefinitions(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return defs, nil
}

func (s shapeDoc) definition() (Definition, error) {
	def := Definition{
		Info: Info{
			Key:   s.Key,
			Group: s.Group,
			Label: s.Label,
			Table: s.Table,
			End:   s.End,
		},
		LabelRows: 1,
		UniqueKey: columnIDs(s.UniqueKey),
		Sum:       columnIDs(s.Sum),
	}
	if s.LabelRows != nil {
		def.LabelRows = *s.LabelRows
	}
	if def.Info.Label == "" {
		def.Info.Label = s.Table
	}

	for _, fd := range s.Fields {
		f, err := fd.fieldSpec()
		if err != nil {
			return Definition{}, fmt.Errorf("shape %q field %q: %w", s.Key, fd.ID, err)
		}
		def.Fields = append(def.Fields, f)
	}
	if err := def.Validate(); err != nil {
		return Definition{}, err
	}
	return def, nil
}

func (fd fieldDoc) fieldSpec() (FieldSpec, error) {
	typ, err := ParseFieldType(fd.Type)
	if err != nil {
		return FieldSpec{}, err
	}
	header, err := fd.column()
	if err != nil {
		return FieldSpec{}, err
	}
	return FieldSpec{
		ID:         table.ColumnID(fd.ID),
		Header:     header,
		Type:       typ,
		Required:   fd.Required,
		Optional:   fd.Optional,
		EnumValues: fd.Enum,
	}, nil
}

func (fd fieldDoc) column() (table.Column, error) {
	if fd.Index != nil {
		return table.At(*fd.Index), nil
	}

	levels := make([]table.Column, len(fd.Header))
	for i, text := range fd.Header {
		col, err := matcher(fd.Mode, text)
		if err != nil {
			return nil, err
		}
		levels[i] = col
	}
	switch len(levels) {
	case 0:
		return nil, errors.New("empty header")
	case 1:
		return levels[0], nil
	default:
		return table.MultiLine(levels...), nil
	}
}

func matcher(mode, text string) (col table.Column, err error) {
	switch mode {
	case "", "fold":
		return table.Fold(text), nil
	case "exact":
		return table.Exact(text), nil
	case "words":
		return table.Words(strings.Fields(text)...), nil
	case "regexp":
		defer func() {
			if r := recover(); r != nil {
				col, err = nil, fmt.Errorf("bad header pattern %q: %v", text, r)
			}
		}()
		return table.Regexp(text), nil
	default:
		return nil, fmt.Errorf("unknown header mode %q", mode)
	}
}

func columnIDs(ids []string) []table.ColumnID {
	if len(ids) == 0 {
		return nil
	}
	out := make([]table.ColumnID, len(ids))
	for i, id := range ids {
		out[i] = table.ColumnID(id)
	}
	return out
}

// describeValidation flattens validator errors into one readable error.
func describeValidation(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: failed %q", fe.Namespace(), fe.Tag()))
	}
	return errors.New(strings.Join(msgs, "; "))
}
