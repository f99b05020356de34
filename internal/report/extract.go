package report

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/JonMunkholm/tablewrap/internal/table"
)

// ErrTableNotFound is returned when the page has no table with the shape's name.
var ErrTableNotFound = errors.New("report table not found")

// Locator is implemented by pages that can find the bounds of a named table.
type Locator interface {
	TableRange(namePrefix, endPrefix string) table.Range
}

// Record is one extracted entity. Values are keyed by field id and hold
// string, int64, float64, decimal.Decimal or time.Time values.
type Record struct {
	Line   int            `json:"line"` // 1-based row on the page
	Values map[string]any `json:"values"`
}

// FailedRow describes a row that could not be extracted.
type FailedRow struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

// Result contains the outcome of extracting one table.
type Result struct {
	Shape   string         `json:"shape"`
	Source  string         `json:"source"`
	Table   string         `json:"table"`
	Range   string         `json:"range"`
	Mapping map[string]int `json:"mapping"`
	Records []Record       `json:"records"`
	Failed  []FailedRow    `json:"failed,omitempty"`
}

// Options tunes Extract.
type Options struct {
	// Coercion overrides the page's own cell conversion.
	Coercion table.CellCoercion
	Logger   *slog.Logger
}

// Extract locates the shape's table on the page and reads its records.
// source identifies the document in logs and results. Rows that fail are
// skipped and listed in Result.Failed.
func Extract(page table.Page, def *Definition, source string, opts Options) (*Result, error) {
	loc, ok := page.(Locator)
	if !ok {
		return nil, fmt.Errorf("page %T cannot locate tables", page)
	}
	schema, err := def.Schema()
	if err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	rng := loc.TableRange(def.Info.Table, def.Info.End)
	if rng.IsEmpty() {
		return nil, fmt.Errorf("%w: %q in %s", ErrTableNotFound, def.Info.Table, source)
	}

	t, err := table.New(page, table.Config{
		NameMatch: func(v any) bool {
			return strings.HasPrefix(strings.TrimSpace(fmt.Sprint(v)), def.Info.Table)
		},
		Range:     rng,
		Schema:    schema,
		LabelRows: def.LabelRows,
		Coercion:  opts.Coercion,
		Logger:    logger,
	})
	if err != nil {
		return nil, fmt.Errorf("shape %s in %s: %w", def.Info.Key, source, err)
	}

	res := &Result{
		Shape:   def.Info.Key,
		Source:  source,
		Table:   t.Name(),
		Range:   t.Range().String(),
		Mapping: make(map[string]int, t.Header().Len()),
	}
	for id, idx := range t.Header().Map() {
		res.Mapping[string(id)] = idx
	}

	c := table.Collector[Record]{
		Report:  source,
		Extract: table.Single(def.extractRow),
		OnError: func(row *table.Row, err error) {
			res.Failed = append(res.Failed, FailedRow{Line: row.RowNum() + 1, Reason: err.Error()})
		},
	}
	if len(def.UniqueKey) > 0 {
		c.Dedup = &table.Dedup[Record]{Equal: def.sameKey, Merge: def.merge}
	}
	res.Records = c.Collect(t)

	logger.Info("report table extracted",
		"shape", def.Info.Key,
		"source", source,
		"table", res.Table,
		"records", len(res.Records),
		"failed", len(res.Failed),
	)
	return res, nil
}

// extractRow reads every field of a row. Blank rows and rows without any
// field value produce no record.
func (d *Definition) extractRow(row *table.Row) (Record, bool, error) {
	if row.IsEmpty() {
		return Record{}, false, nil
	}
	rec := Record{Line: row.RowNum() + 1, Values: make(map[string]any, len(d.Fields))}
	var errs []error
	for _, f := range d.Fields {
		v, err := f.read(row)
		if err != nil {
			if errors.Is(err, table.ErrCellAbsent) && !f.Required {
				continue
			}
			errs = append(errs, err)
			continue
		}
		rec.Values[string(f.ID)] = v
	}
	if len(errs) > 0 {
		return Record{}, false, errors.Join(errs...)
	}
	if len(rec.Values) == 0 {
		return Record{}, false, nil
	}
	return rec, true, nil
}

func (f FieldSpec) read(row *table.Row) (any, error) {
	var (
		v   any
		err error
	)
	switch f.Type {
	case FieldText, FieldEnum:
		var s string
		s, err = row.String(f.ID)
		if err == nil {
			if f.Normalizer != nil {
				s = f.Normalizer(s)
			}
			if f.Type == FieldEnum && !slices.ContainsFunc(f.EnumValues, func(e string) bool { return strings.EqualFold(e, s) }) {
				return nil, &FieldError{Field: string(f.ID), Value: s, Message: fmt.Sprintf("must be one of %v", f.EnumValues)}
			}
		}
		v = s
	case FieldInt:
		v, err = row.Int64(f.ID)
	case FieldDecimal:
		v, err = row.Decimal(f.ID)
	case FieldFloat:
		v, err = row.Float64(f.ID)
	case FieldDateTime:
		v, err = row.LocalDateTime(f.ID)
	case FieldInstant:
		v, err = row.Instant(f.ID)
	default:
		return nil, fmt.Errorf("field %s: unsupported type %s", f.ID, f.Type)
	}
	if err != nil {
		msg := "invalid " + f.Type.String()
		if errors.Is(err, table.ErrCellAbsent) {
			msg = "required field is empty"
		}
		return nil, &FieldError{Field: string(f.ID), Message: msg, Err: err}
	}
	return v, nil
}

func (d *Definition) sameKey(a, b Record) bool {
	for _, id := range d.UniqueKey {
		if keyText(a.Values[string(id)]) != keyText(b.Values[string(id)]) {
			return false
		}
	}
	return true
}

func keyText(v any) string {
	if v == nil {
		return "\x00"
	}
	return fmt.Sprint(v)
}

// merge adds up the Sum fields of two records with the same key. Without Sum
// fields the first record wins.
func (d *Definition) merge(existing, candidate Record) []Record {
	out := Record{Line: existing.Line, Values: make(map[string]any, len(existing.Values))}
	for k, v := range existing.Values {
		out.Values[k] = v
	}
	if len(d.Sum) == 0 {
		return []Record{out}
	}

	allZero := true
	for _, id := range d.Sum {
		sum := asDecimal(existing.Values[string(id)]).Add(asDecimal(candidate.Values[string(id)]))
		out.Values[string(id)] = sum
		if !sum.IsZero() {
			allZero = false
		}
	}
	if allZero {
		return nil
	}
	return []Record{out}
}

func asDecimal(v any) decimal.Decimal {
	if d, ok := v.(decimal.Decimal); ok {
		return d
	}
	return decimal.Zero
}
