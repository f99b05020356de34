package store

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/JonMunkholm/tablewrap/internal/report"
)

// toPg converts a record value to the pgtype matching the column type.
// A missing value becomes SQL NULL.
func toPg(t report.FieldType, v any) (any, error) {
	switch t {
	case report.FieldText, report.FieldEnum:
		s, _ := v.(string)
		return toPgText(s), nil
	case report.FieldInt:
		if v == nil {
			return pgtype.Int8{}, nil
		}
		i, ok := v.(int64)
		if !ok {
			return nil, typeMismatch(t, v)
		}
		return pgtype.Int8{Int64: i, Valid: true}, nil
	case report.FieldDecimal:
		if v == nil {
			return pgtype.Numeric{}, nil
		}
		d, ok := v.(decimal.Decimal)
		if !ok {
			return nil, typeMismatch(t, v)
		}
		return toPgNumeric(d)
	case report.FieldFloat:
		if v == nil {
			return pgtype.Float8{}, nil
		}
		f, ok := v.(float64)
		if !ok {
			return nil, typeMismatch(t, v)
		}
		return pgtype.Float8{Float64: f, Valid: true}, nil
	case report.FieldDateTime:
		if v == nil {
			return pgtype.Timestamp{}, nil
		}
		tm, ok := v.(time.Time)
		if !ok {
			return nil, typeMismatch(t, v)
		}
		return pgtype.Timestamp{Time: tm, Valid: true}, nil
	case report.FieldInstant:
		if v == nil {
			return pgtype.Timestamptz{}, nil
		}
		tm, ok := v.(time.Time)
		if !ok {
			return nil, typeMismatch(t, v)
		}
		return pgtype.Timestamptz{Time: tm, Valid: true}, nil
	default:
		return nil, fmt.Errorf("unsupported field type %s", t)
	}
}

func typeMismatch(t report.FieldType, v any) error {
	return fmt.Errorf("%T is not a %s value", v, t)
}

// toPgText converts a string to pgtype.Text.
// Returns invalid (NULL) if the string is empty.
func toPgText(s string) pgtype.Text {
	if s == "" {
		return pgtype.Text{Valid: false}
	}
	return pgtype.Text{String: s, Valid: true}
}

// toPgNumeric converts a decimal to pgtype.Numeric without going through float64.
func toPgNumeric(d decimal.Decimal) (pgtype.Numeric, error) {
	var n pgtype.Numeric
	if err := n.Scan(d.String()); err != nil {
		return pgtype.Numeric{}, fmt.Errorf("numeric %s: %w", d, err)
	}
	return n, nil
}

func toPgInt4(i int) pgtype.Int4 {
	return pgtype.Int4{Int32: int32(i), Valid: true}
}

func toPgUUID(id uuid.UUID) pgtype.UUID {
	return pgtype.UUID{Bytes: id, Valid: true}
}
