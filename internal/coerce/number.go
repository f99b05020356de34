package coerce

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/JonMunkholm/tablewrap/internal/table"
)

// numericRegex validates that a string is a valid numeric format after cleanup.
// Matches integers, decimals, and scientific notation.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

var currencyReplacer = strings.NewReplacer(
	"$", "",
	"\u20ac", "", // Euro
	"\u00a3", "", // Pound
	"\u00a5", "", // Yen
	"\u20bd", "", // Ruble
	" ", "",
	"\u00a0", "",
	"\u202f", "",
	"'", "",
)

// CleanNumber normalizes a human-formatted number to plain decimal notation.
// It handles currency symbols, thousands separators, decimal commas and the
// accounting format (parentheses for negative). ok is false when the result
// is still not a number.
func CleanNumber(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}

	isNegative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		isNegative = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}

	s = currencyReplacer.Replace(s)
	s = normalizeSeparators(s)

	if isNegative {
		s = "-" + strings.TrimPrefix(s, "-")
	}

	if !numericRegex.MatchString(s) {
		return s, false
	}
	return s, true
}

// normalizeSeparators removes thousands separators and turns a decimal comma
// into a point. "1.234,56" and "1,234.56" both become "1234.56". A lone comma
// followed by exactly three digits is read as a thousands separator.
func normalizeSeparators(s string) string {
	comma := strings.LastIndex(s, ",")
	if comma < 0 {
		return s
	}
	dot := strings.LastIndex(s, ".")
	switch {
	case dot > comma:
		return strings.ReplaceAll(s, ",", "")
	case dot >= 0:
		s = strings.ReplaceAll(s, ".", "")
		return strings.Replace(s, ",", ".", 1)
	case strings.Count(s, ",") == 1 && len(s)-comma-1 != 3:
		return strings.Replace(s, ",", ".", 1)
	default:
		return strings.ReplaceAll(s, ",", "")
	}
}

// ParseDecimal parses a human-formatted number.
func ParseDecimal(s string) (decimal.Decimal, error) {
	clean, ok := CleanNumber(s)
	if !ok {
		if clean == "" {
			return decimal.Zero, table.ErrCellAbsent
		}
		return decimal.Zero, typeError(s, "a number")
	}
	d, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %v", table.ErrCellType, err)
	}
	return d, nil
}
