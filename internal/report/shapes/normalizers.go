package shapes

import "strings"

// currencySymbols maps currency symbols and local names to ISO 4217 codes.
var currencySymbols = map[string]string{
	"$":      "USD",
	"us$":    "USD",
	"dollar": "USD",
	"€":      "EUR",
	"euro":   "EUR",
	"£":      "GBP",
	"pound":  "GBP",
	"¥":      "JPY",
	"yen":    "JPY",
	"₽":      "RUB",
	"rub.":   "RUB",
	"руб":    "RUB",
	"руб.":   "RUB",
	"chf":    "CHF",
	"fr.":    "CHF",
	"hk$":    "HKD",
	"c$":     "CAD",
	"a$":     "AUD",
	"rur":    "RUB",
}

// NormalizeCurrency converts currency symbols and names to ISO codes.
// If the input is already a code or not recognized, returns it upper-cased.
func NormalizeCurrency(s string) string {
	s = strings.TrimSpace(s)
	if code, ok := currencySymbols[strings.ToLower(s)]; ok {
		return code
	}
	return strings.ToUpper(s)
}

// NormalizeSymbol trims exchange suffixes such as "AAPL.US" or "SBER:MOEX".
func NormalizeSymbol(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	if i := strings.IndexAny(s, ".:"); i > 0 {
		s = s[:i]
	}
	return s
}
