package coerce

import (
	"strings"
	"time"

	"github.com/JonMunkholm/tablewrap/internal/table"
)

// Date layouts split by year format for proper 2-digit year handling.
// Slashes and dashes are month first, dots are day first.
var (
	twoDigitYearLayouts = []string{
		"1/2/06", "01/02/06", "1-2-06", "2.1.06", "02.01.06",
	}
	fourDigitYearLayouts = []string{
		"1/2/2006", "01/02/2006", "1-2-2006", "01-02-2006", "2.1.2006", "02.01.2006",
		"2006-01-02", "2006/01/02", "2006.01.02",
		"Jan 2, 2006", "2 Jan 2006", "02-Jan-2006",
		"20060102",
	}

	// clockLayouts are appended to every date layout when a value has a
	// time of day.
	clockLayouts = []string{
		"15:04:05.999999999", "15:04:05", "15:04", "3:04:05 PM", "3:04 PM",
	}

	zonedLayouts = []string{
		time.RFC3339Nano,
		"2006-01-02 15:04:05Z07:00",
		"2006-01-02 15:04:05 -0700",
		"2006-01-02 15:04:05 -07:00",
		"2006-01-02T15:04:05-0700",
		time.RFC1123Z,
		time.RFC1123,
	}
)

// ParseDate parses a calendar date. Four-digit year layouts are tried first
// since they are unambiguous; two-digit years more than pivot years in the
// future are moved to the previous century.
func ParseDate(s string, pivot int) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, table.ErrCellAbsent
	}
	for _, layout := range fourDigitYearLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	for _, layout := range twoDigitYearLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return adjustCentury(t, pivot), nil
		}
	}
	return time.Time{}, typeError(s, "a date")
}

// ParseDateTime parses a zone-less timestamp. A plain date is read as
// midnight. The result is in UTC and carries the wall clock of s.
func ParseDateTime(s string, pivot int) (time.Time, error) {
	s = strings.TrimSpace(strings.Replace(s, "T", " ", 1))
	if s == "" {
		return time.Time{}, table.ErrCellAbsent
	}

	datePart, clockPart, hasClock := strings.Cut(s, " ")
	if !hasClock {
		return ParseDate(s, pivot)
	}
	clockPart = strings.TrimSpace(clockPart)

	for _, clock := range clockLayouts {
		for _, layout := range fourDigitYearLayouts {
			if t, err := time.Parse(layout+" "+clock, datePart+" "+clockPart); err == nil {
				return t, nil
			}
		}
		for _, layout := range twoDigitYearLayouts {
			if t, err := time.Parse(layout+" "+clock, datePart+" "+clockPart); err == nil {
				return adjustCentury(t, pivot), nil
			}
		}
	}

	// Layouts such as "Jan 2, 2006" contain spaces themselves.
	if t, err := ParseDate(s, pivot); err == nil {
		return t, nil
	}
	return time.Time{}, typeError(s, "a date-time")
}

func parseZoned(s string) (time.Time, bool) {
	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func adjustCentury(t time.Time, pivot int) time.Time {
	if t.Year() > time.Now().Year()+pivot {
		return t.AddDate(-100, 0, 0)
	}
	return t
}
