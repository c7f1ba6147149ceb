// Package xlsx recovers dated, typed records from the plant's Russian-language
// Excel workbooks. Parsing is two-phase: a layout-discovery pass locates the
// data by marker substrings and header text, then a pure extraction pass
// consumes the discovered layout.
package xlsx

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// excelEpoch is the spreadsheet serial-date origin (day 0 = 1899-12-30).
var excelEpoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)

// SerialToDate converts an Excel day-count serial into a calendar date at
// UTC midnight. The fractional part (time of day) is discarded.
func SerialToDate(serial float64) time.Time {
	days := int(math.Floor(serial))
	return excelEpoch.AddDate(0, 0, days)
}

// FractionToTime maps a [0,1) fraction of a day to "HH:MM", rounding to the
// nearest minute, modulo 24 hours.
func FractionToTime(fraction float64) string {
	minutes := int(math.Round(fraction*24*60)) % (24 * 60)
	if minutes < 0 {
		minutes += 24 * 60
	}
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// ParseLooseNumeric returns the numeric value of a cell, tolerating
// surrounding whitespace. Empty strings, spreadsheet error markers ("#..."),
// NaN, infinities and anything else not coercible to a finite number are
// rejected.
func ParseLooseNumeric(value string) (float64, bool) {
	s := strings.TrimSpace(value)
	if s == "" || strings.HasPrefix(s, "#") {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

var russianDateRe = regexp.MustCompile(`^(\d{1,2})\.(\d{1,2})\.(\d{2}|\d{4})$`)

// ParseRussianDate matches D.M.Y with a 1-2 digit day/month and a 2 or 4
// digit year. Two-digit years resolve via a 1950/2000 pivot: 00-49 maps to
// the 2000s, 50-99 to the 1900s.
func ParseRussianDate(text string) (time.Time, bool) {
	m := russianDateRe.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return time.Time{}, false
	}
	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])
	if len(m[3]) == 2 {
		if year < 50 {
			year += 2000
		} else {
			year += 1900
		}
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC), true
}

var sheetLabelRe = regexp.MustCompile(`^(\d{1,2}\.\d{1,2}\.(?:\d{2}|\d{4}))\s*см\s*(\d)$`)

// ParseSheetLabel matches the shift-journal sheet naming convention
// "D.M.Yсм<shift>", e.g. "01.01.26см1". Sheets whose names do not match are
// not data sheets and are skipped by the caller.
func ParseSheetLabel(name string) (time.Time, int, bool) {
	m := sheetLabelRe.FindStringSubmatch(strings.TrimSpace(name))
	if m == nil {
		return time.Time{}, 0, false
	}
	date, ok := ParseRussianDate(m[1])
	if !ok {
		return time.Time{}, 0, false
	}
	shift, _ := strconv.Atoi(m[2])
	return date, shift, true
}

// monthStems maps Cyrillic month-name stems to month numbers. Stems rather
// than full forms tolerate declension ("сентября", "в сентябре", ...).
var monthStems = []struct {
	stem  string
	month time.Month
}{
	{"январ", time.January},
	{"феврал", time.February},
	{"март", time.March},
	{"апрел", time.April},
	{"май", time.May},
	{"мая", time.May},
	{"июн", time.June},
	{"июл", time.July},
	{"август", time.August},
	{"сентябр", time.September},
	{"октябр", time.October},
	{"ноябр", time.November},
	{"декабр", time.December},
}

var yearRe = regexp.MustCompile(`(\d{4})`)

// ParseMonthYearLabel matches a Cyrillic month name (by stem,
// case-insensitive) plus a 4-digit year anywhere in text. Returns false when
// no month stem or no year is found.
func ParseMonthYearLabel(text string) (time.Month, int, bool) {
	lower := strings.ToLower(text)
	var month time.Month
	found := false
	for _, s := range monthStems {
		if strings.Contains(lower, s.stem) {
			month = s.month
			found = true
			break
		}
	}
	if !found {
		return 0, 0, false
	}
	ym := yearRe.FindStringSubmatch(lower)
	if ym == nil {
		return 0, 0, false
	}
	year, _ := strconv.Atoi(ym[1])
	return month, year, true
}

var whitespaceRe = regexp.MustCompile(`\s+`)

// CleanText trims and collapses internal whitespace runs to single spaces.
func CleanText(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}
