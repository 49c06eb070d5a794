// Package core provides the ledger domain types together with the value
// coercion rules shared by every reader of tabular data.
package core

import (
	"math"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// CoerceAmount converts a raw cell into a non-negative integer amount.
//
// Integers are taken as-is, decimals are truncated toward zero, and anything
// that is not a finite number becomes 0. Negative values clamp to 0. It never
// fails.
//
// Examples:
//
//	CoerceAmount("1500000")   -> 1500000
//	CoerceAmount("75000.9")   -> 75000
//	CoerceAmount("abc")       -> 0
//	CoerceAmount("-10")       -> 0
func CoerceAmount(s string) int64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return max(v, 0)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	if f <= 0 {
		return 0
	}
	if f >= math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(f)
}

// FormatRupiah renders an amount with thousands separators, e.g. "Rp 1,500,000".
func FormatRupiah(amount int64) string {
	return printer.Sprintf("Rp %d", amount)
}

var dateLayouts = []string{
	DateLayout,
	"2006/01/02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
}

// spreadsheet day zero (1900 date system, including the leap-year bug offset)
var serialEpoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)

// ParseDate parses a calendar date from the supported textual layouts or a
// spreadsheet serial day number.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, ErrInvalidDate
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return DateOf(t), nil
		}
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f >= 1 && f < 2958466 {
		days := int(math.Floor(f))
		return DateOf(serialEpoch.AddDate(0, 0, days)), nil
	}
	return Date{}, ErrInvalidDate
}
