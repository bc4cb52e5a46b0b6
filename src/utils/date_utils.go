package utils

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// DBTimeLayout is how dates are stored in the record store. Always UTC, so the
// text sorts and compares chronologically.
const DBTimeLayout = "2006-01-02 15:04:05"

// DateLayout is the day-only layout used for windows and day keys.
const DateLayout = "2006-01-02"

var tradeDateLayouts = []string{
	time.RFC3339,
	DBTimeLayout,
	"2006-01-02T15:04:05",
	DateLayout,
	"01/02/2006",
	"1/2/2006",
	"01/02/2006 15:04:05",
	"02-01-2006",
}

// maxExcelSerial is 9999-12-31 in the 1900 date system.
const maxExcelSerial = 2958465

// ParseTradeDate parses a trade date in any of the layouts brokerage exports use.
// Raw spreadsheet cells carry dates as serial day numbers, which are accepted too.
func ParseTradeDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	for _, layout := range tradeDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil && serial >= 1 && serial <= maxExcelSerial {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid spreadsheet date '%s': %w", s, err)
		}
		return t.UTC(), nil
	}
	return time.Time{}, fmt.Errorf("unrecognized date format '%s'", s)
}

// FormatDBTime renders a time for storage.
func FormatDBTime(t time.Time) string {
	return t.UTC().Format(DBTimeLayout)
}

// ParseDBTime parses a stored time.
func ParseDBTime(s string) (time.Time, error) {
	t, err := time.Parse(DBTimeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid stored time '%s': %w", s, err)
	}
	return t.UTC(), nil
}

// DayKey is the trading day of t.
func DayKey(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// StartOfDay returns 00:00:00 UTC of t's day.
func StartOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// EndOfDay returns 23:59:59 UTC of t's day.
func EndOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, time.UTC)
}
