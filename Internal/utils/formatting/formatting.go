package formatting

import (
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Missing is shown in place of a value that cannot be displayed.
const Missing = "—"

// RepeatString repeats a string n times
func RepeatString(s string, count int) string {
	if count <= 0 {
		return ""
	}
	return strings.Repeat(s, count)
}

// Separator returns a line separator of given width
func Separator(width int) string {
	return RepeatString("=", width)
}

// ParseDate parses a date string in multiple formats
func ParseDate(dateStr string) time.Time {
	formats := []string{
		"2006-01-02", // YYYY-MM-DD (series format)
		time.RFC3339,
		"02/01/2006", // DD/MM/YYYY
		"01-02-2006", // MM-DD-YYYY (US format)
	}

	for _, format := range formats {
		if t, err := time.Parse(format, dateStr); err == nil {
			return t
		}
	}

	return time.Time{}
}

// fixed rounds half away from zero, which is how prices are quoted.
func fixed(value float64, places int32) (string, bool) {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return Missing, false
	}
	return decimal.NewFromFloat(value).StringFixed(places), true
}

// FormatPrice renders a price with two decimals.
func FormatPrice(value float64) string {
	s, _ := fixed(value, 2)
	return s
}

// FormatPercentChange renders a signed change like "+2.50%" or "-1.20%".
func FormatPercentChange(value float64) string {
	s, ok := fixed(value, 2)
	if !ok {
		return s
	}
	if value > 0 {
		s = "+" + s
	}
	return s + "%"
}

// FormatPercent1 renders a percentage with one decimal, e.g. "12.0%".
func FormatPercent1(value float64) string {
	s, ok := fixed(value, 1)
	if !ok {
		return s
	}
	return s + "%"
}

func FormatOneDecimal(value float64) string {
	s, _ := fixed(value, 1)
	return s
}

// FormatScore renders a 0-100 score as a whole number.
func FormatScore(value float64) string {
	s, _ := fixed(value, 0)
	return s
}

// FormatVolume abbreviates share volume: 950, 12.3K, 4.5M, 1.2B.
func FormatVolume(vol int64) string {
	v := decimal.NewFromInt(vol)
	abs := v.Abs()
	switch {
	case abs.GreaterThanOrEqual(decimal.New(1, 9)):
		return v.Div(decimal.New(1, 9)).StringFixed(1) + "B"
	case abs.GreaterThanOrEqual(decimal.New(1, 6)):
		return v.Div(decimal.New(1, 6)).StringFixed(1) + "M"
	case abs.GreaterThanOrEqual(decimal.New(1, 3)):
		return v.Div(decimal.New(1, 3)).StringFixed(1) + "K"
	default:
		return v.String()
	}
}

// Format dispatches on a column format name from the screener config.
// Unknown names fall back to one decimal.
func Format(format string, value float64) string {
	switch format {
	case "price":
		return FormatPrice(value)
	case "percentChange":
		return FormatPercentChange(value)
	case "percent1":
		return FormatPercent1(value)
	case "score":
		return FormatScore(value)
	default:
		return FormatOneDecimal(value)
	}
}
