// Package money holds the shared currency/percent string helpers. The
// core never formats for display except through these; they are plain
// string-number converters with no locale machinery.
package money

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const missing = "--"

// FormatCurrency renders a dollar amount with 0 decimal places and
// comma grouping: 1234.5 -> "$1,235". Nil, NaN and infinities render
// as "--".
func FormatCurrency(value *float64) string {
	if value == nil || math.IsNaN(*value) || math.IsInf(*value, 0) {
		return missing
	}
	rounded := math.Round(*value)
	negative := rounded < 0
	if negative {
		rounded = -rounded
	}
	if rounded == 0 {
		rounded = 0 // avoid "-0" from negative inputs that round to zero
	}
	formatted := groupThousands(strconv.FormatFloat(rounded, 'f', 0, 64))
	if negative {
		return "-$" + formatted
	}
	return "$" + formatted
}

// FormatPercent renders a percentage with one decimal place: 5.263 ->
// "5.3%". Nil and non-finite values render as "--".
func FormatPercent(value *float64) string {
	if value == nil || math.IsNaN(*value) || math.IsInf(*value, 0) {
		return missing
	}
	return fmt.Sprintf("%.1f%%", *value)
}

// ParseMoney reads a user-entered amount, tolerating "$", comma
// grouping and surrounding whitespace. Returns nil for empty or
// non-numeric input.
func ParseMoney(text string) *float64 {
	cleaned := strings.TrimSpace(text)
	cleaned = strings.ReplaceAll(cleaned, "$", "")
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	cleaned = strings.ReplaceAll(cleaned, " ", "")
	if cleaned == "" {
		return nil
	}
	parsed, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(parsed) || math.IsInf(parsed, 0) {
		return nil
	}
	return &parsed
}

// RoundDollars rounds to a whole dollar, half away from zero. An
// amount passed through RoundDollars survives a
// ParseMoney(FormatCurrency(...)) round trip exactly.
func RoundDollars(value float64) float64 {
	return math.Round(value)
}

// RoundCents rounds to cents precision for storage.
func RoundCents(value float64) float64 {
	return math.Round(value*100) / 100
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
