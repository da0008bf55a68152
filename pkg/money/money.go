// Package money converts between decimal currency amounts and the int64
// minor units (cents) stored everywhere else in the system.
package money

import (
	"fmt"
	"strconv"
	"strings"
)

// ToCents converts a decimal amount to cents, rounding half-up.
// ToCents(0.125) == 13, ToCents(-0.125) == -13. The rounding works on
// the shortest decimal rendering of the value, not the raw float, so
// inputs like 0.285 (stored as 0.28499...) still round to 29.
func ToCents(amount float64) int64 {
	text := strconv.FormatFloat(amount, 'f', -1, 64)

	sign := int64(1)
	if strings.HasPrefix(text, "-") {
		sign = -1
		text = text[1:]
	}

	whole, frac, _ := strings.Cut(text, ".")
	for len(frac) < 3 {
		frac += "0"
	}

	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0
	}

	cents := units*100 + int64(frac[0]-'0')*10 + int64(frac[1]-'0')
	if frac[2] >= '5' {
		cents++
	}
	return sign * cents
}

// FromCents converts cents back to a decimal amount.
func FromCents(cents int64) float64 {
	return float64(cents) / 100
}

// FormatCents renders cents as a plain two-decimal string, e.g. "2.50".
func FormatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}
