// Package format renders prices and percentages for display.
package format

import (
	"fmt"
	"math"
	"strings"
)

// NoValue is rendered in place of an absent or undefined number.
const NoValue = "-"

// Rupiah returns a whole-rupiah price with thousands separators (e.g., "Rp 12,345").
func Rupiah(amount float64) string {
	rounded := math.Round(amount)
	if rounded < 0 {
		return "-Rp " + groupThousands(fmt.Sprintf("%.0f", -rounded))
	}
	return "Rp " + groupThousands(fmt.Sprintf("%.0f", rounded))
}

// OptionalRupiah is Rupiah for an optional price.
func OptionalRupiah(amount *float64) string {
	if amount == nil {
		return NoValue
	}
	return Rupiah(*amount)
}

// Percent returns a percentage with two decimals (e.g., "12.34%"). NaN and
// infinities are rendered as-is so an undefined result is never shown as a number.
func Percent(value float64) string {
	switch {
	case math.IsNaN(value):
		return "NaN"
	case math.IsInf(value, 1):
		return "+Inf%"
	case math.IsInf(value, -1):
		return "-Inf%"
	}
	return fmt.Sprintf("%.2f%%", value)
}

// OptionalPercent is Percent for an optional value.
func OptionalPercent(value *float64) string {
	if value == nil {
		return NoValue
	}
	return Percent(*value)
}

func groupThousands(intPart string) string {
	if len(intPart) <= 3 {
		return intPart
	}
	var builder strings.Builder
	for i, digit := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			builder.WriteByte(',')
		}
		builder.WriteRune(digit)
	}
	return builder.String()
}
