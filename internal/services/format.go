package services

import (
	"fmt"
	"math"

	"github.com/dustin/go-humanize"
)

// Indian numbering thresholds.
const (
	crore = 1e7
	lakh  = 1e5
)

// commaf2 renders a value with thousands grouping and exactly two
// decimals, rounded.
func commaf2(v float64) string {
	return humanize.FormatFloat("#,###.##", v)
}

// FormatCurrency renders a rupee amount in Indian display form:
// "Rs.1.25 Cr", "Rs.3.40 Lakh", "Rs.2.50 K", or a plain two-decimal
// value. Zero and non-finite values render as "Rs.0"; the sign leads.
func FormatCurrency(value float64) string {
	if value == 0 || math.IsNaN(value) || math.IsInf(value, 0) {
		return "Rs.0"
	}

	sign := ""
	if value < 0 {
		sign = "-"
	}
	abs := math.Abs(value)

	switch {
	case abs >= crore:
		return fmt.Sprintf("%sRs.%s Cr", sign, commaf2(abs/crore))
	case abs >= lakh:
		return fmt.Sprintf("%sRs.%s Lakh", sign, commaf2(abs/lakh))
	case abs >= 1000:
		return fmt.Sprintf("%sRs.%s K", sign, commaf2(abs/1000))
	default:
		return fmt.Sprintf("%sRs.%s", sign, commaf2(abs))
	}
}

// FormatNumber renders a plain quantity with the same magnitude
// suffixes but no currency prefix, and integer precision below 1000.
func FormatNumber(value float64) string {
	if value == 0 || math.IsNaN(value) || math.IsInf(value, 0) {
		return "0"
	}

	sign := ""
	if value < 0 {
		sign = "-"
	}
	abs := math.Abs(value)

	switch {
	case abs >= crore:
		return fmt.Sprintf("%s%s Cr", sign, commaf2(abs/crore))
	case abs >= lakh:
		return fmt.Sprintf("%s%s Lakh", sign, commaf2(abs/lakh))
	case abs >= 1000:
		return fmt.Sprintf("%s%s K", sign, commaf2(abs/1000))
	default:
		return fmt.Sprintf("%s%s", sign, humanize.CommafWithDigits(math.Round(abs), 0))
	}
}

// Growth is the percentage change from previous to current. A zero
// base is special-cased: +100 for growth from nothing, -100 for a
// drop to negative, 0 for no movement.
func Growth(current, previous float64) float64 {
	if previous == 0 {
		switch {
		case current > 0:
			return 100
		case current < 0:
			return -100
		default:
			return 0
		}
	}
	return (current - previous) / math.Abs(previous) * 100
}

// GrowthIndicator buckets a growth percentage into a display phrase.
func GrowthIndicator(growth float64) string {
	switch {
	case growth > 20:
		return "Strong Growth"
	case growth > 10:
		return "Good Growth"
	case growth > 0:
		return "Slight Growth"
	case growth < -10:
		return "Decline"
	case growth < 0:
		return "Slight Decline"
	default:
		return "No Change"
	}
}

// safeRatio returns 100*num/den rounded to one decimal, or 0 when the
// denominator is not positive. Keeps NaN/Inf out of every margin.
func safeRatio(num, den float64) float64 {
	if den <= 0 {
		return 0
	}
	return round1(num / den * 100)
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }

func round2(v float64) float64 { return math.Round(v*100) / 100 }

const labelLimit = 30

// truncateLabel caps a display label at labelLimit runes with an
// ellipsis suffix.
func truncateLabel(s string) string {
	runes := []rune(s)
	if len(runes) <= labelLimit {
		return s
	}
	return string(runes[:labelLimit]) + "..."
}
