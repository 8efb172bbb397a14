package normalize

import (
	"math"
	"strconv"
)

// CentsToDollars renders integer cents as a dollar amount with two decimals,
// e.g. 15000 → "150.00". Negative amounts keep their sign.
func CentsToDollars(cents int64) string {
	return strconv.FormatFloat(float64(cents)/100, 'f', 2, 64)
}

// DollarsToCents converts a dollar amount to integer cents.
// Uses math.Round to avoid truncation bias.
func DollarsToCents(v float64) int64 {
	return int64(math.Round(v * 100))
}

// Units renders a unit count without trailing zeros, e.g. 1 → "1", 1.5 → "1.5".
func Units(u float64) string {
	return strconv.FormatFloat(u, 'f', -1, 64)
}
