// Package format renders monetary and length values for display.
package format

import (
	"math"

	"github.com/dustin/go-humanize"
)

// Currency returns a currency string with a dollar sign and thousands separators (e.g., "-$1,234.56").
func Currency(amount float64) string {
	formatted := NumericCurrency(math.Abs(amount))
	if amount < 0 && formatted != "0.00" {
		return "-$" + formatted
	}
	return "$" + formatted
}

// NumericCurrency returns a currency string without a currency symbol but with separators (e.g., "-1,234.56").
func NumericCurrency(amount float64) string {
	rounded := math.Round(math.Abs(amount)*100) / 100
	formatted := humanize.FormatFloat("#,###.##", rounded)
	if amount < 0 && rounded != 0 {
		return "-" + formatted
	}
	return formatted
}

// Length renders a centimeter length with one decimal, e.g. "1,680.0cm".
func Length(cm float64) string {
	return humanize.FormatFloat("#,###.#", cm) + "cm"
}
