package utils

import (
	"github.com/shopspring/decimal"
)

// DisplayPrecision is the number of decimals amounts are shown with.
const DisplayPrecision = 2

// FormatAmount renders an amount with two decimals, e.g. 12.3456 -> "12.35".
func FormatAmount(amount decimal.Decimal) string {
	return amount.StringFixed(DisplayPrecision)
}

// FormatAbsAmount renders the magnitude of an amount, used for "owes"/"is owed" phrasing.
func FormatAbsAmount(amount decimal.Decimal) string {
	return amount.Abs().StringFixed(DisplayPrecision)
}

// FormatWithPrecision formats an amount with the given precision.
func FormatWithPrecision(amount decimal.Decimal, precision int) string {
	return amount.Round(int32(precision)).String()
}
