package domain

import "github.com/shopspring/decimal"

// AmountScale is the number of fractional digits money is tracked in.
const AmountScale = 2

// ValidAmount reports whether amount is strictly positive and representable
// in minor units without rounding.
func ValidAmount(amount decimal.Decimal) bool {
	if !amount.IsPositive() {
		return false
	}
	return amount.Equal(amount.Truncate(AmountScale))
}
