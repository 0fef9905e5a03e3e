package pricing

import "github.com/shopspring/decimal"

// RoundUpToThousand returns the smallest multiple of 1000 that is greater than
// or equal to amount. The result is exact; amount must not be negative.
func RoundUpToThousand(amount decimal.Decimal) decimal.Decimal {
	return amount.Shift(-3).Ceil().Shift(3)
}
