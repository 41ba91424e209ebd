package payments

import "github.com/shopspring/decimal"

// DefaultPlatformFeePercent is the platform's cut of every settled booking.
const DefaultPlatformFeePercent int64 = 10

// TransferAmount returns the seller payout for a received amount: the
// remainder after the platform fee, floored to whole cents.
func TransferAmount(receivedCents, feePercent int64) int64 {
	if receivedCents <= 0 {
		return 0
	}
	if feePercent < 0 || feePercent > 100 {
		feePercent = DefaultPlatformFeePercent
	}
	payout := decimal.NewFromInt(receivedCents).
		Mul(decimal.NewFromInt(100 - feePercent)).
		Div(decimal.NewFromInt(100))
	return payout.Floor().IntPart()
}

// DollarsToCents converts an API-facing dollar amount into integer cents,
// truncating sub-cent precision.
func DollarsToCents(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).IntPart()
}
