package money

import (
	"github.com/shopspring/decimal"
)

// Precision is the number of decimal places the ledger operates at.
const Precision = 2

// Zero is the zero amount.
var Zero = decimal.Zero

// FromMinorUnits converts an amount expressed in minor units (e.g. kobo,
// cents) into a major-unit decimal. Gateway payloads carry minor units;
// the ledger stores major units with two decimal places.
func FromMinorUnits(minor int64) decimal.Decimal {
	return decimal.New(minor, -Precision)
}

// ToMinorUnits converts a major-unit decimal into minor units, rounding to
// ledger precision first.
func ToMinorUnits(amount decimal.Decimal) int64 {
	return amount.Round(Precision).Shift(Precision).IntPart()
}

// Round normalizes an amount to ledger precision.
func Round(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(Precision)
}

// SplitFee splits a sale amount into a platform fee and a seller net amount.
// The fee is rounded to ledger precision and the net is derived by
// subtraction, so fee + net always reconstructs the original amount exactly.
func SplitFee(amount decimal.Decimal, feeRate decimal.Decimal) (fee, net decimal.Decimal) {
	fee = amount.Mul(feeRate).Round(Precision)
	net = amount.Sub(fee)
	return fee, net
}

// WithdrawalFee computes the payout fee: a percentage of the gross amount
// with a floor at minimumFee.
func WithdrawalFee(amount, feeRate, minimumFee decimal.Decimal) decimal.Decimal {
	fee := amount.Mul(feeRate).Round(Precision)
	if fee.LessThan(minimumFee) {
		return minimumFee
	}
	return fee
}

// IsPositive reports whether the amount is strictly greater than zero.
func IsPositive(amount decimal.Decimal) bool {
	return amount.GreaterThan(decimal.Zero)
}
