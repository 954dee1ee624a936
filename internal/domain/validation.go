package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Validation constants
const (
	MaxTransferAmount   = "1000000000000" // 1 trillion
	MaxFractionDigits   = 2
	MaxAccountNumberLen = 64
)

var maxTransferAmount = decimal.RequireFromString(MaxTransferAmount)

// ValidateTransferAmount checks that amount is positive, has at most two
// fraction digits and does not exceed MaxTransferAmount.
func ValidateTransferAmount(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return NewError(KindInvalidAmount, ErrInvalidAmount.Error(), ErrInvalidAmount)
	}

	if !amount.Equal(amount.Truncate(MaxFractionDigits)) {
		return NewError(KindInvalidAmount,
			fmt.Sprintf("invalid amount, use at most %d decimal places", MaxFractionDigits),
			ErrInvalidAmount)
	}

	if amount.GreaterThan(maxTransferAmount) {
		return NewError(KindInvalidAmount,
			fmt.Sprintf("invalid amount, maximum amount is %s", MaxTransferAmount),
			ErrInvalidAmount)
	}

	return nil
}

// ValidateAccountNumber rejects empty or oversized account numbers before
// they reach the account lookup.
func ValidateAccountNumber(number string) bool {
	return number != "" && len(number) <= MaxAccountNumberLen
}
