package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

const (
	CurrencySymbol    = "R$"
	fractionSeparator = ","
	groupSeparator    = "."
)

// FormatBalance renders amount as a Brazilian real string, e.g. "R$ 1.500,00".
// Values are rounded to two fraction digits.
func FormatBalance(amount decimal.Decimal) string {
	fixed := amount.Abs().StringFixed(MaxFractionDigits)

	intPart, fracPart, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	b.WriteString(CurrencySymbol)
	b.WriteByte(' ')

	if amount.Round(MaxFractionDigits).IsNegative() {
		b.WriteByte('-')
	}

	b.WriteString(groupThousands(intPart))
	b.WriteString(fractionSeparator)
	b.WriteString(fracPart)

	return b.String()
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}

	var b strings.Builder

	head := len(digits) % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}

	for i := head; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteString(groupSeparator)
		}
		b.WriteString(digits[i : i+3])
	}

	return b.String()
}
