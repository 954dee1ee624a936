package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// OperationKind tells whether an entry adds to or removes from a balance.
type OperationKind string

const (
	OperationKindCredit OperationKind = "CREDIT"
	OperationKindDebit  OperationKind = "DEBIT"
)

// OperationCategory groups entries by the operation that produced them.
type OperationCategory string

const (
	OperationCategoryTransfer OperationCategory = "TRANSFER"
)

// Entry is one immutable, signed movement of money on a single account.
// Positive amounts are credits, negative amounts are debits. Both legs of a
// transfer share TransferID.
type Entry struct {
	CreatedAt            time.Time
	ID                   string
	AccountID            string
	TransferID           string
	SourceAccountID      string
	DestinationAccountID string
	Kind                 OperationKind
	Category             OperationCategory
	Amount               decimal.Decimal
}

// Validate checks that the entry amount is non-zero and agrees with its kind.
func (e *Entry) Validate() error {
	if e.Amount.IsZero() {
		return fmt.Errorf("%w: entry %s has zero amount", ErrInvalidEntry, e.ID)
	}

	switch e.Kind {
	case OperationKindCredit:
		if !e.Amount.IsPositive() {
			return fmt.Errorf("%w: credit entry %s must be positive", ErrInvalidEntry, e.ID)
		}
	case OperationKindDebit:
		if !e.Amount.IsNegative() {
			return fmt.Errorf("%w: debit entry %s must be negative", ErrInvalidEntry, e.ID)
		}
	default:
		return fmt.Errorf("%w: unknown operation kind %q", ErrInvalidEntry, e.Kind)
	}

	return nil
}

// SumEntries folds entry amounts into a balance. An empty slice sums to zero.
func SumEntries(entries []*Entry) decimal.Decimal {
	sum := decimal.Zero
	for _, e := range entries {
		sum = sum.Add(e.Amount)
	}

	return sum
}
