package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// NewTransferLegs builds the two entries of transfer transferID moving amount
// from source to destination. The debit is owned by source, the credit by destination, and
// both legs carry the source and destination IDs.
func NewTransferLegs(transferID, debitID, creditID string, source, destination *Account, amount decimal.Decimal, now time.Time) (debit, credit *Entry) {
	debit = &Entry{
		ID:                   debitID,
		AccountID:            source.ID,
		TransferID:           transferID,
		SourceAccountID:      source.ID,
		DestinationAccountID: destination.ID,
		Kind:                 OperationKindDebit,
		Category:             OperationCategoryTransfer,
		Amount:               amount.Neg(),
		CreatedAt:            now,
	}

	credit = &Entry{
		ID:                   creditID,
		AccountID:            destination.ID,
		TransferID:           transferID,
		SourceAccountID:      source.ID,
		DestinationAccountID: destination.ID,
		Kind:                 OperationKindCredit,
		Category:             OperationCategoryTransfer,
		Amount:               amount,
		CreatedAt:            now,
	}

	return debit, credit
}

// ValidatePair checks that debit and credit form a conserving transfer pair.
func ValidatePair(debit, credit *Entry) error {
	if err := debit.Validate(); err != nil {
		return err
	}

	if err := credit.Validate(); err != nil {
		return err
	}

	if debit.Kind != OperationKindDebit || credit.Kind != OperationKindCredit {
		return ErrInvalidEntry
	}

	if debit.TransferID != credit.TransferID {
		return ErrInvalidEntry
	}

	if debit.SourceAccountID != credit.SourceAccountID || debit.DestinationAccountID != credit.DestinationAccountID {
		return ErrInvalidEntry
	}

	if debit.AccountID != debit.SourceAccountID || credit.AccountID != credit.DestinationAccountID {
		return ErrInvalidEntry
	}

	if !debit.Amount.Add(credit.Amount).IsZero() {
		return ErrInvalidEntry
	}

	return nil
}
