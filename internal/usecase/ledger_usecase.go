package usecase

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

var (
	// ErrInconsistentLedger is returned when the ledger is not balanced.
	ErrInconsistentLedger = errors.New("ledger is inconsistent: debits do not equal credits")
)

// ConsistencyReport summarizes a ledger-wide consistency check.
type ConsistencyReport struct {
	TotalAmount     decimal.Decimal
	EntryCount      int64
	UnpairedEntries int64
	Consistent      bool
}

// LedgerUseCase handles ledger-wide operations.
type LedgerUseCase struct {
	entryRepo EntryRepository
}

// NewLedgerUseCase creates a new LedgerUseCase.
func NewLedgerUseCase(entryRepo EntryRepository) *LedgerUseCase {
	return &LedgerUseCase{
		entryRepo: entryRepo,
	}
}

// CheckConsistency verifies that every entry belongs to a complete transfer
// pair and that all amounts sum to zero. The report is returned even when the
// ledger is inconsistent.
func (uc *LedgerUseCase) CheckConsistency(ctx context.Context) (*ConsistencyReport, error) {
	totals, err := uc.entryRepo.Totals(ctx)
	if err != nil {
		return nil, err
	}

	report := &ConsistencyReport{
		TotalAmount:     totals.TotalAmount,
		EntryCount:      totals.EntryCount,
		UnpairedEntries: totals.UnpairedEntries,
		Consistent:      totals.TotalAmount.IsZero() && totals.UnpairedEntries == 0,
	}

	if !report.Consistent {
		return report, ErrInconsistentLedger
	}

	return report, nil
}
