package dto

import (
	"github.com/shopspring/decimal"

	"github.com/iho/transferledger/internal/usecase"
)

// TransferRequest is the body of a transfer. Amount may be sent as a JSON
// string or number; "ammount" is accepted for older clients.
type TransferRequest struct {
	SourceAccountNumber      string           `json:"source_account_number"`
	DestinationAccountNumber string           `json:"destination_account_number"`
	Amount                   *decimal.Decimal `json:"amount,omitempty"`
	LegacyAmount             *decimal.Decimal `json:"ammount,omitempty"`
}

// ToUseCaseInput converts to use case input. A missing amount becomes zero
// and is rejected by the ledger as an invalid amount.
func (r *TransferRequest) ToUseCaseInput() usecase.TransferInput {
	amount := decimal.Zero
	switch {
	case r.Amount != nil:
		amount = *r.Amount
	case r.LegacyAmount != nil:
		amount = *r.LegacyAmount
	}

	return usecase.TransferInput{
		SourceAccountNumber:      r.SourceAccountNumber,
		DestinationAccountNumber: r.DestinationAccountNumber,
		Amount:                   amount,
	}
}
