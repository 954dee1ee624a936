package dto

import (
	"github.com/shopspring/decimal"

	"github.com/iho/transferledger/internal/usecase"
)

// DataResponse wraps a successful payload.
type DataResponse struct {
	Data any `json:"data"`
}

// ErrorResponse is the failure envelope. Data carries the human-readable message.
type ErrorResponse struct {
	Error bool   `json:"error"`
	Kind  string `json:"kind,omitempty"`
	Data  string `json:"data"`
}

// BalanceResponse represents an account balance.
type BalanceResponse struct {
	AccountNumber string          `json:"account_number"`
	Balance       decimal.Decimal `json:"balance"`
	Display       string          `json:"display"`
}

// TransferResponse acknowledges a completed transfer.
type TransferResponse struct {
	Message string `json:"message"`
}

// ConsistencyResponse reports the ledger consistency check.
type ConsistencyResponse struct {
	Consistent      bool            `json:"consistent"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	EntryCount      int64           `json:"entry_count"`
	UnpairedEntries int64           `json:"unpaired_entries"`
}

// ConsistencyFromReport converts a use case report.
func ConsistencyFromReport(r *usecase.ConsistencyReport) *ConsistencyResponse {
	return &ConsistencyResponse{
		Consistent:      r.Consistent,
		TotalAmount:     r.TotalAmount,
		EntryCount:      r.EntryCount,
		UnpairedEntries: r.UnpairedEntries,
	}
}
