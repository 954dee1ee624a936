package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/iho/transferledger/internal/adapter/http/dto"
	"github.com/iho/transferledger/internal/domain"
	"github.com/iho/transferledger/internal/usecase"
)

// OperationsService is the ledger contract served over HTTP.
type OperationsService interface {
	CheckBalance(ctx context.Context, accountNumber string) domain.Result[usecase.BalanceView]
	FormattedBalance(ctx context.Context, accountNumber string) domain.Result[usecase.FormattedBalanceView]
	Transfer(ctx context.Context, input usecase.TransferInput) domain.Result[usecase.TransferReceipt]
}

// OperationsHandler serves balance and transfer requests.
type OperationsHandler struct {
	service OperationsService
}

// NewOperationsHandler creates a new OperationsHandler.
func NewOperationsHandler(service OperationsService) *OperationsHandler {
	return &OperationsHandler{service: service}
}

// CheckBalance handles GET /operations/check_balance/{number}.
// The response data is the display string, e.g. "R$ 200,00".
func (h *OperationsHandler) CheckBalance(w http.ResponseWriter, r *http.Request) {
	res := h.service.FormattedBalance(r.Context(), accountNumberParam(r))
	if !res.IsSuccess() {
		writeFailure(w, res.Failure)
		return
	}

	writeData(w, http.StatusOK, res.Data.Display)
}

// Transfer handles POST /operations/transfer.
// The response data is the confirmation message.
func (h *OperationsHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	req, err := decodeTransferRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, KindInvalidRequest, "invalid request body")
		return
	}

	res := h.service.Transfer(r.Context(), req.ToUseCaseInput())
	if !res.IsSuccess() {
		writeFailure(w, res.Failure)
		return
	}

	writeData(w, http.StatusOK, res.Data.Message)
}

// GetBalance handles GET /api/v1/accounts/{number}/balance.
func (h *OperationsHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	res := h.service.CheckBalance(r.Context(), accountNumberParam(r))
	if !res.IsSuccess() {
		writeFailure(w, res.Failure)
		return
	}

	writeData(w, http.StatusOK, dto.BalanceResponse{
		AccountNumber: res.Data.AccountNumber,
		Balance:       res.Data.Balance,
		Display:       domain.FormatBalance(res.Data.Balance),
	})
}

// CreateTransfer handles POST /api/v1/transfers.
func (h *OperationsHandler) CreateTransfer(w http.ResponseWriter, r *http.Request) {
	var req dto.TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, KindInvalidRequest, "invalid request body")
		return
	}

	res := h.service.Transfer(r.Context(), req.ToUseCaseInput())
	if !res.IsSuccess() {
		writeFailure(w, res.Failure)
		return
	}

	writeData(w, http.StatusCreated, dto.TransferResponse{Message: res.Data.Message})
}

func accountNumberParam(r *http.Request) string {
	return strings.TrimSpace(chi.URLParam(r, "number"))
}

// decodeTransferRequest accepts a JSON body or form values. Form clients may
// send "ammount" in place of "amount". An amount that is not a number fails
// decoding in both encodings.
func decodeTransferRequest(r *http.Request) (*dto.TransferRequest, error) {
	var req dto.TransferRequest

	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") || r.Header.Get("Content-Type") == "" {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return nil, err
		}
		return &req, nil
	}

	if err := r.ParseForm(); err != nil {
		return nil, err
	}

	req.SourceAccountNumber = r.PostFormValue("source_account_number")
	req.DestinationAccountNumber = r.PostFormValue("destination_account_number")

	for _, field := range []string{"amount", "ammount"} {
		raw := r.PostFormValue(field)
		if raw == "" {
			continue
		}
		amount, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", field, err)
		}
		req.Amount = &amount
		break
	}

	return &req, nil
}
