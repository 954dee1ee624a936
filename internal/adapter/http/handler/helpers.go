package handler

import (
	"encoding/json"
	"net/http"

	"github.com/iho/transferledger/internal/adapter/http/dto"
	"github.com/iho/transferledger/internal/domain"
)

// KindInvalidRequest marks requests rejected before reaching the ledger.
const KindInvalidRequest = "INVALID_REQUEST"

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeData writes a successful {"data": ...} envelope.
func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, dto.DataResponse{Data: data})
}

// writeError writes a failure envelope.
func writeError(w http.ResponseWriter, status int, kind, message string) {
	writeJSON(w, status, dto.ErrorResponse{Error: true, Kind: kind, Data: message})
}

// writeFailure writes a ledger failure with the status matching its kind.
func writeFailure(w http.ResponseWriter, failure *domain.Failure) {
	writeError(w, statusForKind(failure.Kind), string(failure.Kind), failure.Message)
}

// statusForKind maps ledger failure kinds to HTTP status codes.
func statusForKind(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindAccountNotFound,
		domain.KindSourceAccountNotFound,
		domain.KindDestinationAccountNotFound:
		return http.StatusNotFound
	case domain.KindInvalidAmount, domain.KindSameAccount:
		return http.StatusBadRequest
	case domain.KindInsufficientFunds:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
