package handler

import (
	"context"
	"net/http"

	"github.com/iho/transferledger/internal/adapter/http/dto"
	"github.com/iho/transferledger/internal/usecase"
)

// ConsistencyChecker reports on ledger-wide consistency.
type ConsistencyChecker interface {
	CheckConsistency(ctx context.Context) (*usecase.ConsistencyReport, error)
}

// LedgerHandler handles ledger-wide operations.
type LedgerHandler struct {
	checker ConsistencyChecker
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(checker ConsistencyChecker) *LedgerHandler {
	return &LedgerHandler{checker: checker}
}

// CheckConsistency handles GET /api/v1/ledger/consistency.
func (h *LedgerHandler) CheckConsistency(w http.ResponseWriter, r *http.Request) {
	report, err := h.checker.CheckConsistency(r.Context())
	if report == nil {
		writeError(w, http.StatusInternalServerError, "STORAGE_FAILURE", "failed to check consistency")
		return
	}

	status := http.StatusOK
	if err != nil || !report.Consistent {
		status = http.StatusConflict
	}

	writeData(w, status, dto.ConsistencyFromReport(report))
}
