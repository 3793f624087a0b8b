package handler

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"account-ledger/internal/domain"
	"account-ledger/internal/errors"
	"account-ledger/internal/service"
)

type QueryHandler struct {
	queryService *service.QueryService
}

func NewQueryHandler(queryService *service.QueryService) *QueryHandler {
	return &QueryHandler{
		queryService: queryService,
	}
}

type EntryResponse struct {
	Sequence      int64  `json:"sequence"`
	AccountID     string `json:"account_id"`
	Kind          string `json:"kind"`
	Amount        string `json:"amount"`
	CorrelationID string `json:"correlation_id"`
	Timestamp     string `json:"timestamp"`
}

func (h *QueryHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	accountID := mux.Vars(r)["account_id"]
	if !domain.ValidAccountID(accountID) {
		writeError(w, errors.ErrInvalidAccountID)
		return
	}

	balance, err := h.queryService.GetBalance(r.Context(), accountID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, BalanceResponse{
		AccountID: accountID,
		Balance:   formatAmount(balance),
	})
}

func (h *QueryHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	accountID := mux.Vars(r)["account_id"]
	if !domain.ValidAccountID(accountID) {
		writeError(w, errors.ErrInvalidAccountID)
		return
	}

	entries, err := h.queryService.GetHistory(r.Context(), accountID)
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]EntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, EntryResponse{
			Sequence:      e.Sequence,
			AccountID:     e.AccountID,
			Kind:          string(e.Kind),
			Amount:        formatAmount(e.Amount),
			CorrelationID: e.CorrelationID.String(),
			Timestamp:     e.CreatedAt.UTC().Format(time.RFC3339Nano),
		})
	}
	writeJSON(w, http.StatusOK, out)
}
