package handler

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"account-ledger/internal/domain"
	"account-ledger/internal/errors"
	"account-ledger/internal/service"
)

type TransactionHandler struct {
	transactionService *service.TransactionService
}

func NewTransactionHandler(transactionService *service.TransactionService) *TransactionHandler {
	return &TransactionHandler{
		transactionService: transactionService,
	}
}

type AmountRequest struct {
	Amount string `json:"amount"`
}

type TransferRequest struct {
	FromAccountID string `json:"from_account_id"`
	ToAccountID   string `json:"to_account_id"`
	Amount        string `json:"amount"`
}

type BalanceResponse struct {
	AccountID     string `json:"account_id"`
	Balance       string `json:"balance"`
	CorrelationID string `json:"correlation_id,omitempty"`
}

type TransferResponse struct {
	FromAccountID string `json:"from_account_id"`
	ToAccountID   string `json:"to_account_id"`
	FromBalance   string `json:"from_balance"`
	ToBalance     string `json:"to_balance"`
	CorrelationID string `json:"correlation_id"`
}

func (h *TransactionHandler) Credit(w http.ResponseWriter, r *http.Request) {
	h.applySingle(w, r, h.transactionService.Credit)
}

func (h *TransactionHandler) Debit(w http.ResponseWriter, r *http.Request) {
	h.applySingle(w, r, h.transactionService.Debit)
}

func (h *TransactionHandler) applySingle(w http.ResponseWriter, r *http.Request, apply func(context.Context, string, decimal.Decimal) (*service.BalanceResult, error)) {
	accountID := mux.Vars(r)["account_id"]
	if !domain.ValidAccountID(accountID) {
		writeError(w, errors.ErrInvalidAccountID)
		return
	}

	var req AmountRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	amount, err := parseAmount(req.Amount)
	if err != nil {
		writeError(w, err)
		return
	}

	result, err := apply(r.Context(), accountID, amount)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, BalanceResponse{
		AccountID:     result.AccountID,
		Balance:       formatAmount(result.Balance),
		CorrelationID: result.CorrelationID.String(),
	})
}

func (h *TransactionHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	var req TransferRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if !domain.ValidAccountID(req.FromAccountID) || !domain.ValidAccountID(req.ToAccountID) {
		writeError(w, errors.ErrInvalidAccountID)
		return
	}

	amount, err := parseAmount(req.Amount)
	if err != nil {
		writeError(w, err)
		return
	}

	result, err := h.transactionService.Transfer(r.Context(), req.FromAccountID, req.ToAccountID, amount)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, TransferResponse{
		FromAccountID: result.FromAccountID,
		ToAccountID:   result.ToAccountID,
		FromBalance:   formatAmount(result.FromBalance),
		ToBalance:     formatAmount(result.ToBalance),
		CorrelationID: result.CorrelationID.String(),
	})
}
