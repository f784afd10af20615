package handlers

import (
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/usercreator005/ff-india-tournaments-sub000/models"
	"github.com/usercreator005/ff-india-tournaments-sub000/services"
)

type WalletHandler struct {
	wallets *services.WalletService
}

func NewWalletHandler(wallets *services.WalletService) *WalletHandler {
	return &WalletHandler{wallets: wallets}
}

// BalanceHandler обрабатывает GET /wallet
func (h *WalletHandler) BalanceHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}
	tenantID, err := resolveTenantID(actor, r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	wallet, err := h.wallets.Balance(r.Context(), tenantID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"wallet": wallet}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// TransactionsHandler обрабатывает GET /wallet/transactions
func (h *WalletHandler) TransactionsHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}
	tenantID, err := resolveTenantID(actor, r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	limit := 50
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if v, convErr := strconv.Atoi(limitStr); convErr == nil && v > 0 {
			limit = v
		}
	}
	offset := 0
	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		if v, convErr := strconv.Atoi(offsetStr); convErr == nil && v >= 0 {
			offset = v
		}
	}

	txns, err := h.wallets.Transactions(r.Context(), tenantID, limit, offset)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"transactions": txns}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// AdjustHandler обрабатывает POST /wallet/adjustments — ручная
// корректировка баланса администратором тенанта.
func (h *WalletHandler) AdjustHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}
	if !actor.Can(models.CapManageWallet) {
		forbiddenResponse(w, r, "wallet management capability required")
		return
	}
	tenantID, err := resolveTenantID(actor, r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var req struct {
		Amount decimal.Decimal `json:"amount"`
		Note   string          `json:"note"`
	}
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	txn, err := h.wallets.Credit(r.Context(), tenantID, req.Amount, models.TxnAdjustmentCredit, req.Note, nil)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"transaction": txn}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// WithdrawHandler обрабатывает POST /wallet/withdrawals
func (h *WalletHandler) WithdrawHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}
	tenantID, err := resolveTenantID(actor, r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var req struct {
		Amount       decimal.Decimal `json:"amount"`
		WithdrawalID int             `json:"withdrawal_id"`
	}
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	txn, err := h.wallets.ApproveWithdrawal(r.Context(), tenantID, req.Amount, req.WithdrawalID, actor)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"transaction": txn}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
