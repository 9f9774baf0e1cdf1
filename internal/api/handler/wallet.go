// internal/api/handler/wallet.go
package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"nairapay/internal/api/middleware"
	"nairapay/internal/api/types"
	"nairapay/internal/domain"
	"nairapay/internal/service"
	"nairapay/internal/util" // For custom errors
)

// WalletHandler handles HTTP requests for wallet and transfer operations.
type WalletHandler struct {
	service service.LedgerService
	logger  *slog.Logger
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(svc service.LedgerService, logger *slog.Logger) *WalletHandler {
	return &WalletHandler{
		service: svc,
		logger:  logger,
	}
}

// GetWallet handles the wallet retrieval request. The wallet is created with
// the opening balance on first access, mirroring the dashboard behavior.
// GET /wallet
func (h *WalletHandler) GetWallet(w http.ResponseWriter, r *http.Request) {
	actorID, ok := middleware.ActorID(r.Context())
	if !ok {
		respondWithError(h.logger, w, util.ErrInvalidCredential)
		return
	}

	wallet, err := h.service.EnsureWallet(r.Context(), actorID)
	if err != nil {
		respondWithError(h.logger, w, err)
		return
	}

	respondWithJSON(h.logger, w, http.StatusOK, map[string]interface{}{
		"wallet_number": wallet.WalletNumber,
		"balance":       wallet.Balance,
		"updated_at":    wallet.UpdatedAt,
	})
}

// TransferRequest represents the request body for transfer.
type TransferRequest struct {
	Recipient   string          `json:"recipient"` // Username or wallet number
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
}

// Transfer handles the money transfer request.
// POST /transfers
func (h *WalletHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	actorID, ok := middleware.ActorID(r.Context())
	if !ok {
		respondWithError(h.logger, w, util.ErrInvalidCredential)
		return
	}

	var req TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(h.logger, w, util.ErrInvalidInput)
		return
	}

	// Basic validation; the ledger service re-validates authoritatively.
	if req.Recipient == "" {
		respondWithError(h.logger, w, util.ErrInvalidInput)
		return
	}
	if req.Amount.IsNegative() || req.Amount.IsZero() {
		respondWithError(h.logger, w, util.ErrInvalidInput)
		return
	}

	transaction, recipient, err := h.service.Transfer(r.Context(), actorID, req.Recipient, req.Amount, req.Description)
	if err != nil {
		respondWithError(h.logger, w, err)
		return
	}

	respondWithJSON(h.logger, w, http.StatusOK, map[string]interface{}{
		"message":     fmt.Sprintf("Transfer of ₦%s to %s completed successfully!", transaction.Amount.StringFixed(2), recipient.FullName()),
		"reference":   transaction.Reference,
		"amount":      transaction.Amount,
		"description": transaction.Description,
		"status":      transaction.Status,
	})
}

// GetTransactionHistory handles the transaction history request.
// GET /transactions?page=1&page_size=20
func (h *WalletHandler) GetTransactionHistory(w http.ResponseWriter, r *http.Request) {
	actorID, ok := middleware.ActorID(r.Context())
	if !ok {
		respondWithError(h.logger, w, util.ErrInvalidCredential)
		return
	}

	// Parse query parameters for pagination
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		page = 1
	}
	pageSize, err := strconv.Atoi(r.URL.Query().Get("page_size"))
	if err != nil || pageSize <= 0 {
		pageSize = service.DefaultPageSize
	}

	transactions, totalCount, err := h.service.GetHistory(r.Context(), actorID, page, pageSize)
	if err != nil {
		respondWithError(h.logger, w, err)
		return
	}

	respondWithJSON(h.logger, w, http.StatusOK, types.PaginatedResponse[domain.Transaction]{
		Data:       transactions,
		Page:       page,
		PageSize:   pageSize,
		TotalCount: totalCount,
	})
}
