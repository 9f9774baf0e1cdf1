// internal/api/handler/respond.go
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"nairapay/internal/util"
)

// DefaultTimeout is the per-request timeout applied by the router. It bounds
// the whole transfer unit; an expired request rolls back, never half-commits.
const DefaultTimeout = 15 * time.Second

// respondWithJSON writes payload as a JSON response.
func respondWithJSON(logger *slog.Logger, w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		logger.Error("Failed to marshal JSON response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

// respondWithError maps service errors to HTTP statuses and user-facing messages.
func respondWithError(logger *slog.Logger, w http.ResponseWriter, err error) {
	statusCode := http.StatusInternalServerError
	message := "Something went wrong. Please try again."

	switch {
	case util.IsError(err, util.ErrInvalidInput):
		statusCode = http.StatusBadRequest
		message = "Invalid input provided"
	case util.IsError(err, util.ErrSelfTransfer):
		statusCode = http.StatusBadRequest
		message = "You cannot transfer money to yourself"
	case util.IsError(err, util.ErrRecipientNotFound):
		statusCode = http.StatusNotFound
		message = "Recipient not found. Please check the username or wallet number"
	case util.IsError(err, util.ErrNotFound), util.IsError(err, util.ErrWalletNotFound), util.IsError(err, util.ErrUserNotFound):
		statusCode = http.StatusNotFound
		message = "Resource not found"
	case util.IsError(err, util.ErrInsufficientFunds):
		statusCode = http.StatusPaymentRequired // 402 Payment Required
		message = "Insufficient balance for this transaction"
	case util.IsError(err, util.ErrDuplicateEntry):
		statusCode = http.StatusConflict
		message = "Username, email or phone number already registered"
	case util.IsError(err, util.ErrInvalidCredential):
		statusCode = http.StatusUnauthorized
		message = "Invalid username/email or password"
	case util.IsError(err, util.ErrAccountInactive):
		statusCode = http.StatusForbidden
		message = "Account is not active"
	case util.IsError(err, util.ErrTransientFailure):
		statusCode = http.StatusServiceUnavailable
		message = "Temporary failure. Please retry"
	default:
		logger.Error("Unhandled service error", "error", err)
	}

	respondWithJSON(logger, w, statusCode, map[string]string{"error": message})
}
