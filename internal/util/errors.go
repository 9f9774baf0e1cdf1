// internal/util/errors.go
package util

import "errors"

// Common application-specific errors.
var (
	ErrNotFound          = errors.New("resource not found")
	ErrInvalidInput      = errors.New("invalid input provided")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrSelfTransfer      = errors.New("cannot transfer money to yourself")
	ErrRecipientNotFound = errors.New("recipient not found")
	ErrWalletNotFound    = errors.New("wallet not found")
	ErrUserNotFound      = errors.New("user not found")
	ErrDuplicateEntry    = errors.New("duplicate entry") // For cases like creating a user with existing username
	ErrInvalidCredential = errors.New("invalid username/email or password")
	ErrAccountInactive   = errors.New("account is not active")
	ErrTransientFailure  = errors.New("transient failure, please retry")
)

// IsError reports whether err matches the target sentinel error.
func IsError(err, target error) bool {
	return errors.Is(err, target)
}
