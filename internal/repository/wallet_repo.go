// internal/repository/wallet_repo.go
package repository

import (
	"context"

	"nairapay/internal/domain"

	"github.com/shopspring/decimal"
)

// WalletRepository defines the interface for wallet data operations.
type WalletRepository interface {
	// CreateWallet adds a new wallet to the database using the provided DBExecutor.
	CreateWallet(ctx context.Context, q DBExecutor, wallet *domain.Wallet) error
	// GetWalletByUserID retrieves the wallet owned by the given user.
	GetWalletByUserID(ctx context.Context, q DBExecutor, userID int64) (*domain.Wallet, error)
	// GetWalletByUserIDForUpdate retrieves the wallet owned by the given user,
	// locking its row for the remainder of the surrounding transaction.
	// Must only be called with a transactional DBExecutor.
	GetWalletByUserIDForUpdate(ctx context.Context, q DBExecutor, userID int64) (*domain.Wallet, error)
	// GetWalletByNumber retrieves a wallet by its external 10-digit number.
	GetWalletByNumber(ctx context.Context, q DBExecutor, walletNumber string) (*domain.Wallet, error)
	// WalletNumberExists reports whether a wallet number is already taken.
	WalletNumberExists(ctx context.Context, q DBExecutor, walletNumber string) (bool, error)
	// UpdateWalletBalance adjusts the balance of a specific wallet by amount
	// (negative to debit) and refreshes updated_at.
	UpdateWalletBalance(ctx context.Context, q DBExecutor, walletID int64, amount decimal.Decimal) error
}
