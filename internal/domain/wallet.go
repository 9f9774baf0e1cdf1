// internal/domain/wallet.go
package domain

import (
	"time"

	"github.com/shopspring/decimal" // For precise monetary calculations
)

// OpeningBalance is the fixed credit granted once, when a wallet is created.
var OpeningBalance = decimal.NewFromInt(2000)

// WalletNumberLength is the number of digits in a wallet number.
const WalletNumberLength = 10

// Wallet represents a user's balance record. Each user owns exactly one
// wallet, created lazily the first time it is needed.
// Invariant: Balance >= 0 after every committed operation.
type Wallet struct {
	ID           int64           `db:"id" json:"id"`                       // Primary key, BIGSERIAL in DB
	UserID       int64           `db:"user_id" json:"user_id"`             // Foreign key to User, unique
	WalletNumber string          `db:"wallet_number" json:"wallet_number"` // Unique 10-digit number, immutable
	Balance      decimal.Decimal `db:"balance" json:"balance"`             // Current balance, NUMERIC(20, 2) in DB
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`       // Timestamp of creation
	UpdatedAt    time.Time       `db:"updated_at" json:"updated_at"`       // Timestamp of last update
}

// NewWallet creates a new Wallet instance carrying the opening balance.
func NewWallet(userID int64, walletNumber string) *Wallet {
	now := time.Now().UTC()
	return &Wallet{
		UserID:       userID,
		WalletNumber: walletNumber,
		Balance:      OpeningBalance,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
