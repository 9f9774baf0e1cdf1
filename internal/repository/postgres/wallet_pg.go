// internal/repository/postgres/wallet_pg.go
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"nairapay/internal/domain"
	"nairapay/internal/repository"
	"nairapay/internal/util"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// WalletRepository implements repository.WalletRepository for PostgreSQL.
type WalletRepository struct {
	// No longer holds *sqlx.DB as methods receive DBExecutor directly
}

// NewWalletRepository creates a new WalletRepository.
func NewWalletRepository(db *sqlx.DB) repository.WalletRepository {
	return &WalletRepository{}
}

const walletColumns = `id, user_id, wallet_number, balance, created_at, updated_at`

// CreateWallet inserts a new wallet into the database using the provided DBExecutor.
// A unique constraint violation (duplicate wallet number, or a second wallet
// for the same user) is reported as util.ErrDuplicateEntry so callers can
// retry or re-read.
func (r *WalletRepository) CreateWallet(ctx context.Context, q repository.DBExecutor, wallet *domain.Wallet) error {
	query := `INSERT INTO wallets (user_id, wallet_number, balance, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5) RETURNING id`
	err := q.QueryRowContext(ctx, query, wallet.UserID, wallet.WalletNumber, wallet.Balance, wallet.CreatedAt, wallet.UpdatedAt).Scan(&wallet.ID)
	if err != nil {
		if IsUniqueViolation(err) {
			return util.ErrDuplicateEntry
		}
		return fmt.Errorf("failed to create wallet: %w", err)
	}
	return nil
}

// GetWalletByUserID retrieves the wallet owned by the given user.
func (r *WalletRepository) GetWalletByUserID(ctx context.Context, q repository.DBExecutor, userID int64) (*domain.Wallet, error) {
	var wallet domain.Wallet
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE user_id = $1`
	err := q.GetContext(ctx, &wallet, query, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get wallet by user ID %d: %w", userID, err)
	}
	return &wallet, nil
}

// GetWalletByUserIDForUpdate retrieves the wallet owned by the given user and
// locks its row until the surrounding transaction commits or rolls back.
// Two concurrent transfers touching the same wallet serialize here, so both
// cannot pass the balance check against the same pre-debit balance.
func (r *WalletRepository) GetWalletByUserIDForUpdate(ctx context.Context, q repository.DBExecutor, userID int64) (*domain.Wallet, error) {
	var wallet domain.Wallet
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE user_id = $1 FOR UPDATE`
	err := q.GetContext(ctx, &wallet, query, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("failed to lock wallet for user ID %d: %w", userID, err)
	}
	return &wallet, nil
}

// GetWalletByNumber retrieves a wallet by its external 10-digit number.
func (r *WalletRepository) GetWalletByNumber(ctx context.Context, q repository.DBExecutor, walletNumber string) (*domain.Wallet, error) {
	var wallet domain.Wallet
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE wallet_number = $1`
	err := q.GetContext(ctx, &wallet, query, walletNumber)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get wallet by number '%s': %w", walletNumber, err)
	}
	return &wallet, nil
}

// WalletNumberExists reports whether a wallet number is already taken.
func (r *WalletRepository) WalletNumberExists(ctx context.Context, q repository.DBExecutor, walletNumber string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM wallets WHERE wallet_number = $1)`
	err := q.GetContext(ctx, &exists, query, walletNumber)
	if err != nil {
		return false, fmt.Errorf("failed to check wallet number '%s': %w", walletNumber, err)
	}
	return exists, nil
}

// UpdateWalletBalance adjusts the balance of a specific wallet using the provided DBExecutor.
func (r *WalletRepository) UpdateWalletBalance(ctx context.Context, q repository.DBExecutor, walletID int64, amount decimal.Decimal) error {
	query := `UPDATE wallets SET balance = balance + $1, updated_at = $2 WHERE id = $3`
	result, err := q.ExecContext(ctx, query, amount, time.Now().UTC(), walletID)
	if err != nil {
		return fmt.Errorf("failed to update wallet balance for ID %d: %w", walletID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected after updating wallet balance for ID %d: %w", walletID, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("no rows affected when updating wallet balance for ID %d, wallet might not exist", walletID)
	}
	return nil
}
