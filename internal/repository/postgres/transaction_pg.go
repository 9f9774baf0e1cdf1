// internal/repository/postgres/transaction_pg.go
package postgres

import (
	"context"
	"fmt"

	"nairapay/internal/domain"
	"nairapay/internal/repository"
	"nairapay/internal/util"

	"github.com/jmoiron/sqlx"
)

// TransactionRepository implements repository.TransactionRepository for PostgreSQL.
type TransactionRepository struct {
	// No longer holds *sqlx.DB as methods receive DBExecutor directly
}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(db *sqlx.DB) repository.TransactionRepository {
	return &TransactionRepository{}
}

// CreateTransaction inserts a new transaction record into the database using the provided DBExecutor.
// A unique constraint violation on the reference is reported as
// util.ErrDuplicateEntry so the caller can mint a fresh reference and retry.
func (r *TransactionRepository) CreateTransaction(ctx context.Context, q repository.DBExecutor, transaction *domain.Transaction) error {
	query := `INSERT INTO transactions (reference, sender_id, receiver_id, amount, description, status, created_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`

	err := q.QueryRowContext(ctx, query,
		transaction.Reference,
		transaction.SenderID,
		transaction.ReceiverID,
		transaction.Amount,
		transaction.Description,
		transaction.Status,
		transaction.CreatedAt,
	).Scan(&transaction.ID)

	if err != nil {
		if IsUniqueViolation(err) {
			return util.ErrDuplicateEntry
		}
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

// GetTransactionsByUserID retrieves a paginated list of transactions involving a user.
// It performs two queries: one for the data and one for the total count.
func (r *TransactionRepository) GetTransactionsByUserID(ctx context.Context, q repository.DBExecutor, userID int64, limit, offset int) ([]domain.Transaction, int64, error) {
	transactions := []domain.Transaction{}

	// Query 1: Get the paginated transactions.
	// A transaction involves the user either as sender or as receiver.
	// Secondary ordering on id keeps pagination deterministic when two
	// rows share a created_at timestamp.
	query := `
		SELECT id, reference, sender_id, receiver_id, amount, description, status, created_at
		FROM transactions
		WHERE sender_id = $1 OR receiver_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`
	err := q.SelectContext(ctx, &transactions, query, userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch transactions for user %d: %w", userID, err)
	}

	// Query 2: Get the total count of transactions for the user
	var totalCount int64
	countQuery := `
		SELECT COUNT(*)
		FROM transactions
		WHERE sender_id = $1 OR receiver_id = $1`
	err = q.GetContext(ctx, &totalCount, countQuery, userID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get total transaction count for user %d: %w", userID, err)
	}

	return transactions, totalCount, nil
}

// ReferenceExists reports whether a transaction reference is already taken.
func (r *TransactionRepository) ReferenceExists(ctx context.Context, q repository.DBExecutor, reference string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM transactions WHERE reference = $1)`
	err := q.GetContext(ctx, &exists, query, reference)
	if err != nil {
		return false, fmt.Errorf("failed to check transaction reference '%s': %w", reference, err)
	}
	return exists, nil
}
