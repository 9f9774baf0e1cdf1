// internal/repository/transaction_repo.go
package repository

import (
	"context"

	"nairapay/internal/domain"
)

// TransactionRepository defines the interface for transaction data operations.
type TransactionRepository interface {
	// CreateTransaction adds a new transaction record to the database using the provided DBExecutor.
	CreateTransaction(ctx context.Context, q DBExecutor, transaction *domain.Transaction) error
	// GetTransactionsByUserID retrieves transaction history for a user (as
	// sender or receiver), most recent first, along with the total count.
	GetTransactionsByUserID(ctx context.Context, q DBExecutor, userID int64, limit, offset int) ([]domain.Transaction, int64, error)
	// ReferenceExists reports whether a transaction reference is already taken.
	ReferenceExists(ctx context.Context, q DBExecutor, reference string) (bool, error)
}
