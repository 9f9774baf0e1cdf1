// internal/domain/transaction.go
package domain

import (
	"time"

	"github.com/shopspring/decimal" // For precise monetary calculations
)

// TransactionStatus defines the status of a transfer.
type TransactionStatus string

// Transfers commit synchronously; completed is the only status the engine
// ever writes.
const (
	TransactionStatusCompleted TransactionStatus = "completed"
)

// Transfer policy bounds. Amounts outside [MinTransferAmount, MaxTransferAmount]
// are rejected; descriptions longer than MaxDescriptionLength are rejected.
var (
	MinTransferAmount = decimal.NewFromInt(1)
	MaxTransferAmount = decimal.NewFromInt(999999)
)

const (
	MaxDescriptionLength = 200
	DefaultDescription   = "Money transfer"

	// ReferencePrefix and ReferenceSuffixLength describe the shape of a
	// transaction reference: "NP" followed by 12 uppercase alphanumerics.
	ReferencePrefix       = "NP"
	ReferenceSuffixLength = 12
)

// Transaction is the immutable record of one completed transfer between two
// users. It is never mutated after creation.
type Transaction struct {
	ID          int64             `db:"id" json:"id"`                   // Primary key, BIGSERIAL in DB
	Reference   string            `db:"reference" json:"reference"`     // Unique reference, "NP" + 12 alphanumerics
	SenderID    int64             `db:"sender_id" json:"sender_id"`     // User who was debited
	ReceiverID  int64             `db:"receiver_id" json:"receiver_id"` // User who was credited
	Amount      decimal.Decimal   `db:"amount" json:"amount"`           // Positive amount, NUMERIC(20, 2) in DB
	Description string            `db:"description" json:"description"`
	Status      TransactionStatus `db:"status" json:"status"`
	CreatedAt   time.Time         `db:"created_at" json:"created_at"` // Timestamp of record creation
}

// NewTransaction creates a new Transaction instance.
func NewTransaction(reference string, senderID, receiverID int64, amount decimal.Decimal, description string) *Transaction {
	return &Transaction{
		Reference:   reference,
		SenderID:    senderID,
		ReceiverID:  receiverID,
		Amount:      amount,
		Description: description,
		Status:      TransactionStatusCompleted,
		CreatedAt:   time.Now().UTC(),
	}
}
