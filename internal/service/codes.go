// internal/service/codes.go
package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"

	"nairapay/internal/domain"
	"nairapay/internal/repository"
	"nairapay/internal/util"
)

const (
	digits       = "0123456789"
	alphanumeric = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	// maxCodeAttempts bounds both rejection sampling against persisted state
	// and insert-time collision retries. At ~33 bits (wallet numbers) and
	// ~62 bits (references) of entropy, exhausting this cap means something
	// is badly wrong, so it surfaces as a transient failure instead of
	// looping forever.
	maxCodeAttempts = 5
)

// CodeGenerator mints the external-facing unique identifiers: 10-digit
// wallet numbers and "NP"-prefixed transaction references.
//
// Generation is check-then-use: a candidate is sampled, checked against
// persisted state, and re-sampled on a hit. The storage layer's uniqueness
// constraints remain the actual enforcement; callers must treat a
// unique-violation at insert time as a signal to mint a fresh candidate.
type CodeGenerator struct {
	walletRepo      repository.WalletRepository
	transactionRepo repository.TransactionRepository
}

// NewCodeGenerator creates a new CodeGenerator.
func NewCodeGenerator(walletRepo repository.WalletRepository, transactionRepo repository.TransactionRepository) *CodeGenerator {
	return &CodeGenerator{
		walletRepo:      walletRepo,
		transactionRepo: transactionRepo,
	}
}

// WalletNumber returns a wallet number not currently present in storage.
func (g *CodeGenerator) WalletNumber(ctx context.Context, q repository.DBExecutor) (string, error) {
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		candidate, err := randomString(digits, domain.WalletNumberLength)
		if err != nil {
			return "", fmt.Errorf("failed to generate wallet number: %w", err)
		}
		exists, err := g.walletRepo.WalletNumberExists(ctx, q, candidate)
		if err != nil {
			return "", fmt.Errorf("failed to check wallet number uniqueness: %w", err)
		}
		if !exists {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("wallet number generation exhausted %d attempts: %w", maxCodeAttempts, util.ErrTransientFailure)
}

// TransactionReference returns a transaction reference not currently present
// in storage.
func (g *CodeGenerator) TransactionReference(ctx context.Context, q repository.DBExecutor) (string, error) {
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		suffix, err := randomString(alphanumeric, domain.ReferenceSuffixLength)
		if err != nil {
			return "", fmt.Errorf("failed to generate transaction reference: %w", err)
		}
		candidate := domain.ReferencePrefix + suffix
		exists, err := g.transactionRepo.ReferenceExists(ctx, q, candidate)
		if err != nil {
			return "", fmt.Errorf("failed to check transaction reference uniqueness: %w", err)
		}
		if !exists {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("transaction reference generation exhausted %d attempts: %w", maxCodeAttempts, util.ErrTransientFailure)
}

// randomString draws n characters uniformly from alphabet using crypto/rand.
func randomString(alphabet string, n int) (string, error) {
	max := big.NewInt(int64(len(alphabet)))
	out := make([]byte, n)
	for i := range out {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		out[i] = alphabet[idx.Int64()]
	}
	return string(out), nil
}
