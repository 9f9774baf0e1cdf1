// internal/service/ledger_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"nairapay/internal/domain"
	"nairapay/internal/repository"
	"nairapay/internal/util"
	"nairapay/pkg/db"

	"github.com/shopspring/decimal"
)

// errCodeCollision marks a unique-violation on a freshly minted identifier.
// It never leaves this package: callers retry the whole storage transaction
// with a new candidate, bounded by maxCodeAttempts, and report
// util.ErrTransientFailure if the retries exhaust.
var errCodeCollision = errors.New("generated identifier collided at insert")

// Default pagination for transaction history.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// LedgerService is the transfer and ledger engine: it moves value between
// two wallets atomically, lazily creates wallets with the opening balance,
// and serves the transaction history.
type LedgerService interface {
	// EnsureWallet returns the user's wallet, creating it with the opening
	// balance if none exists yet. Safe to call repeatedly.
	EnsureWallet(ctx context.Context, userID int64) (*domain.Wallet, error)
	// Transfer moves amount from the sender to the recipient identified by
	// username or wallet number, recording one completed Transaction. The
	// resolved recipient is returned alongside the record so callers can
	// name them. On any rejection no state is mutated.
	Transfer(ctx context.Context, senderID int64, recipientIdentifier string, amount decimal.Decimal, description string) (*domain.Transaction, *domain.User, error)
	// GetHistory returns the page-th page (1-based) of transactions
	// involving the user, most recent first, with the total count.
	GetHistory(ctx context.Context, userID int64, page, pageSize int) ([]domain.Transaction, int64, error)
}

// ledgerService implements the LedgerService interface.
type ledgerService struct {
	dbBeginner      db.DBTxBeginner       // For starting transactions (e.g., *sqlx.DB)
	dbExecutor      repository.DBExecutor // For non-transactional reads (e.g., *sqlx.DB)
	userRepo        repository.UserRepository
	walletRepo      repository.WalletRepository
	transactionRepo repository.TransactionRepository
	codes           *CodeGenerator
	beginTx         db.BeginTxFunc    // Injected dependency for beginning transactions
	commitTx        db.CommitTxFunc   // Injected dependency for committing transactions
	rollbackTx      db.RollbackTxFunc // Injected dependency for rolling back transactions
}

// NewLedgerService creates a new instance of LedgerService.
func NewLedgerService(
	dbBeginner db.DBTxBeginner,
	dbExecutor repository.DBExecutor,
	userRepo repository.UserRepository,
	walletRepo repository.WalletRepository,
	transactionRepo repository.TransactionRepository,
	codes *CodeGenerator,
	beginTx db.BeginTxFunc,
	commitTx db.CommitTxFunc,
	rollbackTx db.RollbackTxFunc,
) LedgerService {
	return &ledgerService{
		dbBeginner:      dbBeginner,
		dbExecutor:      dbExecutor,
		userRepo:        userRepo,
		walletRepo:      walletRepo,
		transactionRepo: transactionRepo,
		codes:           codes,
		beginTx:         beginTx,
		commitTx:        commitTx,
		rollbackTx:      rollbackTx,
	}
}

// EnsureWallet returns the wallet for userID, creating it if necessary.
// Creation is a single-statement insert guarded by the unique constraint on
// wallets.user_id: if a concurrent request wins the race, the loser re-reads
// and returns the winner's row, so two calls can never produce two wallets.
func (s *ledgerService) EnsureWallet(ctx context.Context, userID int64) (*domain.Wallet, error) {
	wallet, err := s.walletRepo.GetWalletByUserID(ctx, s.dbExecutor, userID)
	if err == nil {
		return wallet, nil
	}
	if !errors.Is(err, util.ErrNotFound) {
		return nil, fmt.Errorf("ensure wallet: failed to get wallet for user %d: %w", userID, err)
	}

	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		walletNumber, err := s.codes.WalletNumber(ctx, s.dbExecutor)
		if err != nil {
			return nil, fmt.Errorf("ensure wallet: %w", err)
		}

		wallet = domain.NewWallet(userID, walletNumber)
		err = s.walletRepo.CreateWallet(ctx, s.dbExecutor, wallet)
		if err == nil {
			return wallet, nil
		}
		if !errors.Is(err, util.ErrDuplicateEntry) {
			return nil, fmt.Errorf("ensure wallet: failed to create wallet for user %d: %w", userID, err)
		}

		// Either another request created this user's wallet first, or the
		// wallet number collided. Re-read to distinguish.
		existing, getErr := s.walletRepo.GetWalletByUserID(ctx, s.dbExecutor, userID)
		if getErr == nil {
			return existing, nil
		}
		if !errors.Is(getErr, util.ErrNotFound) {
			return nil, fmt.Errorf("ensure wallet: failed to re-read wallet for user %d: %w", userID, getErr)
		}
		// Wallet number collision; sample a fresh one.
	}
	return nil, fmt.Errorf("ensure wallet: %w", util.ErrTransientFailure)
}

// Transfer validates the request, resolves the recipient, and applies the
// atomic double-entry mutation. Identifier collisions at insert time retry
// the whole storage transaction with a fresh reference.
func (s *ledgerService) Transfer(ctx context.Context, senderID int64, recipientIdentifier string, amount decimal.Decimal, description string) (*domain.Transaction, *domain.User, error) {
	description, err := normalizeTransferInput(amount, description)
	if err != nil {
		return nil, nil, err
	}

	senderWallet, err := s.EnsureWallet(ctx, senderID)
	if err != nil {
		return nil, nil, fmt.Errorf("transfer: %w", err)
	}
	// Early, non-authoritative balance check so an obviously underfunded
	// request never opens a storage transaction. The authoritative check
	// runs against the locked row inside performTransfer.
	if senderWallet.Balance.LessThan(amount) {
		return nil, nil, util.ErrInsufficientFunds
	}

	recipient, err := s.resolveRecipient(ctx, recipientIdentifier)
	if err != nil {
		return nil, nil, err
	}
	if recipient.ID == senderID {
		return nil, nil, util.ErrSelfTransfer
	}
	// A valid recipient may not have transacted yet; make sure the wallet
	// row exists before the atomic section so its insert cannot abort the
	// transfer's storage transaction.
	if _, err := s.EnsureWallet(ctx, recipient.ID); err != nil {
		return nil, nil, fmt.Errorf("transfer: %w", err)
	}

	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		transaction, err := s.performTransfer(ctx, senderID, recipient.ID, amount, description)
		if errors.Is(err, errCodeCollision) {
			continue
		}
		if err != nil {
			return nil, nil, err
		}
		return transaction, recipient, nil
	}
	return nil, nil, fmt.Errorf("transfer: reference collisions exhausted retries: %w", util.ErrTransientFailure)
}

// performTransfer runs the atomic unit: lock both wallets, check funds,
// debit, credit, record the transaction. All four mutations commit together
// or not at all.
func (s *ledgerService) performTransfer(ctx context.Context, senderID, receiverID int64, amount decimal.Decimal, description string) (*domain.Transaction, error) {
	txController, err := s.beginTx(ctx, s.dbBeginner)
	if err != nil {
		return nil, fmt.Errorf("transfer: failed to begin transaction: %w", err)
	}
	defer s.rollbackTx(txController)

	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		return nil, fmt.Errorf("transfer: transaction controller does not implement DBExecutor")
	}

	// Lock both wallet rows in ascending user-ID order so two concurrent
	// opposite-direction transfers cannot deadlock.
	first, second := senderID, receiverID
	if receiverID < senderID {
		first, second = receiverID, senderID
	}
	lockedFirst, err := s.walletRepo.GetWalletByUserIDForUpdate(ctx, txExecutor, first)
	if err != nil {
		return nil, fmt.Errorf("transfer: failed to lock wallet for user %d: %w", first, err)
	}
	lockedSecond, err := s.walletRepo.GetWalletByUserIDForUpdate(ctx, txExecutor, second)
	if err != nil {
		return nil, fmt.Errorf("transfer: failed to lock wallet for user %d: %w", second, err)
	}

	senderWallet, receiverWallet := lockedFirst, lockedSecond
	if senderWallet.UserID != senderID {
		senderWallet, receiverWallet = lockedSecond, lockedFirst
	}

	// Authoritative balance check against the locked row: no concurrent
	// transfer can debit this wallet between here and commit.
	if senderWallet.Balance.LessThan(amount) {
		return nil, util.ErrInsufficientFunds
	}

	if err := s.walletRepo.UpdateWalletBalance(ctx, txExecutor, senderWallet.ID, amount.Neg()); err != nil {
		return nil, fmt.Errorf("transfer: failed to debit sender wallet: %w", err)
	}
	if err := s.walletRepo.UpdateWalletBalance(ctx, txExecutor, receiverWallet.ID, amount); err != nil {
		return nil, fmt.Errorf("transfer: failed to credit recipient wallet: %w", err)
	}

	reference, err := s.codes.TransactionReference(ctx, txExecutor)
	if err != nil {
		return nil, fmt.Errorf("transfer: %w", err)
	}
	transaction := domain.NewTransaction(reference, senderID, receiverID, amount, description)
	if err := s.transactionRepo.CreateTransaction(ctx, txExecutor, transaction); err != nil {
		if errors.Is(err, util.ErrDuplicateEntry) {
			// Lost the reference race; the deferred rollback undoes the
			// balance updates and the caller retries with a fresh one.
			return nil, errCodeCollision
		}
		return nil, fmt.Errorf("transfer: failed to create transaction record: %w", err)
	}

	if err := s.commitTx(txController); err != nil {
		return nil, fmt.Errorf("transfer: failed to commit transaction: %w", err)
	}

	return transaction, nil
}

// resolveRecipient finds the receiving user: exact username match first,
// then exact wallet-number match taking the owning user.
func (s *ledgerService) resolveRecipient(ctx context.Context, identifier string) (*domain.User, error) {
	user, err := s.userRepo.GetUserByUsername(ctx, s.dbExecutor, identifier)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, util.ErrNotFound) {
		return nil, fmt.Errorf("transfer: failed to look up recipient username: %w", err)
	}

	wallet, err := s.walletRepo.GetWalletByNumber(ctx, s.dbExecutor, identifier)
	if err != nil {
		if errors.Is(err, util.ErrNotFound) {
			return nil, util.ErrRecipientNotFound
		}
		return nil, fmt.Errorf("transfer: failed to look up recipient wallet number: %w", err)
	}

	user, err = s.userRepo.GetUserByID(ctx, s.dbExecutor, wallet.UserID)
	if err != nil {
		if errors.Is(err, util.ErrNotFound) {
			return nil, util.ErrRecipientNotFound
		}
		return nil, fmt.Errorf("transfer: failed to load wallet owner: %w", err)
	}
	return user, nil
}

// GetHistory retrieves a page of the user's transaction history.
// Pages are 1-based; a page past the end is empty, never an error.
func (s *ledgerService) GetHistory(ctx context.Context, userID int64, page, pageSize int) ([]domain.Transaction, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	offset := (page - 1) * pageSize

	transactions, totalCount, err := s.transactionRepo.GetTransactionsByUserID(ctx, s.dbExecutor, userID, pageSize, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to retrieve transaction history: %w", err)
	}
	return transactions, totalCount, nil
}

// normalizeTransferInput re-validates the policy bounds the form layer
// should already have checked (the engine is the final authority) and
// applies the default description.
func normalizeTransferInput(amount decimal.Decimal, description string) (string, error) {
	if amount.LessThan(domain.MinTransferAmount) {
		return "", util.ErrInvalidInput
	}
	if amount.GreaterThan(domain.MaxTransferAmount) {
		return "", util.ErrInvalidInput
	}
	// Amounts carry at most minor-unit (2 decimal place) precision.
	if amount.Exponent() < -2 {
		return "", util.ErrInvalidInput
	}

	description = strings.TrimSpace(description)
	if description == "" {
		return domain.DefaultDescription, nil
	}
	// The bound counts characters, not bytes.
	if utf8.RuneCountInString(description) > domain.MaxDescriptionLength {
		return "", util.ErrInvalidInput
	}
	return description, nil
}
