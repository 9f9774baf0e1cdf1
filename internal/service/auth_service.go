// internal/service/auth_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"nairapay/internal/domain"
	"nairapay/internal/repository"
	"nairapay/internal/util"
	"nairapay/pkg/db"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Field shape rules carried over from the registration form.
var (
	usernameRegex = regexp.MustCompile(`^[A-Za-z0-9_]{4,20}$`)
	emailRegex    = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	phoneRegex    = regexp.MustCompile(`^(\+234|0)[789][01][0-9]{8}$`)
)

const minPasswordLength = 8

// Claims are the JWT claims carried by a login token. The engine consumes
// only the user ID; the rest is for the presentation layer.
type Claims struct {
	UserID   int64  `json:"uid"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// RegisterInput carries the validated registration fields.
type RegisterInput struct {
	Username    string
	Email       string
	PhoneNumber string
	FirstName   string
	LastName    string
	Password    string
}

// ProfileInput carries the mutable profile fields.
type ProfileInput struct {
	FirstName   string
	LastName    string
	Email       string
	PhoneNumber string
}

// AuthService handles registration, login and profile management. It is a
// collaborator of the ledger engine: it produces the authenticated actor
// identity the engine's operations consume.
type AuthService interface {
	// Register creates a user together with their opening-balance wallet.
	Register(ctx context.Context, input RegisterInput) (*domain.User, *domain.Wallet, error)
	// Login verifies credentials and issues a signed token.
	Login(ctx context.Context, identifier, password string) (string, *domain.User, error)
	// ParseToken verifies a token string and returns its claims.
	ParseToken(tokenString string) (*Claims, error)
	// GetUser loads a user by ID.
	GetUser(ctx context.Context, userID int64) (*domain.User, error)
	// UpdateProfile updates the mutable profile fields.
	UpdateProfile(ctx context.Context, userID int64, input ProfileInput) (*domain.User, error)
}

// authService implements the AuthService interface.
type authService struct {
	dbBeginner db.DBTxBeginner
	dbExecutor repository.DBExecutor
	userRepo   repository.UserRepository
	walletRepo repository.WalletRepository
	codes      *CodeGenerator
	jwtSecret  []byte
	tokenTTL   time.Duration
	beginTx    db.BeginTxFunc
	commitTx   db.CommitTxFunc
	rollbackTx db.RollbackTxFunc
}

// NewAuthService creates a new instance of AuthService.
func NewAuthService(
	dbBeginner db.DBTxBeginner,
	dbExecutor repository.DBExecutor,
	userRepo repository.UserRepository,
	walletRepo repository.WalletRepository,
	codes *CodeGenerator,
	jwtSecret []byte,
	tokenTTL time.Duration,
	beginTx db.BeginTxFunc,
	commitTx db.CommitTxFunc,
	rollbackTx db.RollbackTxFunc,
) AuthService {
	return &authService{
		dbBeginner: dbBeginner,
		dbExecutor: dbExecutor,
		userRepo:   userRepo,
		walletRepo: walletRepo,
		codes:      codes,
		jwtSecret:  jwtSecret,
		tokenTTL:   tokenTTL,
		beginTx:    beginTx,
		commitTx:   commitTx,
		rollbackTx: rollbackTx,
	}
}

// Register creates the user and their wallet in one storage transaction, so
// a registered user always has a wallet carrying the opening balance.
func (s *authService) Register(ctx context.Context, input RegisterInput) (*domain.User, *domain.Wallet, error) {
	if err := validateRegisterInput(input); err != nil {
		return nil, nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, fmt.Errorf("register: failed to hash password: %w", err)
	}

	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		user, wallet, err := s.performRegister(ctx, input, string(hashed))
		if errors.Is(err, errCodeCollision) {
			continue
		}
		return user, wallet, err
	}
	return nil, nil, fmt.Errorf("register: wallet number collisions exhausted retries: %w", util.ErrTransientFailure)
}

func (s *authService) performRegister(ctx context.Context, input RegisterInput, passwordHash string) (*domain.User, *domain.Wallet, error) {
	walletNumber, err := s.codes.WalletNumber(ctx, s.dbExecutor)
	if err != nil {
		return nil, nil, fmt.Errorf("register: %w", err)
	}

	txController, err := s.beginTx(ctx, s.dbBeginner)
	if err != nil {
		return nil, nil, fmt.Errorf("register: failed to begin transaction: %w", err)
	}
	defer s.rollbackTx(txController)

	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		return nil, nil, fmt.Errorf("register: transaction controller does not implement DBExecutor")
	}

	user := domain.NewUser(input.Username, input.Email, input.PhoneNumber, input.FirstName, input.LastName, passwordHash)
	if err := s.userRepo.CreateUser(ctx, txExecutor, user); err != nil {
		if errors.Is(err, util.ErrDuplicateEntry) {
			return nil, nil, util.ErrDuplicateEntry
		}
		return nil, nil, fmt.Errorf("register: failed to create user: %w", err)
	}

	wallet := domain.NewWallet(user.ID, walletNumber)
	if err := s.walletRepo.CreateWallet(ctx, txExecutor, wallet); err != nil {
		if errors.Is(err, util.ErrDuplicateEntry) {
			// The pre-checked wallet number was taken between check and
			// insert; roll back and retry with a fresh one.
			return nil, nil, errCodeCollision
		}
		return nil, nil, fmt.Errorf("register: failed to create wallet: %w", err)
	}

	if err := s.commitTx(txController); err != nil {
		return nil, nil, fmt.Errorf("register: failed to commit transaction: %w", err)
	}

	return user, wallet, nil
}

// Login resolves the user by username or email and verifies the password.
func (s *authService) Login(ctx context.Context, identifier, password string) (string, *domain.User, error) {
	user, err := s.userRepo.GetUserByUsernameOrEmail(ctx, s.dbExecutor, identifier)
	if err != nil {
		if errors.Is(err, util.ErrNotFound) {
			return "", nil, util.ErrInvalidCredential
		}
		return "", nil, fmt.Errorf("login: failed to look up user: %w", err)
	}
	if !user.IsActive {
		return "", nil, util.ErrAccountInactive
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, util.ErrInvalidCredential
	}

	now := time.Now().UTC()
	claims := &Claims{
		UserID:   user.ID,
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    "nairapay",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", nil, fmt.Errorf("login: failed to sign token: %w", err)
	}

	return tokenString, user, nil
}

// ParseToken verifies the signature and expiry of a token string.
func (s *authService) ParseToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, util.ErrInvalidCredential
	}
	return claims, nil
}

// GetUser loads a user by ID.
func (s *authService) GetUser(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := s.userRepo.GetUserByID(ctx, s.dbExecutor, userID)
	if err != nil {
		if errors.Is(err, util.ErrNotFound) {
			return nil, util.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// UpdateProfile updates the mutable profile fields. Username and the
// credential hash are immutable here.
func (s *authService) UpdateProfile(ctx context.Context, userID int64, input ProfileInput) (*domain.User, error) {
	if err := validateProfileInput(input); err != nil {
		return nil, err
	}

	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.FirstName = input.FirstName
	user.LastName = input.LastName
	user.Email = input.Email
	user.PhoneNumber = input.PhoneNumber
	user.UpdatedAt = time.Now().UTC()

	if err := s.userRepo.UpdateProfile(ctx, s.dbExecutor, user); err != nil {
		if errors.Is(err, util.ErrDuplicateEntry) {
			return nil, util.ErrDuplicateEntry
		}
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return user, nil
}

func validateRegisterInput(input RegisterInput) error {
	switch {
	case !usernameRegex.MatchString(input.Username),
		!emailRegex.MatchString(input.Email),
		!phoneRegex.MatchString(input.PhoneNumber),
		len(input.FirstName) < 2 || len(input.FirstName) > 50,
		len(input.LastName) < 2 || len(input.LastName) > 50,
		len(input.Password) < minPasswordLength:
		return util.ErrInvalidInput
	}
	return nil
}

func validateProfileInput(input ProfileInput) error {
	switch {
	case !emailRegex.MatchString(input.Email),
		!phoneRegex.MatchString(input.PhoneNumber),
		len(input.FirstName) < 2 || len(input.FirstName) > 50,
		len(input.LastName) < 2 || len(input.LastName) > 50:
		return util.ErrInvalidInput
	}
	return nil
}
