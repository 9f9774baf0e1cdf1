// internal/service/auth_service_test.go
package service

import (
	"context"
	"testing"
	"time"

	"nairapay/internal/domain"
	"nairapay/internal/util"
	"nairapay/pkg/db"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// authMocks bundles the mocks behind an AuthService under test.
type authMocks struct {
	userRepo     *MockUserRepository
	walletRepo   *MockWalletRepository
	dbBeginner   *MockDBBeginner
	dbExecutor   *MockDBExecutor
	txController *MockTxController
}

func newAuthService() (AuthService, *authMocks) {
	am := &authMocks{
		userRepo:     new(MockUserRepository),
		walletRepo:   new(MockWalletRepository),
		dbBeginner:   new(MockDBBeginner),
		dbExecutor:   new(MockDBExecutor),
		txController: new(MockTxController),
	}
	codes := NewCodeGenerator(am.walletRepo, new(MockTransactionRepository))
	svc := NewAuthService(
		am.dbBeginner,
		am.dbExecutor,
		am.userRepo,
		am.walletRepo,
		codes,
		[]byte("test-secret"),
		time.Hour,
		func(ctx context.Context, dbConn db.DBTxBeginner) (db.TxController, error) {
			return am.txController, nil
		},
		func(tx db.TxController) error {
			return am.txController.Commit()
		},
		func(tx db.TxController) {
			_ = am.txController.Rollback()
		},
	)
	return svc, am
}

func validRegisterInput() RegisterInput {
	return RegisterInput{
		Username:    "adebayo_01",
		Email:       "adebayo@example.com",
		PhoneNumber: "08031234567",
		FirstName:   "Adebayo",
		LastName:    "Okafor",
		Password:    "correct-horse",
	}
}

// TestRegisterValidation exercises the field shape rules.
func TestRegisterValidation(t *testing.T) {
	mutate := map[string]func(*RegisterInput){
		"UsernameTooShort":      func(in *RegisterInput) { in.Username = "ab" },
		"UsernameBadCharacters": func(in *RegisterInput) { in.Username = "ade bayo!" },
		"BadEmail":              func(in *RegisterInput) { in.Email = "not-an-email" },
		"BadPhoneNumber":        func(in *RegisterInput) { in.PhoneNumber = "12345" },
		"ShortPassword":         func(in *RegisterInput) { in.Password = "short" },
		"ShortFirstName":        func(in *RegisterInput) { in.FirstName = "A" },
	}

	for name, fn := range mutate {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			svc, am := newAuthService()

			input := validRegisterInput()
			fn(&input)

			user, wallet, err := svc.Register(ctx, input)

			assert.ErrorIs(t, err, util.ErrInvalidInput)
			assert.Nil(t, user)
			assert.Nil(t, wallet)
			am.userRepo.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

// TestRegister tests the Register method of AuthService.
func TestRegister(t *testing.T) {
	t.Run("CreatesUserAndOpeningBalanceWallet", func(t *testing.T) {
		ctx := context.Background()
		svc, am := newAuthService()

		am.walletRepo.On("WalletNumberExists", ctx, mock.Anything, mock.AnythingOfType("string")).Return(false, nil).Once()
		am.userRepo.On("CreateUser", ctx, mock.Anything, mock.AnythingOfType("*domain.User")).
			Run(func(args mock.Arguments) {
				args.Get(2).(*domain.User).ID = 1
			}).Return(nil).Once()
		am.walletRepo.On("CreateWallet", ctx, mock.Anything, mock.AnythingOfType("*domain.Wallet")).Return(nil).Once()
		am.txController.On("Commit").Return(nil).Once()
		am.txController.On("Rollback").Return(nil).Maybe()

		input := validRegisterInput()
		user, wallet, err := svc.Register(ctx, input)

		require.NoError(t, err)
		assert.Equal(t, input.Username, user.Username)
		assert.True(t, user.IsActive)
		assert.NotEqual(t, input.Password, user.PasswordHash)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)))
		assert.Equal(t, user.ID, wallet.UserID)
		assert.True(t, wallet.Balance.Equal(domain.OpeningBalance))
		assert.Regexp(t, `^[0-9]{10}$`, wallet.WalletNumber)
		mock.AssertExpectationsForObjects(t, am.userRepo, am.walletRepo, am.txController)
	})

	t.Run("DuplicateIdentitySurfaces", func(t *testing.T) {
		ctx := context.Background()
		svc, am := newAuthService()

		am.walletRepo.On("WalletNumberExists", ctx, mock.Anything, mock.AnythingOfType("string")).Return(false, nil).Once()
		am.userRepo.On("CreateUser", ctx, mock.Anything, mock.AnythingOfType("*domain.User")).Return(util.ErrDuplicateEntry).Once()
		am.txController.On("Rollback").Return(nil).Once()

		user, wallet, err := svc.Register(ctx, validRegisterInput())

		assert.ErrorIs(t, err, util.ErrDuplicateEntry)
		assert.Nil(t, user)
		assert.Nil(t, wallet)
		am.txController.AssertNotCalled(t, "Commit")
		mock.AssertExpectationsForObjects(t, am.userRepo, am.walletRepo, am.txController)
	})

	t.Run("RetriesWhenWalletNumberLosesInsertRace", func(t *testing.T) {
		ctx := context.Background()
		svc, am := newAuthService()

		am.walletRepo.On("WalletNumberExists", ctx, mock.Anything, mock.AnythingOfType("string")).Return(false, nil).Twice()
		am.userRepo.On("CreateUser", ctx, mock.Anything, mock.AnythingOfType("*domain.User")).
			Run(func(args mock.Arguments) {
				args.Get(2).(*domain.User).ID = 1
			}).Return(nil).Twice()
		am.walletRepo.On("CreateWallet", ctx, mock.Anything, mock.AnythingOfType("*domain.Wallet")).Return(util.ErrDuplicateEntry).Once()
		am.walletRepo.On("CreateWallet", ctx, mock.Anything, mock.AnythingOfType("*domain.Wallet")).Return(nil).Once()
		am.txController.On("Rollback").Return(nil).Twice()
		am.txController.On("Commit").Return(nil).Once()

		user, wallet, err := svc.Register(ctx, validRegisterInput())

		require.NoError(t, err)
		assert.NotNil(t, user)
		assert.NotNil(t, wallet)
		mock.AssertExpectationsForObjects(t, am.userRepo, am.walletRepo, am.txController)
	})
}

// TestLogin tests the Login and ParseToken methods of AuthService.
func TestLogin(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.MinCost)
	require.NoError(t, err)

	activeUser := func() *domain.User {
		return &domain.User{
			ID:           7,
			Username:     "adebayo_01",
			Email:        "adebayo@example.com",
			PasswordHash: string(hash),
			FirstName:    "Adebayo",
			IsActive:     true,
		}
	}

	t.Run("IssuesVerifiableToken", func(t *testing.T) {
		ctx := context.Background()
		svc, am := newAuthService()

		am.userRepo.On("GetUserByUsernameOrEmail", ctx, mock.Anything, "adebayo_01").Return(activeUser(), nil).Once()

		token, user, err := svc.Login(ctx, "adebayo_01", "correct-horse")

		require.NoError(t, err)
		require.NotEmpty(t, token)
		assert.Equal(t, int64(7), user.ID)

		claims, err := svc.ParseToken(token)
		require.NoError(t, err)
		assert.Equal(t, int64(7), claims.UserID)
		assert.Equal(t, "adebayo_01", claims.Username)
		assert.NotEmpty(t, claims.ID, "token carries a unique jti")
		mock.AssertExpectationsForObjects(t, am.userRepo)
	})

	t.Run("WrongPassword", func(t *testing.T) {
		ctx := context.Background()
		svc, am := newAuthService()

		am.userRepo.On("GetUserByUsernameOrEmail", ctx, mock.Anything, "adebayo_01").Return(activeUser(), nil).Once()

		token, user, err := svc.Login(ctx, "adebayo_01", "wrong")

		assert.ErrorIs(t, err, util.ErrInvalidCredential)
		assert.Empty(t, token)
		assert.Nil(t, user)
	})

	t.Run("UnknownIdentifier", func(t *testing.T) {
		ctx := context.Background()
		svc, am := newAuthService()

		am.userRepo.On("GetUserByUsernameOrEmail", ctx, mock.Anything, "ghost").Return(nil, util.ErrNotFound).Once()

		_, _, err := svc.Login(ctx, "ghost", "whatever")

		assert.ErrorIs(t, err, util.ErrInvalidCredential)
	})

	t.Run("InactiveAccount", func(t *testing.T) {
		ctx := context.Background()
		svc, am := newAuthService()

		inactive := activeUser()
		inactive.IsActive = false
		am.userRepo.On("GetUserByUsernameOrEmail", ctx, mock.Anything, "adebayo_01").Return(inactive, nil).Once()

		_, _, err := svc.Login(ctx, "adebayo_01", "correct-horse")

		assert.ErrorIs(t, err, util.ErrAccountInactive)
	})

	t.Run("GarbageTokenRejected", func(t *testing.T) {
		svc, _ := newAuthService()

		_, err := svc.ParseToken("not.a.token")

		assert.ErrorIs(t, err, util.ErrInvalidCredential)
	})
}
