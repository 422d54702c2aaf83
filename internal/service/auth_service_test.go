package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"vault-ledger/internal/core/domain"
	"vault-ledger/internal/core/ports"
	"vault-ledger/internal/core/ports/mocks"
	"vault-ledger/pkg/apperror"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type authTestDeps struct {
	svc         *AuthServiceImpl
	accountRepo *mocks.MockAccountRepository
	hashSvc     *mocks.MockHashService
	tokenSvc    *mocks.MockTokenService
	ctrl        *gomock.Controller
}

func setupAuthService(t *testing.T) *authTestDeps {
	t.Helper()
	ctrl := gomock.NewController(t)
	d := &authTestDeps{
		accountRepo: mocks.NewMockAccountRepository(ctrl),
		hashSvc:     mocks.NewMockHashService(ctrl),
		tokenSvc:    mocks.NewMockTokenService(ctrl),
		ctrl:        ctrl,
	}
	d.svc = NewAuthService(d.accountRepo, d.hashSvc, d.tokenSvc)
	return d
}

func TestAuthService_Register(t *testing.T) {
	d := setupAuthService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()

	d.accountRepo.EXPECT().GetByUsername(ctx, "alice").Return(nil, nil)
	d.hashSvc.EXPECT().Hash("s3cret").Return("$argon2id$...", nil)
	d.accountRepo.EXPECT().Create(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, account *domain.Account) error {
			assert.Equal(t, "alice", account.Username)
			assert.Equal(t, "$argon2id$...", account.PasswordHash)
			assert.False(t, account.IsOwner)
			return nil
		})

	result, err := d.svc.Register(ctx, ports.RegisterRequest{Username: "alice", Password: "s3cret"})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, result.AccountID)
}

func TestAuthService_Register_DuplicateUsername(t *testing.T) {
	d := setupAuthService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.accountRepo.EXPECT().GetByUsername(ctx, "alice").Return(&domain.Account{ID: uuid.New()}, nil)

	_, err := d.svc.Register(ctx, ports.RegisterRequest{Username: "alice", Password: "s3cret"})
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "AUTH_002", appErr.Code)
}

func TestAuthService_Login(t *testing.T) {
	d := setupAuthService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	accountID := uuid.New()
	expiry := time.Now().Add(time.Hour)

	d.accountRepo.EXPECT().GetByUsername(ctx, "alice").Return(&domain.Account{
		ID: accountID, Username: "alice", PasswordHash: "hash", IsOwner: true,
	}, nil)
	d.hashSvc.EXPECT().Verify("s3cret", "hash").Return(true, nil)
	d.tokenSvc.EXPECT().Generate(accountID, true).Return("token", expiry, nil)

	token, exp, err := d.svc.Login(ctx, "alice", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "token", token)
	assert.Equal(t, expiry, exp)
}

func TestAuthService_Login_UnknownUser(t *testing.T) {
	d := setupAuthService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.accountRepo.EXPECT().GetByUsername(ctx, "nobody").Return(nil, nil)

	_, _, err := d.svc.Login(ctx, "nobody", "s3cret")
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "AUTH_001", appErr.Code)
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	d := setupAuthService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.accountRepo.EXPECT().GetByUsername(ctx, "alice").Return(&domain.Account{
		ID: uuid.New(), PasswordHash: "hash",
	}, nil)
	d.hashSvc.EXPECT().Verify("wrong", "hash").Return(false, nil)

	_, _, err := d.svc.Login(ctx, "alice", "wrong")
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "AUTH_001", appErr.Code)
}

func TestAuthService_EnsureOwner_CreatesAccount(t *testing.T) {
	d := setupAuthService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()

	d.accountRepo.EXPECT().GetByUsername(ctx, "owner").Return(nil, nil)
	d.hashSvc.EXPECT().Hash("ownerpass").Return("hash", nil)
	d.accountRepo.EXPECT().Create(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, account *domain.Account) error {
			assert.True(t, account.IsOwner)
			return nil
		})

	id, err := d.svc.EnsureOwner(ctx, "owner", "ownerpass")
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, id)
}

func TestAuthService_EnsureOwner_ReturnsExisting(t *testing.T) {
	d := setupAuthService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	ownerID := uuid.New()

	d.accountRepo.EXPECT().GetByUsername(ctx, "owner").Return(&domain.Account{
		ID: ownerID, Username: "owner", IsOwner: true,
	}, nil)

	id, err := d.svc.EnsureOwner(ctx, "owner", "ownerpass")
	require.NoError(t, err)
	assert.Equal(t, ownerID, id)
}

func TestAuthService_EnsureOwner_UsernameTakenByNonOwner(t *testing.T) {
	d := setupAuthService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.accountRepo.EXPECT().GetByUsername(ctx, "owner").Return(&domain.Account{
		ID: uuid.New(), Username: "owner", IsOwner: false,
	}, nil)

	_, err := d.svc.EnsureOwner(ctx, "owner", "ownerpass")
	assert.Error(t, err)
}

func TestAuthService_Register_RepoFailure(t *testing.T) {
	d := setupAuthService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.accountRepo.EXPECT().GetByUsername(ctx, "alice").Return(nil, errors.New("db down"))

	_, err := d.svc.Register(ctx, ports.RegisterRequest{Username: "alice", Password: "s3cret"})
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "SYS_001", appErr.Code)
}
