package service

import (
	"context"
	"fmt"
	"time"

	"vault-ledger/internal/core/domain"
	"vault-ledger/internal/core/ports"
	"vault-ledger/pkg/apperror"

	"github.com/google/uuid"
)

// AuthServiceImpl implements ports.AuthService.
type AuthServiceImpl struct {
	accountRepo ports.AccountRepository
	hashSvc     ports.HashService
	tokenSvc    ports.TokenService
}

// NewAuthService creates a new AuthServiceImpl.
func NewAuthService(
	accountRepo ports.AccountRepository,
	hashSvc ports.HashService,
	tokenSvc ports.TokenService,
) *AuthServiceImpl {
	return &AuthServiceImpl{
		accountRepo: accountRepo,
		hashSvc:     hashSvc,
		tokenSvc:    tokenSvc,
	}
}

// Register creates a new account. The vault itself is created implicitly by
// the ledger on first deposit.
func (s *AuthServiceImpl) Register(ctx context.Context, req ports.RegisterRequest) (*ports.RegisterResult, error) {
	existing, err := s.accountRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("check username: %w", err))
	}
	if existing != nil {
		return nil, apperror.ErrUsernameExists()
	}

	passwordHash, err := s.hashSvc.Hash(req.Password)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("hash password: %w", err))
	}

	account := &domain.Account{
		ID:           uuid.New(),
		Username:     req.Username,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.accountRepo.Create(ctx, account); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create account: %w", err))
	}

	return &ports.RegisterResult{AccountID: account.ID}, nil
}

// Login verifies credentials and issues a JWT.
func (s *AuthServiceImpl) Login(ctx context.Context, username, password string) (string, time.Time, error) {
	account, err := s.accountRepo.GetByUsername(ctx, username)
	if err != nil {
		return "", time.Time{}, apperror.InternalError(fmt.Errorf("fetch account: %w", err))
	}
	if account == nil {
		return "", time.Time{}, apperror.ErrInvalidCredentials()
	}

	ok, err := s.hashSvc.Verify(password, account.PasswordHash)
	if err != nil {
		return "", time.Time{}, apperror.InternalError(fmt.Errorf("verify password: %w", err))
	}
	if !ok {
		return "", time.Time{}, apperror.ErrInvalidCredentials()
	}

	token, expiry, err := s.tokenSvc.Generate(account.ID, account.IsOwner)
	if err != nil {
		return "", time.Time{}, apperror.InternalError(fmt.Errorf("generate token: %w", err))
	}
	return token, expiry, nil
}

// EnsureOwner creates the owner account from the bootstrap credentials if it
// does not exist yet, and returns its ID. The returned ID becomes the ledger
// owner for the process lifetime.
func (s *AuthServiceImpl) EnsureOwner(ctx context.Context, username, password string) (uuid.UUID, error) {
	existing, err := s.accountRepo.GetByUsername(ctx, username)
	if err != nil {
		return uuid.Nil, fmt.Errorf("lookup owner account: %w", err)
	}
	if existing != nil {
		if !existing.IsOwner {
			return uuid.Nil, fmt.Errorf("account %q exists but is not the owner", username)
		}
		return existing.ID, nil
	}

	passwordHash, err := s.hashSvc.Hash(password)
	if err != nil {
		return uuid.Nil, fmt.Errorf("hash owner password: %w", err)
	}

	owner := &domain.Account{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: passwordHash,
		IsOwner:      true,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.accountRepo.Create(ctx, owner); err != nil {
		return uuid.Nil, fmt.Errorf("create owner account: %w", err)
	}
	return owner.ID, nil
}
