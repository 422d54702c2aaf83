package ports

import (
	"context"
	"time"

	"vault-ledger/internal/core/domain"

	"github.com/google/uuid"
)

// VaultService defines the ledger-facing business logic: every operation the
// vault exposes, with journaling and event publication layered on top of the
// core ledger.
type VaultService interface {
	Deposit(ctx context.Context, req DepositRequest) (*domain.Event, error)
	Withdraw(ctx context.Context, req WithdrawRequest) (*domain.Event, error)
	Rescue(ctx context.Context, req RescueRequest) (*domain.Event, error)
	CreditUnattributed(ctx context.Context, amount uint64) error
	Balance(account uuid.UUID) uint64
	Overview() VaultOverview
	Counters(account uuid.UUID) AccountCounters
	ListEntries(ctx context.Context, params EntryListParams) ([]domain.Entry, int64, error)
}

// DepositRequest holds validated input for a deposit.
type DepositRequest struct {
	Account uuid.UUID
	Amount  uint64
}

// WithdrawRequest holds validated input for a withdrawal.
type WithdrawRequest struct {
	Account uuid.UUID
	Amount  uint64
}

// RescueRequest holds validated input for an owner rescue sweep.
type RescueRequest struct {
	Caller      uuid.UUID
	Destination uuid.UUID
	Amount      uint64
}

// VaultOverview is the read-only configuration and aggregate view.
type VaultOverview struct {
	Owner              uuid.UUID
	BankCap            uint64
	PerTxWithdrawLimit uint64
	AggregateTotal     uint64
	RemainingCapacity  uint64
	HeldFunds          uint64
	GlobalDeposits     uint64
	GlobalWithdrawals  uint64
}

// AccountCounters holds the per-account observational counters.
type AccountCounters struct {
	Deposits    uint64
	Withdrawals uint64
}

// AuthService defines authentication business logic.
type AuthService interface {
	Register(ctx context.Context, req RegisterRequest) (*RegisterResult, error)
	Login(ctx context.Context, username, password string) (string, time.Time, error) // token, expiry, error
}

// RegisterRequest holds input for account registration.
type RegisterRequest struct {
	Username string
	Password string
}

// RegisterResult holds the registration outcome.
type RegisterResult struct {
	AccountID uuid.UUID
}

// TokenService handles JWT token operations.
type TokenService interface {
	Generate(accountID uuid.UUID, isOwner bool) (string, time.Time, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims holds the parsed JWT claims.
type TokenClaims struct {
	AccountID uuid.UUID
	IsOwner   bool
}

// HashService handles password hashing (Argon2id).
type HashService interface {
	Hash(password string) (string, error)
	Verify(password string, hash string) (bool, error)
}

// EventPublisher pushes ledger notifications onto the external feed.
type EventPublisher interface {
	Publish(ctx context.Context, ev *domain.Event) error
}
