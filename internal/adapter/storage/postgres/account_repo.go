package postgres

import (
	"context"
	"errors"
	"fmt"

	"vault-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// AccountRepo implements ports.AccountRepository.
type AccountRepo struct {
	pool Pool
}

// NewAccountRepo creates a new AccountRepo.
func NewAccountRepo(pool Pool) *AccountRepo {
	return &AccountRepo{pool: pool}
}

// Create inserts a new account.
func (r *AccountRepo) Create(ctx context.Context, a *domain.Account) error {
	query := `INSERT INTO accounts (id, username, password_hash, is_owner, created_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := r.pool.Exec(ctx, query,
		a.ID, a.Username, a.PasswordHash, a.IsOwner, a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

// GetByID fetches an account by UUID. Returns (nil, nil) when not found.
func (r *AccountRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	query := `SELECT id, username, password_hash, is_owner, created_at
		FROM accounts WHERE id = $1`

	return r.scanAccount(r.pool.QueryRow(ctx, query, id))
}

// GetByUsername fetches an account by username. Returns (nil, nil) when not found.
func (r *AccountRepo) GetByUsername(ctx context.Context, username string) (*domain.Account, error) {
	query := `SELECT id, username, password_hash, is_owner, created_at
		FROM accounts WHERE username = $1`

	return r.scanAccount(r.pool.QueryRow(ctx, query, username))
}

// scanAccount is a helper to scan a single row into an Account.
func (r *AccountRepo) scanAccount(row pgx.Row) (*domain.Account, error) {
	a := &domain.Account{}
	err := row.Scan(&a.ID, &a.Username, &a.PasswordHash, &a.IsOwner, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan account: %w", err)
	}
	return a, nil
}
