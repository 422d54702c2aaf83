package ports

import (
	"context"

	"vault-ledger/internal/core/domain"

	"github.com/google/uuid"
)

// AccountRepository defines persistence operations for account credentials.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error)
	GetByUsername(ctx context.Context, username string) (*domain.Account, error)
}

// EntryRepository defines persistence for the journal of emitted
// notifications. The journal is append-only and purely observational: the
// ledger's in-memory state is authoritative.
type EntryRepository interface {
	Append(ctx context.Context, entry *domain.Entry) error
	List(ctx context.Context, params EntryListParams) ([]domain.Entry, int64, error)
}

// EntryListParams holds filter + pagination for listing journal entries.
type EntryListParams struct {
	Account  *uuid.UUID
	Type     *domain.EventType
	Page     int
	PageSize int
}
