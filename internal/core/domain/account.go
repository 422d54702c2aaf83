package domain

import (
	"time"

	"github.com/google/uuid"
)

// Account holds the credentials of a registered vault account. Balances are
// not stored here: the ledger owns them, and a vault is created implicitly on
// first deposit.
type Account struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"` // Argon2id, never exposed
	IsOwner      bool      `json:"is_owner"`
	CreatedAt    time.Time `json:"created_at"`
}
