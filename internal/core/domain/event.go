package domain

import (
	"time"

	"github.com/google/uuid"
)

// EventType represents the kind of ledger notification.
type EventType string

const (
	EventDeposited EventType = "DEPOSITED"
	EventWithdrawn EventType = "WITHDRAWN"
	EventRescued   EventType = "RESCUED"
)

// Event is a notification emitted by the ledger after a successful mutation.
// Events form an append-only, externally observable log.
type Event struct {
	Type       EventType `json:"type"`
	Account    uuid.UUID `json:"account"`
	Amount     uint64    `json:"amount"`
	NewBalance uint64    `json:"new_balance"` // tracked balance after; held funds for RESCUED
	Timestamp  time.Time `json:"timestamp"`
}

// Entry is a journaled ledger notification persisted for querying.
type Entry struct {
	ID           uuid.UUID `json:"id"`
	EventType    EventType `json:"event_type"`
	Account      uuid.UUID `json:"account"`
	Amount       uint64    `json:"amount"`
	BalanceAfter uint64    `json:"balance_after"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewEntry builds a journal entry from a ledger event.
func NewEntry(ev *Event) *Entry {
	return &Entry{
		ID:           uuid.New(),
		EventType:    ev.Type,
		Account:      ev.Account,
		Amount:       ev.Amount,
		BalanceAfter: ev.NewBalance,
		CreatedAt:    ev.Timestamp,
	}
}
