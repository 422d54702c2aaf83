package integration

import (
	"context"
	"errors"
	"sync"

	"vault-ledger/internal/core/domain"
	"vault-ledger/internal/core/ports"

	"github.com/google/uuid"
)

// --- In-Memory Account Repo ---

type inMemoryAccountRepo struct {
	mu       sync.RWMutex
	accounts map[uuid.UUID]*domain.Account
}

func newInMemoryAccountRepo() *inMemoryAccountRepo {
	return &inMemoryAccountRepo{accounts: make(map[uuid.UUID]*domain.Account)}
}

func (r *inMemoryAccountRepo) Create(ctx context.Context, a *domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.accounts {
		if existing.Username == a.Username {
			return errors.New("username already exists")
		}
	}
	cp := *a
	r.accounts[a.ID] = &cp
	return nil
}

func (r *inMemoryAccountRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.accounts[id]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (r *inMemoryAccountRepo) GetByUsername(ctx context.Context, username string) (*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, a := range r.accounts {
		if a.Username == username {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

// --- In-Memory Entry Repo ---

type inMemoryEntryRepo struct {
	mu      sync.RWMutex
	entries []domain.Entry
}

func newInMemoryEntryRepo() *inMemoryEntryRepo {
	return &inMemoryEntryRepo{}
}

func (r *inMemoryEntryRepo) Append(ctx context.Context, e *domain.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, *e)
	return nil
}

func (r *inMemoryEntryRepo) List(ctx context.Context, params ports.EntryListParams) ([]domain.Entry, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var filtered []domain.Entry
	for _, e := range r.entries {
		if params.Account != nil && e.Account != *params.Account {
			continue
		}
		if params.Type != nil && e.EventType != *params.Type {
			continue
		}
		filtered = append(filtered, e)
	}

	total := int64(len(filtered))
	start := (params.Page - 1) * params.PageSize
	if start >= len(filtered) {
		return nil, total, nil
	}
	end := start + params.PageSize
	if end > len(filtered) {
		end = len(filtered)
	}
	return filtered[start:end], total, nil
}

// --- Recording Publisher ---

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.Event
}

func (p *recordingPublisher) Publish(ctx context.Context, ev *domain.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, *ev)
	return nil
}

func (p *recordingPublisher) published() []domain.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]domain.Event, len(p.events))
	copy(out, p.events)
	return out
}

// --- Recording Transferer ---

// recordingTransferer stands in for the settlement endpoint. It records
// every outbound transfer and can be switched into failure mode.
type recordingTransferer struct {
	mu        sync.Mutex
	transfers []transferRecord
	fail      bool
}

type transferRecord struct {
	Destination uuid.UUID
	Amount      uint64
}

func (tr *recordingTransferer) Transfer(ctx context.Context, destination uuid.UUID, amount uint64) error {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	if tr.fail {
		return errors.New("settlement endpoint unavailable")
	}
	tr.transfers = append(tr.transfers, transferRecord{Destination: destination, Amount: amount})
	return nil
}

func (tr *recordingTransferer) setFail(fail bool) {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	tr.fail = fail
}

func (tr *recordingTransferer) recorded() []transferRecord {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	out := make([]transferRecord, len(tr.transfers))
	copy(out, tr.transfers)
	return out
}
