package service

import (
	"context"

	"vault-ledger/internal/core/domain"
	"vault-ledger/internal/core/ports"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// VaultServiceImpl implements ports.VaultService. It wraps the in-memory
// ledger with journaling and event publication: the ledger commit is
// authoritative, journal and feed writes are best-effort afterwards.
type VaultServiceImpl struct {
	ledger    *domain.Ledger
	entryRepo ports.EntryRepository
	publisher ports.EventPublisher
	log       zerolog.Logger
}

// NewVaultService creates a new VaultServiceImpl.
func NewVaultService(
	ledger *domain.Ledger,
	entryRepo ports.EntryRepository,
	publisher ports.EventPublisher,
	log zerolog.Logger,
) *VaultServiceImpl {
	return &VaultServiceImpl{
		ledger:    ledger,
		entryRepo: entryRepo,
		publisher: publisher,
		log:       log,
	}
}

// Deposit credits the caller's vault.
func (s *VaultServiceImpl) Deposit(ctx context.Context, req ports.DepositRequest) (*domain.Event, error) {
	ev, err := s.ledger.Deposit(req.Account, req.Amount)
	if err != nil {
		return nil, err
	}

	s.record(ctx, ev)

	s.log.Info().
		Str("account", req.Account.String()).
		Uint64("amount", req.Amount).
		Uint64("new_balance", ev.NewBalance).
		Msg("deposit accepted")

	return ev, nil
}

// Withdraw debits the caller's vault and sends the funds out.
func (s *VaultServiceImpl) Withdraw(ctx context.Context, req ports.WithdrawRequest) (*domain.Event, error) {
	ev, err := s.ledger.Withdraw(ctx, req.Account, req.Amount)
	if err != nil {
		return nil, err
	}

	s.record(ctx, ev)

	s.log.Info().
		Str("account", req.Account.String()).
		Uint64("amount", req.Amount).
		Uint64("new_balance", ev.NewBalance).
		Msg("withdrawal settled")

	return ev, nil
}

// Rescue sweeps ledger-held funds to a destination. The ledger enforces the
// owner check.
func (s *VaultServiceImpl) Rescue(ctx context.Context, req ports.RescueRequest) (*domain.Event, error) {
	ev, err := s.ledger.Rescue(ctx, req.Caller, req.Destination, req.Amount)
	if err != nil {
		return nil, err
	}

	s.record(ctx, ev)

	s.log.Warn().
		Str("caller", req.Caller.String()).
		Str("destination", req.Destination.String()).
		Uint64("amount", req.Amount).
		Uint64("held_after", ev.NewBalance).
		Msg("rescue sweep executed")

	return ev, nil
}

// CreditUnattributed records inbound funds that carry no account identity.
func (s *VaultServiceImpl) CreditUnattributed(_ context.Context, amount uint64) error {
	if err := s.ledger.CreditUnattributed(amount); err != nil {
		return err
	}
	s.log.Info().Uint64("amount", amount).Msg("unattributed credit recorded")
	return nil
}

// Balance returns the tracked balance for account.
func (s *VaultServiceImpl) Balance(account uuid.UUID) uint64 {
	return s.ledger.Balance(account)
}

// Overview returns the read-only configuration and aggregate view.
func (s *VaultServiceImpl) Overview() ports.VaultOverview {
	return ports.VaultOverview{
		Owner:              s.ledger.Owner(),
		BankCap:            s.ledger.BankCap(),
		PerTxWithdrawLimit: s.ledger.PerTxWithdrawLimit(),
		AggregateTotal:     s.ledger.AggregateTotal(),
		RemainingCapacity:  s.ledger.RemainingCapacity(),
		HeldFunds:          s.ledger.HeldFunds(),
		GlobalDeposits:     s.ledger.GlobalDepositCount(),
		GlobalWithdrawals:  s.ledger.GlobalWithdrawCount(),
	}
}

// Counters returns the per-account observational counters.
func (s *VaultServiceImpl) Counters(account uuid.UUID) ports.AccountCounters {
	return ports.AccountCounters{
		Deposits:    s.ledger.DepositCount(account),
		Withdrawals: s.ledger.WithdrawCount(account),
	}
}

// ListEntries fetches journal entries with filtering and pagination.
func (s *VaultServiceImpl) ListEntries(ctx context.Context, params ports.EntryListParams) ([]domain.Entry, int64, error) {
	return s.entryRepo.List(ctx, params)
}

// record journals and publishes an emitted event. Both sinks are
// observational, so failures degrade to a warning instead of failing the
// already-committed operation.
func (s *VaultServiceImpl) record(ctx context.Context, ev *domain.Event) {
	if err := s.entryRepo.Append(ctx, domain.NewEntry(ev)); err != nil {
		s.log.Warn().Err(err).Str("event", string(ev.Type)).Msg("failed to journal ledger event")
	}
	if err := s.publisher.Publish(ctx, ev); err != nil {
		s.log.Warn().Err(err).Str("event", string(ev.Type)).Msg("failed to publish ledger event")
	}
}
