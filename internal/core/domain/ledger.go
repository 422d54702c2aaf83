package domain

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Config holds the ledger's fixed parameters. Set once at construction and
// never mutated.
type Config struct {
	BankCap            uint64 // maximum aggregate tracked total
	PerTxWithdrawLimit uint64 // maximum single withdrawal
}

// Transferer performs the outbound native-currency transfer of a withdrawal
// or rescue. Implementations may fail; the ledger rolls back on failure.
type Transferer interface {
	Transfer(ctx context.Context, destination uuid.UUID, amount uint64) error
}

// Ledger is the custodial vault ledger. It owns all balance state: a tracked
// balance per account, the aggregate tracked total (bounded by the bank cap),
// and the actual funds held, which can exceed the aggregate when funds arrive
// via a bypass path that skips the deposit accounting.
//
// Transferring operations (Withdraw, Rescue) hold an exclusive in-progress
// marker for their duration so a callback from the outbound transfer cannot
// re-enter the ledger before the first invocation completes.
type Ledger struct {
	owner      uuid.UUID
	cfg        Config
	transferer Transferer

	// inProgress is the reentrancy guard. Acquired with CAS, released with
	// defer so no exit path can leave it stuck.
	inProgress atomic.Bool

	mu        sync.RWMutex
	balances  map[uuid.UUID]uint64
	aggregate uint64
	held      uint64
	// reserved is the amount debited by an in-flight withdrawal. It counts
	// against the cap until the transfer settles, so a deposit landing during
	// the transfer cannot consume the headroom a rollback would need.
	reserved          uint64
	depositCounts     map[uuid.UUID]uint64
	withdrawCounts    map[uuid.UUID]uint64
	globalDeposits    uint64
	globalWithdrawals uint64
}

// NewLedger constructs a ledger owned by owner. Both config values must be
// non-zero.
func NewLedger(owner uuid.UUID, cfg Config, transferer Transferer) (*Ledger, error) {
	if cfg.BankCap == 0 || cfg.PerTxWithdrawLimit == 0 {
		return nil, ErrZeroAmount
	}
	return &Ledger{
		owner:          owner,
		cfg:            cfg,
		transferer:     transferer,
		balances:       make(map[uuid.UUID]uint64),
		depositCounts:  make(map[uuid.UUID]uint64),
		withdrawCounts: make(map[uuid.UUID]uint64),
	}, nil
}

// Deposit credits amount to the caller's vault. The vault is created
// implicitly on first deposit. No outbound transfer happens here, so the
// operation never takes the reentrancy guard.
func (l *Ledger) Deposit(caller uuid.UUID, amount uint64) (*Event, error) {
	if amount == 0 {
		return nil, ErrZeroAmount
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if amount > l.headroom() {
		return nil, &BankCapExceededError{
			Remaining: l.headroom(),
			Attempted: amount,
		}
	}

	l.balances[caller] += amount
	l.aggregate += amount
	l.held += amount
	l.depositCounts[caller]++
	l.globalDeposits++

	return &Event{
		Type:       EventDeposited,
		Account:    caller,
		Amount:     amount,
		NewBalance: l.balances[caller],
		Timestamp:  time.Now().UTC(),
	}, nil
}

// Withdraw debits amount from the caller's vault and sends it to the caller.
// Checks-effects-interactions: all mutations are committed before the
// transfer is attempted; if the transfer fails every mutation is reverted and
// the operation surfaces TransferFailedError with no observable state change.
func (l *Ledger) Withdraw(ctx context.Context, caller uuid.UUID, amount uint64) (*Event, error) {
	if !l.inProgress.CompareAndSwap(false, true) {
		return nil, ErrReentrancy
	}
	defer l.inProgress.Store(false)

	if amount == 0 {
		return nil, ErrZeroAmount
	}
	if amount > l.cfg.PerTxWithdrawLimit {
		return nil, &ExceedsPerTxLimitError{Requested: amount, Limit: l.cfg.PerTxWithdrawLimit}
	}

	l.mu.Lock()
	balance := l.balances[caller]
	if amount > balance {
		l.mu.Unlock()
		return nil, &InsufficientBalanceError{Account: caller, Available: balance, Requested: amount}
	}

	// Commit effects before the interaction. The debited amount stays
	// reserved against the cap until the transfer settles, so a re-credit
	// can never push the aggregate past it.
	l.balances[caller] = balance - amount
	l.aggregate -= amount
	l.held -= amount
	l.reserved += amount
	l.withdrawCounts[caller]++
	l.globalWithdrawals++
	newBalance := l.balances[caller]
	l.mu.Unlock()

	if err := l.transferer.Transfer(ctx, caller, amount); err != nil {
		// Revert by re-crediting rather than restoring the snapshot: a
		// deposit may have landed while the transfer was in flight.
		l.mu.Lock()
		l.balances[caller] += amount
		l.aggregate += amount
		l.held += amount
		l.reserved -= amount
		l.withdrawCounts[caller]--
		l.globalWithdrawals--
		l.mu.Unlock()
		return nil, &TransferFailedError{Destination: caller, Amount: amount, Err: err}
	}

	l.mu.Lock()
	l.reserved -= amount
	l.mu.Unlock()

	return &Event{
		Type:       EventWithdrawn,
		Account:    caller,
		Amount:     amount,
		NewBalance: newBalance,
		Timestamp:  time.Now().UTC(),
	}, nil
}

// Rescue sweeps amount of ledger-held funds to destination. Owner only. It
// does not touch any tracked balance: rescue exists for funds that arrived
// outside the deposit accounting. The bank cap does not apply here since the
// cap bounds the tracked aggregate only.
func (l *Ledger) Rescue(ctx context.Context, caller, destination uuid.UUID, amount uint64) (*Event, error) {
	// Ownership first: the owner field is immutable, so the check needs no
	// lock, and a non-owner probe never observes the guard.
	if caller != l.owner {
		return nil, &NotOwnerError{Caller: caller, Owner: l.owner}
	}

	if !l.inProgress.CompareAndSwap(false, true) {
		return nil, ErrReentrancy
	}
	defer l.inProgress.Store(false)

	if amount == 0 {
		return nil, ErrZeroAmount
	}

	l.mu.Lock()
	if amount > l.held {
		held := l.held
		l.mu.Unlock()
		return nil, &InsufficientBalanceError{Account: destination, Available: held, Requested: amount}
	}
	l.held -= amount
	heldAfter := l.held
	l.mu.Unlock()

	if err := l.transferer.Transfer(ctx, destination, amount); err != nil {
		l.mu.Lock()
		l.held += amount
		l.mu.Unlock()
		return nil, &TransferFailedError{Destination: destination, Amount: amount, Err: err}
	}

	return &Event{
		Type:       EventRescued,
		Account:    destination,
		Amount:     amount,
		NewBalance: heldAfter,
		Timestamp:  time.Now().UTC(),
	}, nil
}

// CreditUnattributed records inbound funds that carry no account identity
// (the bypass path rescue later sweeps). Held funds only; the cap bounds the
// tracked aggregate, not raw custody.
func (l *Ledger) CreditUnattributed(amount uint64) error {
	if amount == 0 {
		return ErrZeroAmount
	}
	l.mu.Lock()
	l.held += amount
	l.mu.Unlock()
	return nil
}

// Balance returns the tracked balance for account, zero for unknown accounts.
func (l *Ledger) Balance(account uuid.UUID) uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.balances[account]
}

// RemainingCapacity returns the deposit headroom left under the bank cap,
// floored at zero. Amounts debited by an in-flight withdrawal still count
// until its transfer settles.
func (l *Ledger) RemainingCapacity() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.headroom()
}

// headroom computes the cap headroom. Callers must hold mu.
func (l *Ledger) headroom() uint64 {
	used := l.aggregate + l.reserved
	if used >= l.cfg.BankCap {
		return 0
	}
	return l.cfg.BankCap - used
}

// AggregateTotal returns the sum of all tracked balances.
func (l *Ledger) AggregateTotal() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.aggregate
}

// HeldFunds returns the actual funds held by the ledger.
func (l *Ledger) HeldFunds() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.held
}

// BankCap returns the fixed aggregate ceiling.
func (l *Ledger) BankCap() uint64 { return l.cfg.BankCap }

// PerTxWithdrawLimit returns the fixed single-withdrawal ceiling.
func (l *Ledger) PerTxWithdrawLimit() uint64 { return l.cfg.PerTxWithdrawLimit }

// Owner returns the account that initialized the ledger.
func (l *Ledger) Owner() uuid.UUID { return l.owner }

// DepositCount returns the number of deposits made by account.
func (l *Ledger) DepositCount(account uuid.UUID) uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.depositCounts[account]
}

// WithdrawCount returns the number of withdrawals made by account.
func (l *Ledger) WithdrawCount(account uuid.UUID) uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.withdrawCounts[account]
}

// GlobalDepositCount returns the total number of successful deposits.
func (l *Ledger) GlobalDepositCount() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.globalDeposits
}

// GlobalWithdrawCount returns the total number of successful withdrawals.
func (l *Ledger) GlobalWithdrawCount() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.globalWithdrawals
}
