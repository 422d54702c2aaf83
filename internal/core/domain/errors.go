package domain

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrZeroAmount is returned when an operation is invoked with a zero amount,
// or when the ledger is constructed with a zero cap or limit.
var ErrZeroAmount = errors.New("amount must be greater than zero")

// ErrReentrancy is returned when a mutating operation is invoked while
// another transferring operation is still in progress on the same ledger.
var ErrReentrancy = errors.New("ledger operation already in progress")

// BankCapExceededError is returned when a deposit would push the aggregate
// tracked total above the bank cap.
type BankCapExceededError struct {
	Remaining uint64 // capacity left before the cap
	Attempted uint64 // deposit amount that was rejected
}

func (e *BankCapExceededError) Error() string {
	return fmt.Sprintf("deposit exceeds bank cap: remaining capacity %d, attempted %d", e.Remaining, e.Attempted)
}

// ExceedsPerTxLimitError is returned when a single withdrawal exceeds the
// per-transaction ceiling.
type ExceedsPerTxLimitError struct {
	Requested uint64
	Limit     uint64
}

func (e *ExceedsPerTxLimitError) Error() string {
	return fmt.Sprintf("withdrawal exceeds per-transaction limit: requested %d, limit %d", e.Requested, e.Limit)
}

// InsufficientBalanceError is returned when a withdrawal exceeds the account's
// tracked balance, or a rescue exceeds the ledger's held funds.
type InsufficientBalanceError struct {
	Account   uuid.UUID
	Available uint64
	Requested uint64
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance for account %s: available %d, requested %d", e.Account, e.Available, e.Requested)
}

// TransferFailedError is returned when the outbound transfer does not
// succeed. All ledger mutations are rolled back before it surfaces.
type TransferFailedError struct {
	Destination uuid.UUID
	Amount      uint64
	Err         error
}

func (e *TransferFailedError) Error() string {
	return fmt.Sprintf("transfer of %d to %s failed: %v", e.Amount, e.Destination, e.Err)
}

func (e *TransferFailedError) Unwrap() error {
	return e.Err
}

// NotOwnerError is returned when rescue is invoked by a caller other than the
// ledger owner.
type NotOwnerError struct {
	Caller uuid.UUID
	Owner  uuid.UUID
}

func (e *NotOwnerError) Error() string {
	return fmt.Sprintf("caller %s is not the ledger owner %s", e.Caller, e.Owner)
}
