package apperror

import (
	"errors"
	"fmt"
	"net/http"

	"vault-ledger/internal/core/domain"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Details    any    `json:"details,omitempty"` // structured diagnostic context
	Err        error  `json:"-"`                 // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// ---- Vault Ledger (VLT) ----

// FromLedger translates the ledger's typed errors into coded AppErrors. The
// typed error stays wrapped so callers can still errors.As into it; Details
// carries the diagnostic context for the response envelope.
func FromLedger(err error) *AppError {
	var (
		capErr   *domain.BankCapExceededError
		limitErr *domain.ExceedsPerTxLimitError
		balErr   *domain.InsufficientBalanceError
		xferErr  *domain.TransferFailedError
		ownerErr *domain.NotOwnerError
	)

	switch {
	case errors.Is(err, domain.ErrZeroAmount):
		return Wrap("VLT_001", "Amount must be greater than zero", http.StatusBadRequest, err)

	case errors.As(err, &capErr):
		ae := Wrap("VLT_002", "Deposit would exceed the bank cap", http.StatusUnprocessableEntity, err)
		ae.Details = map[string]uint64{"remaining_capacity": capErr.Remaining, "attempted": capErr.Attempted}
		return ae

	case errors.As(err, &limitErr):
		ae := Wrap("VLT_003", "Withdrawal exceeds the per-transaction limit", http.StatusUnprocessableEntity, err)
		ae.Details = map[string]uint64{"requested": limitErr.Requested, "limit": limitErr.Limit}
		return ae

	case errors.As(err, &balErr):
		ae := Wrap("VLT_004", "Insufficient balance", http.StatusPaymentRequired, err)
		ae.Details = map[string]any{
			"account":   balErr.Account.String(),
			"available": balErr.Available,
			"requested": balErr.Requested,
		}
		return ae

	case errors.As(err, &xferErr):
		ae := Wrap("VLT_005", "Outbound transfer failed", http.StatusBadGateway, err)
		ae.Details = map[string]any{"destination": xferErr.Destination.String(), "amount": xferErr.Amount}
		return ae

	case errors.Is(err, domain.ErrReentrancy):
		return Wrap("VLT_006", "Another vault operation is in progress", http.StatusConflict, err)

	case errors.As(err, &ownerErr):
		ae := Wrap("VLT_007", "Only the vault owner may perform this operation", http.StatusForbidden, err)
		ae.Details = map[string]string{"caller": ownerErr.Caller.String()}
		return ae
	}

	return InternalError(err)
}

// ---- Authentication (AUTH) ----

func ErrInvalidCredentials() *AppError {
	return New("AUTH_001", "Invalid credentials", http.StatusUnauthorized)
}

func ErrUsernameExists() *AppError {
	return New("AUTH_002", "Username already exists", http.StatusConflict)
}

func ErrInvalidToken() *AppError {
	return New("AUTH_003", "Invalid or expired token", http.StatusUnauthorized)
}

func ErrForbidden() *AppError {
	return New("AUTH_004", "Insufficient permissions", http.StatusForbidden)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New("RATE_001", "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System & Infrastructure (SYS) ----

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}

// Validation returns a request-validation error.
func Validation(message string) *AppError {
	return New("VLT_000", message, http.StatusBadRequest)
}
