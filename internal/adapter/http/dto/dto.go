package dto

// RegisterRequest is the request body for account registration.
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Password string `json:"password" binding:"required,min=8,max=128"`
}

// LoginRequest is the request body for login.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RegisterResponse is the response body for successful registration.
type RegisterResponse struct {
	AccountID string `json:"account_id"`
}

// LoginResponse is the response body for successful login.
type LoginResponse struct {
	Token  string `json:"token"`
	Expiry int64  `json:"expiry"` // Unix timestamp
}

// DepositRequest is the request body for a vault deposit.
type DepositRequest struct {
	Amount uint64 `json:"amount" binding:"required,gt=0"`
}

// WithdrawRequest is the request body for a vault withdrawal.
type WithdrawRequest struct {
	Amount uint64 `json:"amount" binding:"required,gt=0"`
}

// RescueRequest is the request body for an owner rescue sweep.
type RescueRequest struct {
	Destination string `json:"destination" binding:"required,uuid"`
	Amount      uint64 `json:"amount" binding:"required,gt=0"`
}

// EventResponse is the response body for a committed vault operation.
type EventResponse struct {
	Type       string `json:"type"`
	Account    string `json:"account"`
	Amount     uint64 `json:"amount"`
	NewBalance uint64 `json:"new_balance"`
	Timestamp  string `json:"timestamp"`
}

// BalanceResponse is the response for a balance query.
type BalanceResponse struct {
	Account string `json:"account"`
	Balance uint64 `json:"balance"`
}

// CapacityResponse is the response for the remaining-capacity query.
type CapacityResponse struct {
	BankCap           uint64 `json:"bank_cap"`
	AggregateTotal    uint64 `json:"aggregate_total"`
	RemainingCapacity uint64 `json:"remaining_capacity"`
}

// OverviewResponse is the response for the vault configuration query.
type OverviewResponse struct {
	Owner              string `json:"owner"`
	BankCap            uint64 `json:"bank_cap"`
	PerTxWithdrawLimit uint64 `json:"per_tx_withdraw_limit"`
	AggregateTotal     uint64 `json:"aggregate_total"`
	RemainingCapacity  uint64 `json:"remaining_capacity"`
	HeldFunds          uint64 `json:"held_funds"`
	GlobalDeposits     uint64 `json:"global_deposits"`
	GlobalWithdrawals  uint64 `json:"global_withdrawals"`
}

// CountersResponse is the response for the per-account counters query.
type CountersResponse struct {
	Account     string `json:"account"`
	Deposits    uint64 `json:"deposits"`
	Withdrawals uint64 `json:"withdrawals"`
}

// EntryResponse is a single journal entry.
type EntryResponse struct {
	ID           string `json:"id"`
	EventType    string `json:"event_type"`
	Account      string `json:"account"`
	Amount       uint64 `json:"amount"`
	BalanceAfter uint64 `json:"balance_after"`
	CreatedAt    string `json:"created_at"`
}

// EntryListResponse wraps a paginated journal listing.
type EntryListResponse struct {
	Items      []EntryResponse `json:"items"`
	Total      int64           `json:"total"`
	Page       int             `json:"page"`
	PageSize   int             `json:"page_size"`
	TotalPages int             `json:"total_pages"`
}
