package handler

import (
	"strconv"
	"time"

	"vault-ledger/internal/adapter/http/dto"
	"vault-ledger/internal/adapter/http/middleware"
	"vault-ledger/internal/core/domain"
	"vault-ledger/internal/core/ports"
	"vault-ledger/pkg/apperror"
	"vault-ledger/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// VaultHandler handles the vault endpoints. The caller identity always comes
// from the JWT, never from the request body.
type VaultHandler struct {
	vaultSvc ports.VaultService
}

// NewVaultHandler creates a new VaultHandler.
func NewVaultHandler(vaultSvc ports.VaultService) *VaultHandler {
	return &VaultHandler{vaultSvc: vaultSvc}
}

// Deposit handles POST /api/v1/vault/deposit.
func (h *VaultHandler) Deposit(c *gin.Context) {
	caller, ok := middleware.AccountID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.DepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	ev, err := h.vaultSvc.Deposit(c.Request.Context(), ports.DepositRequest{
		Account: caller,
		Amount:  req.Amount,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, toEventResponse(ev))
}

// Withdraw handles POST /api/v1/vault/withdraw.
func (h *VaultHandler) Withdraw(c *gin.Context) {
	caller, ok := middleware.AccountID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.WithdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	ev, err := h.vaultSvc.Withdraw(c.Request.Context(), ports.WithdrawRequest{
		Account: caller,
		Amount:  req.Amount,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, toEventResponse(ev))
}

// Balance handles GET /api/v1/vault/balance.
func (h *VaultHandler) Balance(c *gin.Context) {
	caller, ok := middleware.AccountID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	response.OK(c, dto.BalanceResponse{
		Account: caller.String(),
		Balance: h.vaultSvc.Balance(caller),
	})
}

// BalanceOf handles GET /api/v1/vault/balance/:account. The owner may read
// any account; everyone else only their own.
func (h *VaultHandler) BalanceOf(c *gin.Context) {
	caller, ok := middleware.AccountID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	account, err := uuid.Parse(c.Param("account"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid account id"))
		return
	}

	if account != caller && !c.GetBool(middleware.CtxIsOwner) {
		response.Error(c, apperror.ErrForbidden())
		return
	}

	response.OK(c, dto.BalanceResponse{
		Account: account.String(),
		Balance: h.vaultSvc.Balance(account),
	})
}

// Capacity handles GET /api/v1/vault/capacity.
func (h *VaultHandler) Capacity(c *gin.Context) {
	ov := h.vaultSvc.Overview()
	response.OK(c, dto.CapacityResponse{
		BankCap:           ov.BankCap,
		AggregateTotal:    ov.AggregateTotal,
		RemainingCapacity: ov.RemainingCapacity,
	})
}

// Config handles GET /api/v1/vault/config.
func (h *VaultHandler) Config(c *gin.Context) {
	ov := h.vaultSvc.Overview()
	response.OK(c, dto.OverviewResponse{
		Owner:              ov.Owner.String(),
		BankCap:            ov.BankCap,
		PerTxWithdrawLimit: ov.PerTxWithdrawLimit,
		AggregateTotal:     ov.AggregateTotal,
		RemainingCapacity:  ov.RemainingCapacity,
		HeldFunds:          ov.HeldFunds,
		GlobalDeposits:     ov.GlobalDeposits,
		GlobalWithdrawals:  ov.GlobalWithdrawals,
	})
}

// Counters handles GET /api/v1/vault/counters.
func (h *VaultHandler) Counters(c *gin.Context) {
	caller, ok := middleware.AccountID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	counters := h.vaultSvc.Counters(caller)
	response.OK(c, dto.CountersResponse{
		Account:     caller.String(),
		Deposits:    counters.Deposits,
		Withdrawals: counters.Withdrawals,
	})
}

// Entries handles GET /api/v1/vault/entries with pagination and optional
// event-type filtering. Non-owner callers only ever see their own entries.
func (h *VaultHandler) Entries(c *gin.Context) {
	caller, ok := middleware.AccountID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	params := ports.EntryListParams{
		Page:     page,
		PageSize: pageSize,
	}
	if et := c.Query("event_type"); et != "" {
		eventType := domain.EventType(et)
		params.Type = &eventType
	}
	if c.GetBool(middleware.CtxIsOwner) {
		// The owner may inspect any account's entries.
		if acct := c.Query("account"); acct != "" {
			id, err := uuid.Parse(acct)
			if err != nil {
				response.Error(c, apperror.Validation("invalid account filter"))
				return
			}
			params.Account = &id
		}
	} else {
		params.Account = &caller
	}

	entries, total, err := h.vaultSvc.ListEntries(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]dto.EntryResponse, 0, len(entries))
	for i := range entries {
		items = append(items, toEntryResponse(&entries[i]))
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	response.OK(c, dto.EntryListResponse{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	})
}

func toEventResponse(ev *domain.Event) dto.EventResponse {
	return dto.EventResponse{
		Type:       string(ev.Type),
		Account:    ev.Account.String(),
		Amount:     ev.Amount,
		NewBalance: ev.NewBalance,
		Timestamp:  ev.Timestamp.UTC().Format(time.RFC3339),
	}
}

func toEntryResponse(e *domain.Entry) dto.EntryResponse {
	return dto.EntryResponse{
		ID:           e.ID.String(),
		EventType:    string(e.EventType),
		Account:      e.Account.String(),
		Amount:       e.Amount,
		BalanceAfter: e.BalanceAfter,
		CreatedAt:    e.CreatedAt.UTC().Format(time.RFC3339),
	}
}
