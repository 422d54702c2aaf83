package handler

import (
	"vault-ledger/internal/adapter/http/dto"
	"vault-ledger/internal/adapter/http/middleware"
	"vault-ledger/internal/core/ports"
	"vault-ledger/pkg/apperror"
	"vault-ledger/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AdminHandler handles owner-only endpoints. Ownership is enforced by the
// ledger itself, which compares the authenticated caller against the
// configured owner; the handler only relays the caller identity.
type AdminHandler struct {
	vaultSvc ports.VaultService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(vaultSvc ports.VaultService) *AdminHandler {
	return &AdminHandler{vaultSvc: vaultSvc}
}

// Rescue handles POST /api/v1/admin/rescue. It sweeps held but unattributed
// funds to the given destination.
func (h *AdminHandler) Rescue(c *gin.Context) {
	caller, ok := middleware.AccountID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.RescueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	destination, err := uuid.Parse(req.Destination)
	if err != nil {
		response.Error(c, apperror.Validation("invalid destination"))
		return
	}

	ev, err := h.vaultSvc.Rescue(c.Request.Context(), ports.RescueRequest{
		Caller:      caller,
		Destination: destination,
		Amount:      req.Amount,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, toEventResponse(ev))
}
