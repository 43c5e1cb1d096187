package handler

import (
	"net/http"

	"github.com/SolYield/yieldgate/internal/middleware"
	"github.com/SolYield/yieldgate/internal/model"
	"github.com/SolYield/yieldgate/internal/pkg/apperrors"
	"github.com/SolYield/yieldgate/internal/service"
	"github.com/gin-gonic/gin"
)

type VaultHandler struct {
	svc *service.VaultService
}

func NewVaultHandler(svc *service.VaultService) *VaultHandler {
	return &VaultHandler{svc: svc}
}

func (h *VaultHandler) Deposit(c *gin.Context) {
	caller := middleware.CallerFrom(c)
	if caller == "" {
		c.Error(apperrors.NewUnauthorized("missing caller identity"))
		return
	}

	var req model.DepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.NewInvalidRequest(err.Error()))
		return
	}

	ledger, err := h.svc.Deposit(c.Request.Context(), caller, req)
	if err != nil {
		middleware.AddAuditContext(c, "error", err.Error())
		c.Error(err)
		return
	}

	middleware.AddAuditContext(c, "action", "deposit")
	middleware.AddAuditContext(c, "amount", req.Amount)
	middleware.AddAuditContext(c, "positions", len(ledger.Positions))

	c.JSON(http.StatusOK, model.DepositResponse{
		Owner:           ledger.Owner,
		DepositedAmount: ledger.DepositedAmount,
		Positions:       ledger.Positions,
	})
}

func (h *VaultHandler) Withdraw(c *gin.Context) {
	caller := middleware.CallerFrom(c)
	if caller == "" {
		c.Error(apperrors.NewUnauthorized("missing caller identity"))
		return
	}

	var req model.WithdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.NewInvalidRequest(err.Error()))
		return
	}

	ledger, err := h.svc.Withdraw(c.Request.Context(), caller, req.Amount)
	if err != nil {
		middleware.AddAuditContext(c, "error", err.Error())
		c.Error(err)
		return
	}

	middleware.AddAuditContext(c, "action", "withdraw")
	middleware.AddAuditContext(c, "amount", req.Amount)

	c.JSON(http.StatusOK, model.WithdrawResponse{
		Owner:           ledger.Owner,
		Withdrawn:       req.Amount,
		DepositedAmount: ledger.DepositedAmount,
	})
}

func (h *VaultHandler) Claim(c *gin.Context) {
	caller := middleware.CallerFrom(c)
	if caller == "" {
		c.Error(apperrors.NewUnauthorized("missing caller identity"))
		return
	}

	reward, ledger, err := h.svc.Claim(c.Request.Context(), caller)
	if err != nil {
		middleware.AddAuditContext(c, "error", err.Error())
		c.Error(err)
		return
	}

	middleware.AddAuditContext(c, "action", "claim")
	middleware.AddAuditContext(c, "reward", reward)

	c.JSON(http.StatusOK, model.ClaimResponse{
		Owner:          ledger.Owner,
		Reward:         reward,
		ClaimedRewards: ledger.ClaimedRewards,
	})
}

func (h *VaultHandler) GetLedger(c *gin.Context) {
	caller := middleware.CallerFrom(c)
	if caller == "" {
		c.Error(apperrors.NewUnauthorized("missing caller identity"))
		return
	}

	ledger, err := h.svc.Ledger(c.Request.Context(), caller)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, ledger)
}

func (h *VaultHandler) Projection(c *gin.Context) {
	caller := middleware.CallerFrom(c)
	if caller == "" {
		c.Error(apperrors.NewUnauthorized("missing caller identity"))
		return
	}

	proj, err := h.svc.Projection(c.Request.Context(), caller)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, proj)
}
