package handler

import (
	"net/http"

	"github.com/SolYield/yieldgate/internal/middleware"
	"github.com/SolYield/yieldgate/internal/model"
	"github.com/SolYield/yieldgate/internal/pkg/apperrors"
	"github.com/SolYield/yieldgate/internal/service"
	"github.com/gin-gonic/gin"
)

type RegistryHandler struct {
	svc *service.RegistryService
}

func NewRegistryHandler(svc *service.RegistryService) *RegistryHandler {
	return &RegistryHandler{svc: svc}
}

// Get returns the chain and venue catalog.
func (h *RegistryHandler) Get(c *gin.Context) {
	reg, err := h.svc.Snapshot(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, reg)
}

// ReplaceVenues swaps the venue catalog wholesale. The admin gate
// middleware checks the operator keys; the service checks that the
// caller identity is the registry admin.
func (h *RegistryHandler) ReplaceVenues(c *gin.Context) {
	caller := middleware.CallerFrom(c)
	if caller == "" {
		c.Error(apperrors.NewUnauthorized("missing caller identity"))
		return
	}

	var req model.ReplaceCatalogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.NewInvalidRequest(err.Error()))
		return
	}

	if err := h.svc.ReplaceCatalog(c.Request.Context(), caller, req.Venues); err != nil {
		middleware.AddAuditContext(c, "error", err.Error())
		c.Error(err)
		return
	}

	middleware.AddAuditContext(c, "action", "replace_venues")
	middleware.AddAuditContext(c, "venues", len(req.Venues))

	c.JSON(http.StatusOK, gin.H{"status": "ok", "venues": len(req.Venues)})
}
