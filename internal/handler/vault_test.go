package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/SolYield/yieldgate/internal/config"
	"github.com/SolYield/yieldgate/internal/middleware"
	"github.com/SolYield/yieldgate/internal/model"
	"github.com/SolYield/yieldgate/internal/repository"
	"github.com/SolYield/yieldgate/internal/service"
	"github.com/gin-gonic/gin"
)

func newTestRouter(t *testing.T) (*gin.Engine, *config.Config) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Auth: config.AuthConfig{
			AdminKey:       "admin",
			AdminSecretKey: "secret",
		},
		Vault: config.VaultConfig{
			Admin: "0xAdmin",
			Chains: []config.ChainConfig{
				{ChainID: 1, BridgeAddress: "bridge-1", GasToken: "SOL"},
			},
			Venues: []config.VenueConfig{
				{VenueID: 1, Name: "marinade", ChainID: 1, APY: 500, RiskScore: 2},
				{VenueID: 2, Name: "kamino", ChainID: 1, APY: 800, RiskScore: 5},
			},
		},
	}

	registrySvc := service.NewRegistryService(repository.NewMemoryRegistryRepo(), nil)
	if _, err := registrySvc.Bootstrap(context.Background(), cfg.Vault); err != nil {
		t.Fatalf("bootstrap failed: %v", err)
	}
	vaultSvc := service.NewVaultService(
		repository.NewMemoryLedgerRepo(), registrySvc,
		service.NewCustodyPool(), nil, cfg.Limits, nil)

	vaultHandler := NewVaultHandler(vaultSvc)
	registryHandler := NewRegistryHandler(registrySvc)

	router := gin.New()
	router.Use(middleware.ErrorHandler())
	v1 := router.Group("/v1")
	v1.Use(middleware.AuthMiddleware(cfg))
	v1.POST("/vault/deposit", vaultHandler.Deposit)
	v1.POST("/vault/withdraw", vaultHandler.Withdraw)
	v1.GET("/vault/ledger", vaultHandler.GetLedger)
	v1.GET("/registry", registryHandler.Get)

	admin := v1.Group("")
	admin.Use(middleware.AdminMiddleware(cfg))
	admin.PUT("/registry/venues", middleware.AdminSecretMiddleware(cfg), registryHandler.ReplaceVenues)

	return router, cfg
}

func TestDepositEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	body, _ := json.Marshal(model.DepositRequest{Amount: 1000, RiskTolerance: 5})
	req := httptest.NewRequest(http.MethodPost, "/v1/vault/deposit", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.HeaderIdentity, "0xAlice")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp model.DepositResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response json: %v", err)
	}
	if resp.DepositedAmount != 1000 {
		t.Fatalf("expected deposited 1000, got %d", resp.DepositedAmount)
	}
	if len(resp.Positions) != 2 {
		t.Fatalf("expected 2 positions, got %d", len(resp.Positions))
	}

	// Second deposit for the same identity conflicts.
	req2 := httptest.NewRequest(http.MethodPost, "/v1/vault/deposit", bytes.NewReader(body))
	req2.Header.Set("Content-Type", "application/json")
	req2.Header.Set(middleware.HeaderIdentity, "0xAlice")
	rec2 := httptest.NewRecorder()
	router.ServeHTTP(rec2, req2)
	if rec2.Code != http.StatusConflict {
		t.Fatalf("expected 409 on repeat deposit, got %d", rec2.Code)
	}
}

func TestDepositRequiresIdentity(t *testing.T) {
	router, _ := newTestRouter(t)

	body, _ := json.Marshal(model.DepositRequest{Amount: 1000, RiskTolerance: 5})
	req := httptest.NewRequest(http.MethodPost, "/v1/vault/deposit", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without identity header, got %d", rec.Code)
	}
}

func TestWithdrawInsufficientMapsTo400(t *testing.T) {
	router, _ := newTestRouter(t)

	depositBody, _ := json.Marshal(model.DepositRequest{Amount: 500, RiskTolerance: 5})
	req := httptest.NewRequest(http.MethodPost, "/v1/vault/deposit", bytes.NewReader(depositBody))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.HeaderIdentity, "0xAlice")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("deposit failed: %d %s", rec.Code, rec.Body.String())
	}

	withdrawBody, _ := json.Marshal(model.WithdrawRequest{Amount: 600})
	req2 := httptest.NewRequest(http.MethodPost, "/v1/vault/withdraw", bytes.NewReader(withdrawBody))
	req2.Header.Set("Content-Type", "application/json")
	req2.Header.Set(middleware.HeaderIdentity, "0xAlice")
	rec2 := httptest.NewRecorder()
	router.ServeHTTP(rec2, req2)

	if rec2.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 on over-withdraw, got %d", rec2.Code)
	}
}

func TestReplaceVenuesRequiresAdminSecret(t *testing.T) {
	router, _ := newTestRouter(t)

	body, _ := json.Marshal(model.ReplaceCatalogRequest{Venues: []model.Venue{
		{VenueID: 9, Name: "jito", ChainID: 1, APY: 650, RiskScore: 3},
	}})

	req := httptest.NewRequest(http.MethodPut, "/v1/registry/venues", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.HeaderIdentity, "0xAdmin")
	req.Header.Set(middleware.HeaderAdminKey, "admin")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without admin secret, got %d", rec.Code)
	}

	req2 := httptest.NewRequest(http.MethodPut, "/v1/registry/venues", bytes.NewReader(body))
	req2.Header.Set("Content-Type", "application/json")
	req2.Header.Set(middleware.HeaderIdentity, "0xAdmin")
	req2.Header.Set(middleware.HeaderAdminKey, "admin")
	req2.Header.Set(middleware.HeaderAdminSecretKey, "secret")
	rec2 := httptest.NewRecorder()
	router.ServeHTTP(rec2, req2)
	if rec2.Code != http.StatusOK {
		t.Fatalf("expected 200 with admin secret, got %d: %s", rec2.Code, rec2.Body.String())
	}

	// Catalog is now the replacement set.
	req3 := httptest.NewRequest(http.MethodGet, "/v1/registry", nil)
	req3.Header.Set(middleware.HeaderIdentity, "0xAlice")
	rec3 := httptest.NewRecorder()
	router.ServeHTTP(rec3, req3)
	if rec3.Code != http.StatusOK {
		t.Fatalf("registry read failed: %d", rec3.Code)
	}
	var reg model.Registry
	if err := json.Unmarshal(rec3.Body.Bytes(), &reg); err != nil {
		t.Fatalf("invalid registry json: %v", err)
	}
	if len(reg.Venues) != 1 || reg.Venues[0].VenueID != 9 {
		t.Fatalf("catalog not replaced: %+v", reg.Venues)
	}
}
