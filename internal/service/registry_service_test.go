package service

import (
	"context"
	"testing"

	"github.com/SolYield/yieldgate/internal/model"
	"github.com/SolYield/yieldgate/internal/pkg/apperrors"
	"github.com/SolYield/yieldgate/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBootstrapFirstWriteWins(t *testing.T) {
	svc := NewRegistryService(repository.NewMemoryRegistryRepo(), nil)
	ctx := context.Background()

	reg, err := svc.Bootstrap(ctx, testVaultConfig)
	require.NoError(t, err)
	assert.Equal(t, testVaultConfig.Admin, reg.Admin)
	assert.Len(t, reg.Venues, 4)

	// A second bootstrap with a different admin returns the stored record.
	other := testVaultConfig
	other.Admin = "0x0000000000000000000000000000000000000001"
	reg2, err := svc.Bootstrap(ctx, other)
	require.NoError(t, err)
	assert.Equal(t, testVaultConfig.Admin, reg2.Admin)
}

func TestBootstrapRequiresAdmin(t *testing.T) {
	svc := NewRegistryService(repository.NewMemoryRegistryRepo(), nil)

	cfg := testVaultConfig
	cfg.Admin = ""
	_, err := svc.Bootstrap(context.Background(), cfg)
	require.Error(t, err)
}

func TestReplaceCatalogUnauthorized(t *testing.T) {
	svc := NewRegistryService(repository.NewMemoryRegistryRepo(), nil)
	ctx := context.Background()
	_, err := svc.Bootstrap(ctx, testVaultConfig)
	require.NoError(t, err)

	err = svc.ReplaceCatalog(ctx, "0x0000000000000000000000000000000000000002", []model.Venue{
		{VenueID: 9, Name: "rogue", ChainID: 1, APY: 9999, RiskScore: 1},
	})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrUnauthorized))

	reg, err := svc.Snapshot(ctx)
	require.NoError(t, err)
	assert.Len(t, reg.Venues, 4)
}

func TestReplaceCatalogWholesale(t *testing.T) {
	svc := NewRegistryService(repository.NewMemoryRegistryRepo(), nil)
	ctx := context.Background()
	_, err := svc.Bootstrap(ctx, testVaultConfig)
	require.NoError(t, err)

	next := []model.Venue{
		{VenueID: 10, Name: "jito", ChainID: 1, APY: 650, RiskScore: 3},
		{VenueID: 11, Name: "lido", ChainID: 2, APY: 420, RiskScore: 2},
	}
	err = svc.ReplaceCatalog(ctx, testVaultConfig.Admin, next)
	require.NoError(t, err)

	reg, err := svc.Snapshot(ctx)
	require.NoError(t, err)
	require.Len(t, reg.Venues, 2)
	assert.Equal(t, next, reg.Venues)
	// Chains and admin survive a catalog swap untouched.
	assert.Equal(t, testVaultConfig.Admin, reg.Admin)
	assert.Len(t, reg.Chains, 3)
}

func TestReplaceCatalogRejectsInvalidVenues(t *testing.T) {
	svc := NewRegistryService(repository.NewMemoryRegistryRepo(), nil)
	ctx := context.Background()
	_, err := svc.Bootstrap(ctx, testVaultConfig)
	require.NoError(t, err)

	err = svc.ReplaceCatalog(ctx, testVaultConfig.Admin, []model.Venue{
		{VenueID: 9, Name: "toxic", ChainID: 1, APY: 100, RiskScore: 11},
	})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidRequest))

	err = svc.ReplaceCatalog(ctx, testVaultConfig.Admin, []model.Venue{
		{VenueID: 9, Name: "a", ChainID: 1, APY: 100, RiskScore: 1},
		{VenueID: 9, Name: "b", ChainID: 1, APY: 200, RiskScore: 1},
	})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidRequest))
}

func TestSnapshotBeforeBootstrap(t *testing.T) {
	svc := NewRegistryService(repository.NewMemoryRegistryRepo(), nil)

	_, err := svc.Snapshot(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}

func TestCustodyPoolUnderflow(t *testing.T) {
	pool := NewCustodyPool()
	ctx := context.Background()

	require.NoError(t, pool.TransferIn(ctx, "alice", 100))
	require.NoError(t, pool.TransferOut(ctx, "alice", 60))
	assert.Equal(t, uint64(40), pool.Balance())

	err := pool.TransferOut(ctx, "alice", 41)
	require.Error(t, err)
	assert.Equal(t, uint64(40), pool.Balance())
}
