package allocator

import (
	"testing"

	"github.com/SolYield/yieldgate/internal/model"
	"github.com/SolYield/yieldgate/internal/pkg/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCatalog() []model.Venue {
	return []model.Venue{
		{VenueID: 1, Name: "marinade", ChainID: 1, APY: 500, RiskScore: 2},
		{VenueID: 2, Name: "kamino", ChainID: 1, APY: 800, RiskScore: 5},
		{VenueID: 3, Name: "aave", ChainID: 2, APY: 300, RiskScore: 1},
		{VenueID: 4, Name: "degenbox", ChainID: 3, APY: 1000, RiskScore: 8},
	}
}

func TestAllocateRanksAndSplits(t *testing.T) {
	positions, err := Allocate(1000, 5, nil, testCatalog(), 42)
	require.NoError(t, err)
	require.Len(t, positions, 3)

	// V1 and V2 both score 4000; the stable sort keeps V1 (earlier in
	// the catalog) ahead, so the remainder lands on V1.
	assert.Equal(t, uint32(1), positions[0].VenueID)
	assert.Equal(t, uint32(2), positions[1].VenueID)
	assert.Equal(t, uint32(3), positions[2].VenueID)

	assert.Equal(t, uint64(334), positions[0].Amount)
	assert.Equal(t, uint64(333), positions[1].Amount)
	assert.Equal(t, uint64(333), positions[2].Amount)

	for _, p := range positions {
		assert.Equal(t, int64(42), p.StartTime)
		assert.Equal(t, uint64(0), p.RewardAccrued)
	}
}

func TestAllocateAmountConservation(t *testing.T) {
	for _, amount := range []uint64{1, 2, 3, 7, 999, 1000, 123456789} {
		positions, err := Allocate(amount, 10, nil, testCatalog(), 0)
		require.NoError(t, err)
		require.True(t, len(positions) >= 1 && len(positions) <= model.MaxPositions)

		var sum uint64
		for _, p := range positions {
			sum += p.Amount
		}
		assert.Equal(t, amount, sum, "amount %d not conserved", amount)
	}
}

func TestAllocateCapsAtThreeVenues(t *testing.T) {
	positions, err := Allocate(900, 10, nil, testCatalog(), 0)
	require.NoError(t, err)
	// Four venues qualify at tolerance 10, only three get positions:
	// V4 scores 2000, V1/V2 4000, V3 2700 -> [V1, V2, V3].
	require.Len(t, positions, 3)
	assert.Equal(t, uint32(1), positions[0].VenueID)
	assert.Equal(t, uint32(2), positions[1].VenueID)
	assert.Equal(t, uint32(3), positions[2].VenueID)
}

func TestAllocatePreferredChainFilter(t *testing.T) {
	positions, err := Allocate(1000, 5, []uint32{2}, testCatalog(), 0)
	require.NoError(t, err)
	require.Len(t, positions, 1)
	assert.Equal(t, uint32(3), positions[0].VenueID)
	assert.Equal(t, uint64(1000), positions[0].Amount)
}

func TestAllocateNoSuitableVenues(t *testing.T) {
	_, err := Allocate(1000, 5, []uint32{9}, testCatalog(), 0)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrNoSuitableVenues))

	// Risk filter alone can also empty the candidate set.
	_, err = Allocate(1000, 0, nil, testCatalog(), 0)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrNoSuitableVenues))
}

func TestAllocateInvalidRiskTolerance(t *testing.T) {
	_, err := Allocate(1000, 11, nil, testCatalog(), 0)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidRiskTolerance))
}

func TestAllocateZeroAmount(t *testing.T) {
	_, err := Allocate(0, 5, nil, testCatalog(), 0)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidRequest))
}

func TestScoreZeroAtMaxRisk(t *testing.T) {
	// A risk-10 venue is selectable at tolerance 10 but scores zero.
	v := model.Venue{VenueID: 9, APY: 10000, RiskScore: 10}
	assert.Equal(t, uint64(0), Score(v))

	positions, err := Allocate(100, 10, nil, []model.Venue{v}, 0)
	require.NoError(t, err)
	require.Len(t, positions, 1)
	assert.Equal(t, uint64(100), positions[0].Amount)
}
