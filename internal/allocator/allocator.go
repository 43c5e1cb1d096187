package allocator

import (
	"fmt"
	"sort"

	"github.com/SolYield/yieldgate/internal/model"
	"github.com/SolYield/yieldgate/internal/pkg/apperrors"
)

// MaxRiskTolerance is the upper bound of the accepted risk scale.
const MaxRiskTolerance = 10

// Allocate splits amount across the highest-scoring venues that fit the
// caller's risk tolerance and optional chain preference. It returns
// between 1 and model.MaxPositions positions whose amounts sum to amount
// exactly; any integer-division remainder goes to the top-ranked venue.
//
// The function is pure: it never mutates the catalog and has no side
// effects beyond the returned slice.
func Allocate(amount uint64, riskTolerance uint8, preferredChains []uint32, catalog []model.Venue, now int64) ([]model.Position, error) {
	if amount == 0 {
		return nil, apperrors.NewInvalidRequest("deposit amount must be positive")
	}
	if riskTolerance > MaxRiskTolerance {
		return nil, apperrors.New(apperrors.ErrInvalidRiskTolerance,
			fmt.Sprintf("risk tolerance %d outside [0,%d]", riskTolerance, MaxRiskTolerance), nil)
	}

	filtered := make([]model.Venue, 0, len(catalog))
	for _, v := range catalog {
		if v.RiskScore > riskTolerance {
			continue
		}
		if preferredChains != nil && !containsChain(preferredChains, v.ChainID) {
			continue
		}
		filtered = append(filtered, v)
	}
	if len(filtered) == 0 {
		return nil, apperrors.New(apperrors.ErrNoSuitableVenues,
			"no venue satisfies the risk tolerance and chain filter", nil)
	}

	// Rank by apy * (10 - risk); ties keep catalog order, which is
	// observable in the resulting position order.
	sort.SliceStable(filtered, func(i, j int) bool {
		return Score(filtered[i]) > Score(filtered[j])
	})

	n := len(filtered)
	if n > model.MaxPositions {
		n = model.MaxPositions
	}
	selected := filtered[:n]

	base := amount / uint64(n)
	remainder := amount % uint64(n)

	positions := make([]model.Position, n)
	for i, v := range selected {
		alloc := base
		if i == 0 {
			alloc += remainder
		}
		positions[i] = model.Position{
			ChainID:   v.ChainID,
			VenueID:   v.VenueID,
			Amount:    alloc,
			StartTime: now,
		}
	}
	return positions, nil
}

// Score ranks a venue by its APY weighted toward low risk. uint64 keeps
// the product exact for the full declared ranges of apy and risk score.
func Score(v model.Venue) uint64 {
	return uint64(v.APY) * uint64(MaxRiskTolerance-v.RiskScore)
}

func containsChain(chains []uint32, id uint32) bool {
	for _, c := range chains {
		if c == id {
			return true
		}
	}
	return false
}
