package rewards

import (
	sdkmath "cosmossdk.io/math"

	"github.com/SolYield/yieldgate/internal/model"
)

const SecondsPerDay = 86400

// Every position accrues at a flat 15.00% annual rate, applied as
// 1500/36500 per whole day. The venue's own APY does not feed into
// accrual; it only drives allocation ranking.
const (
	rateNumerator   = 1500
	rateDenominator = 36500
)

// Accrue credits each position with floor(amount * 1500/36500 * days)
// for the whole days elapsed since its last reset, then moves the
// position clock to now so a later call never counts the same interval
// twice. Partial days are not credited and their progress is discarded
// by the reset. Returns the total credited by this invocation.
func Accrue(positions []model.Position, now int64) uint64 {
	var total uint64
	for i := range positions {
		p := &positions[i]
		days := (now - p.StartTime) / SecondsPerDay
		if days > 0 {
			reward := sdkmath.NewIntFromUint64(p.Amount).
				MulRaw(rateNumerator).
				MulRaw(days).
				QuoRaw(rateDenominator).
				Uint64()
			p.RewardAccrued += reward
			total += reward
		}
		p.StartTime = now
	}
	return total
}
