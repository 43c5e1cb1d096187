package model

// MaxPositions caps how many venues a single deposit is split across.
const MaxPositions = 3

// Position records funds placed into one venue. StartTime is the unix
// timestamp of the last accrual reset, not necessarily the deposit time.
type Position struct {
	ChainID       uint32 `json:"chain_id"`
	VenueID       uint32 `json:"venue_id"`
	Amount        uint64 `json:"amount"`
	StartTime     int64  `json:"start_time"`
	RewardAccrued uint64 `json:"reward_accrued"`
}

// OwnerLedger is the per-user aggregate: deposited principal, open
// positions (at most MaxPositions) and rewards credited so far. Exactly
// one ledger exists per owner identity.
type OwnerLedger struct {
	Owner           string     `json:"owner"`
	DepositedAmount uint64     `json:"deposited_amount"`
	ClaimedRewards  uint64     `json:"claimed_rewards"`
	Positions       []Position `json:"positions"`
}
