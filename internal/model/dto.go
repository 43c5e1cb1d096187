package model

// DepositRequest represents the incoming JSON body for a deposit.
// PreferredChains is optional; nil means any supported chain.
type DepositRequest struct {
	Amount          uint64   `json:"amount" binding:"required"`
	RiskTolerance   uint8    `json:"risk_tolerance"`
	PreferredChains []uint32 `json:"preferred_chains,omitempty"`
}

type WithdrawRequest struct {
	Amount uint64 `json:"amount" binding:"required"`
}

type DepositResponse struct {
	Owner           string     `json:"owner"`
	DepositedAmount uint64     `json:"deposited_amount"`
	Positions       []Position `json:"positions"`
}

type WithdrawResponse struct {
	Owner           string `json:"owner"`
	Withdrawn       uint64 `json:"withdrawn"`
	DepositedAmount uint64 `json:"deposited_amount"`
}

// ClaimResponse reports the reward credited by this call and the new
// cumulative total. No value is moved on claim.
type ClaimResponse struct {
	Owner          string `json:"owner"`
	Reward         uint64 `json:"reward"`
	ClaimedRewards uint64 `json:"claimed_rewards"`
}

// PositionProjection / YieldProjection are read-only views; amounts stay
// integers, rates are decimal strings.
type PositionProjection struct {
	VenueID        uint32 `json:"venue_id"`
	ChainID        uint32 `json:"chain_id"`
	Amount         uint64 `json:"amount"`
	APY            string `json:"apy"`
	ProjectedYield string `json:"projected_annual_yield"`
}

type YieldProjection struct {
	Owner           string               `json:"owner"`
	DepositedAmount uint64               `json:"deposited_amount"`
	BlendedAPY      string               `json:"blended_apy"`
	ProjectedYield  string               `json:"projected_annual_yield"`
	Positions       []PositionProjection `json:"positions"`
}

// ReplaceCatalogRequest carries the wholesale venue catalog replacement.
type ReplaceCatalogRequest struct {
	Venues []Venue `json:"venues" binding:"required"`
}
