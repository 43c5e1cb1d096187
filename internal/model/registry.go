package model

// Chain describes a settlement chain a venue can live on.
type Chain struct {
	ChainID       uint32 `json:"chain_id"`
	BridgeAddress string `json:"bridge_address"`
	GasToken      string `json:"gas_token"`
}

// Venue is a yield-bearing destination. APY is expressed in basis points
// (500 = 5.00%); RiskScore runs 0 (safest) to 10 (riskiest).
type Venue struct {
	VenueID   uint32 `json:"venue_id"`
	Name      string `json:"name"`
	ChainID   uint32 `json:"chain_id"`
	APY       uint32 `json:"apy"`
	RiskScore uint8  `json:"risk_score"`
}

// Registry is the single process-wide catalog of supported chains and
// venues, plus the admin identity allowed to replace the venue catalog.
// It is created once at bootstrap; Admin never changes afterwards.
type Registry struct {
	Admin  string  `json:"admin"`
	Chains []Chain `json:"chains"`
	Venues []Venue `json:"venues"`
}
