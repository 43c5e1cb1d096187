package service

// VaultEvent is broadcast after a successful state-changing operation.
type VaultEvent struct {
	ID        string `json:"id"`
	Type      string `json:"type"` // deposit | withdraw | claim | catalog_replaced
	Owner     string `json:"owner,omitempty"`
	Amount    uint64 `json:"amount,omitempty"`
	Reward    uint64 `json:"reward,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

const (
	EventDeposit         = "deposit"
	EventWithdraw        = "withdraw"
	EventClaim           = "claim"
	EventCatalogReplaced = "catalog_replaced"
)

// EventSink receives events; implementations must not block.
type EventSink interface {
	Publish(evt VaultEvent)
}
