package entity

import "time"

// ActionSwap is the only action type the engine emits.
const ActionSwap = "swap"

// RebalanceAction is one proposed swap from a held asset into a target asset.
type RebalanceAction struct {
	Type           string        `json:"type"`
	From           BalanceRecord `json:"from"`
	FromCanonical  string        `json:"fromCanonical"`
	FromUsdValue   float64       `json:"fromUsdValue"`
	FromTokenValue float64       `json:"fromTokenValue"`
	To             Asset         `json:"to"`
	ToPrice        Price         `json:"toPrice"`
	ToTokenValue   float64       `json:"toTokenValue"`
}

// RebalanceOutput is the immutable result of one rebalance computation.
type RebalanceOutput struct {
	Valid        bool              `json:"valid"`
	ErrorMessage string            `json:"errorMessage,omitempty"`
	ID           string            `json:"id"`
	CreatedAt    time.Time         `json:"createdAt"`
	Actions      []RebalanceAction `json:"actions"`
	Logs         []string          `json:"logs"`
}

// RebalanceInput carries everything the pure pipeline needs.
type RebalanceInput struct {
	Portfolio       []BalanceRecord   `json:"portfolio"`
	Prices          []Price           `json:"prices"`
	SupportedAssets []Asset           `json:"supportedAssets"`
	Strategy        Strategy          `json:"strategy"`
	Allocation      AllocationRequest `json:"allocation"`
}
