package entity

// AllocationKind selects how an allocation request value is interpreted.
type AllocationKind string

const (
	AllocationPercentage AllocationKind = "percentage"
	AllocationUSD        AllocationKind = "usd"
)

// AllocationRequest is the user's requested spend: a share of the portfolio or an absolute USD amount.
type AllocationRequest struct {
	Kind  AllocationKind `json:"kind"`
	Value float64        `json:"value"`
}

// InputItem is the engine's normalized view of one held asset.
type InputItem struct {
	Asset    Asset         `json:"asset"`
	Price    Price         `json:"price"`
	Balance  BalanceRecord `json:"balance"`
	Amount   float64       `json:"amount"`
	UsdValue float64       `json:"usdValue"`
}

// DesiredUsdAllocation is one resolved target position.
type DesiredUsdAllocation struct {
	Asset    Asset   `json:"asset"`
	Price    Price   `json:"price"`
	UsdValue float64 `json:"usdValue"`
}

// TokenValue is the target position expressed in token units.
func (d DesiredUsdAllocation) TokenValue() float64 {
	if d.Price.UsdRate <= 0 {
		return 0
	}
	return d.UsdValue / d.Price.UsdRate
}
