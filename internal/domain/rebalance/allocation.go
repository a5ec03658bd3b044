package rebalance

import (
	"fmt"
	"math"
	"strings"

	"portfolio_rebalancer/internal/domain/entity"
)

// CalculateUsdAllocation converts an allocation request into a USD amount.
//
// Percentage requests must lie in (0, 100]; USD requests in (0, totalUsdValue].
// A portfolio with no USD value cannot fund any request.
func CalculateUsdAllocation(req entity.AllocationRequest, totalUsdValue float64) (float64, error) {
	if math.IsNaN(req.Value) || math.IsInf(req.Value, 0) {
		return 0, entity.NewInvalidAllocationError(fmt.Sprintf("allocation value must be finite, got %v", req.Value))
	}

	switch req.Kind {
	case entity.AllocationPercentage:
		if req.Value <= 0 || req.Value > 100 {
			return 0, entity.NewInvalidAllocationError(fmt.Sprintf("percentage must be in (0, 100], got %v", req.Value))
		}
		if totalUsdValue <= 0 {
			return 0, entity.NewEmptyPortfolioError()
		}
		return totalUsdValue * (req.Value / 100), nil
	case entity.AllocationUSD:
		if req.Value <= 0 {
			return 0, entity.NewInvalidAllocationError(fmt.Sprintf("usd amount must be positive, got %v", req.Value))
		}
		if totalUsdValue <= 0 {
			return 0, entity.NewEmptyPortfolioError()
		}
		if req.Value > totalUsdValue {
			return 0, entity.NewAllocationExceedsPortfolioError(req.Value, totalUsdValue)
		}
		return req.Value, nil
	default:
		return 0, entity.NewInvalidAllocationError(fmt.Sprintf("unknown allocation kind %q", req.Kind))
	}
}

// BuildDesiredAllocations resolves each strategy line against the registry and prices.
// The first asset of a canonical group is used; its price is the quote on the same chain
// when one exists, otherwise the first quote of the group.
func BuildDesiredAllocations(
	distributions []entity.Distribution,
	assets []entity.Asset,
	prices []entity.Price,
	allocationUsdValue float64,
) ([]entity.DesiredUsdAllocation, error) {
	assetsByCanonical := make(map[string][]entity.Asset)
	for _, a := range assets {
		c := strings.ToUpper(a.Canonical)
		assetsByCanonical[c] = append(assetsByCanonical[c], a)
	}
	pricesByCanonical := make(map[string][]entity.Price)
	for _, p := range prices {
		c := strings.ToUpper(p.Canonical)
		pricesByCanonical[c] = append(pricesByCanonical[c], p)
	}

	desired := make([]entity.DesiredUsdAllocation, 0, len(distributions))
	for _, d := range distributions {
		c := strings.ToUpper(d.Asset)
		candidates := assetsByCanonical[c]
		quotes := pricesByCanonical[c]
		if len(candidates) == 0 || len(quotes) == 0 {
			return nil, entity.NewAssetNotFoundError(d.Asset)
		}

		asset := candidates[0]
		// First quote of the group, unless one is on the chosen asset's own chain.
		price := quotes[0]
		for _, q := range quotes {
			if q.ChainID == asset.ChainID {
				price = q
				break
			}
		}

		desired = append(desired, entity.DesiredUsdAllocation{
			Asset:    asset,
			Price:    price,
			UsdValue: allocationUsdValue * float64(d.PercentageBp) / entity.FullAllocationBp,
		})
	}
	return desired, nil
}
