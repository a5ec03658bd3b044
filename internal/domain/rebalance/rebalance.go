package rebalance

import (
	"fmt"

	"portfolio_rebalancer/internal/domain/entity"
)

// Rebalance runs the full pipeline: normalize holdings, size the allocation,
// resolve strategy targets and match sources to targets.
// Component errors are returned unchanged; logs are concatenated in pipeline order.
func Rebalance(input entity.RebalanceInput) (*entity.RebalanceOutput, error) {
	inputs, err := BuildInputItems(input.SupportedAssets, input.Prices, input.Portfolio)
	if err != nil {
		return nil, err
	}

	total := TotalUsdValue(inputs.Items)
	allocationUsd, err := CalculateUsdAllocation(input.Allocation, total)
	if err != nil {
		return nil, err
	}

	desired, err := BuildDesiredAllocations(input.Strategy.Definitions, input.SupportedAssets, input.Prices, allocationUsd)
	if err != nil {
		return nil, err
	}

	out, err := DetermineRebalanceActions(inputs.Items, desired)
	if err != nil {
		return nil, err
	}

	logs := make([]string, 0, len(inputs.Warnings)+len(desired)+1+len(out.Logs))
	for _, w := range inputs.Warnings {
		logs = append(logs, "Warning: "+w)
	}
	logs = append(logs, fmt.Sprintf("Strategy %s: allocating $%.2f (%s %v)",
		input.Strategy.ID, allocationUsd, input.Allocation.Kind, input.Allocation.Value))
	for _, d := range desired {
		logs = append(logs, fmt.Sprintf("Desired %s: $%.2f (%.8f tokens at $%.6f)",
			d.Asset.Symbol, d.UsdValue, d.TokenValue(), d.Price.UsdRate))
	}
	out.Logs = append(logs, out.Logs...)
	return out, nil
}
