// Package rebalance turns multi-chain holdings, a price snapshot and a target strategy
// into a list of swap actions. Everything here is pure: no I/O, no shared state.
package rebalance

import (
	"fmt"
	"sort"
	"strings"

	"portfolio_rebalancer/internal/domain/entity"

	"github.com/shopspring/decimal"
)

// InputResult is the output of BuildInputItems.
type InputResult struct {
	Items    []entity.InputItem
	Warnings []string
}

// assetIndex resolves balances to registry assets.
type assetIndex struct {
	byCanonical map[string]entity.Asset // chainId:canonical
	byZrc20     map[string]entity.Asset // chainId:zrc20Address
	byExternal  map[string]entity.Asset // chainId:externalAddress or chainId:gas
}

func newAssetIndex(assets []entity.Asset) assetIndex {
	idx := assetIndex{
		byCanonical: make(map[string]entity.Asset, len(assets)),
		byZrc20:     make(map[string]entity.Asset, len(assets)),
		byExternal:  make(map[string]entity.Asset, len(assets)),
	}
	for _, a := range assets {
		idx.byCanonical[a.Key()] = a
		if a.Zrc20Address != "" {
			idx.byZrc20[entity.ChainKey(a.ChainID, a.Zrc20Address)] = a
		}
		switch a.CoinType {
		case entity.CoinTypeGas:
			idx.byExternal[entity.ChainKey(a.ChainID, entity.GasKey)] = a
		case entity.CoinTypeERC20:
			if a.ExternalAddress != "" {
				idx.byExternal[entity.ChainKey(a.ChainID, a.ExternalAddress)] = a
			}
		}
	}
	return idx
}

func (idx assetIndex) resolve(b entity.BalanceRecord) (entity.Asset, bool) {
	key := b.LookupKey()
	if a, ok := idx.byZrc20[key]; ok {
		return a, true
	}
	if a, ok := idx.byExternal[key]; ok {
		return a, true
	}
	a, ok := idx.byCanonical[entity.ChainKey(b.ChainID, canonicalFromSymbol(b.Symbol))]
	return a, ok
}

// canonicalFromSymbol strips the chain qualifier: USDC.ETH -> USDC.
func canonicalFromSymbol(symbol string) string {
	symbol = strings.TrimSpace(symbol)
	if i := strings.Index(symbol, "."); i > 0 {
		return symbol[:i]
	}
	return symbol
}

// BuildInputItems joins raw balances against the registry and the price snapshot.
// Balances with no registry asset, or with an unparseable amount, are dropped with a warning.
// A resolved asset without a usable price is fatal.
// Items are ordered by descending USD value; ties keep input order.
func BuildInputItems(assets []entity.Asset, prices []entity.Price, balances []entity.BalanceRecord) (*InputResult, error) {
	idx := newAssetIndex(assets)

	priceIndex := make(map[string]entity.Price, len(prices))
	for _, p := range prices {
		priceIndex[p.Key()] = p
	}

	result := &InputResult{Items: make([]entity.InputItem, 0, len(balances))}
	positions := make(map[string]int, len(balances))

	for _, b := range balances {
		asset, ok := idx.resolve(b)
		if !ok {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("skipping balance %s on chain %s: no matching supported asset (key %s)", b.Symbol, b.ChainID, b.LookupKey()))
			continue
		}

		amount, err := parseBalance(b.Balance)
		if err != nil {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("skipping balance %s on chain %s: %v", asset.Symbol, b.ChainID, err))
			continue
		}

		price, ok := priceIndex[asset.Key()]
		if !ok {
			return nil, entity.NewPriceNotFoundError(asset.ChainID, asset.Canonical)
		}
		if price.UsdRate <= 0 {
			return nil, entity.NewInvalidInputError(
				fmt.Sprintf("price for %s on chain %s must be positive, got %v", asset.Canonical, asset.ChainID, price.UsdRate))
		}

		item := entity.InputItem{
			Asset:   asset,
			Price:   price,
			Balance: b,
			Amount:  amount,
		}
		if amount > 0 {
			item.UsdValue = amount * price.UsdRate
		}

		if pos, dup := positions[asset.Key()]; dup {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("duplicate balance for %s on chain %s, keeping the later record", asset.Symbol, asset.ChainID))
			result.Items[pos] = item
			continue
		}
		positions[asset.Key()] = len(result.Items)
		result.Items = append(result.Items, item)
	}

	sort.SliceStable(result.Items, func(i, j int) bool {
		return result.Items[i].UsdValue > result.Items[j].UsdValue
	})
	return result, nil
}

func parseBalance(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fmt.Errorf("empty balance")
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid balance %q: %w", raw, err)
	}
	if d.IsNegative() {
		return 0, fmt.Errorf("negative balance %q", raw)
	}
	f, _ := d.Float64()
	return f, nil
}

// TotalUsdValue sums the USD value of the items.
func TotalUsdValue(items []entity.InputItem) float64 {
	var total float64
	for _, it := range items {
		total += it.UsdValue
	}
	return total
}
