package rebalance

import (
	"strings"
	"time"

	"portfolio_rebalancer/internal/domain/entity"
)

var fixedPublishedAt = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func testAsset(chainID, symbol string, coinType entity.CoinType, address string) entity.Asset {
	canonical := symbol
	if i := strings.Index(symbol, "."); i > 0 {
		canonical = symbol[:i]
	}
	a := entity.Asset{
		ChainID:     chainID,
		Decimals:    18,
		Name:        symbol,
		Symbol:      symbol,
		Canonical:   canonical,
		CoinType:    coinType,
		PriceFeedID: strings.ToLower(canonical),
	}
	switch coinType {
	case entity.CoinTypeERC20:
		a.ExternalAddress = address
	case entity.CoinTypeZRC20:
		a.Zrc20Address = address
	}
	return a
}

func testPrice(a entity.Asset, rate float64) entity.Price {
	return entity.Price{
		FeedID:       a.PriceFeedID,
		PublishedAt:  fixedPublishedAt,
		UsdRate:      rate,
		TickerSymbol: a.Symbol,
		Canonical:    a.Canonical,
		ChainID:      a.ChainID,
	}
}

func testItem(a entity.Asset, amount, rate float64) entity.InputItem {
	return entity.InputItem{
		Asset: a,
		Price: testPrice(a, rate),
		Balance: entity.BalanceRecord{
			ChainID:         a.ChainID,
			CoinType:        a.CoinType,
			ContractAddress: a.ExternalAddress,
			Decimals:        a.Decimals,
			Symbol:          a.Symbol,
		},
		Amount:   amount,
		UsdValue: amount * rate,
	}
}

func testTarget(a entity.Asset, rate, usd float64) entity.DesiredUsdAllocation {
	return entity.DesiredUsdAllocation{Asset: a, Price: testPrice(a, rate), UsdValue: usd}
}

// Assets of the reference scenario.
var (
	usdcEth  = testAsset("1", "USDC.ETH", entity.CoinTypeERC20, "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48")
	usdcBase = testAsset("8453", "USDC.BASE", entity.CoinTypeERC20, "0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913")
	usdcPol  = testAsset("137", "USDC.POL", entity.CoinTypeERC20, "0x3c499c542cEF5E3811e1192ce70d8cC03d5c3359")
	ethEth   = testAsset("1", "ETH.ETH", entity.CoinTypeGas, "")
	solSol   = testAsset("900", "SOL.SOL", entity.CoinTypeGas, "")
	btcBtc   = testAsset("8332", "BTC.BTC", entity.CoinTypeGas, "")
	pepeEth  = testAsset("1", "PEPE.ETH", entity.CoinTypeERC20, "0x6982508145454Ce325dDbE47a25d4ec3d2311933")
)

func scenarioHoldings() []entity.InputItem {
	return []entity.InputItem{
		testItem(ethEth, 0.063, 1800),
		testItem(usdcPol, 100, 1),
		testItem(solSol, 0.5, 160),
		testItem(usdcEth, 50, 1),
		testItem(usdcBase, 50, 1),
	}
}

func scenarioTargets() []entity.DesiredUsdAllocation {
	return []entity.DesiredUsdAllocation{
		testTarget(btcBtc, 85000, 200),
		testTarget(usdcBase, 1, 100),
		testTarget(pepeEth, 0.01, 80),
	}
}

func sumByDestination(actions []entity.RebalanceAction) map[string]float64 {
	sums := make(map[string]float64)
	for _, a := range actions {
		sums[strings.ToUpper(a.To.Canonical)] += a.FromUsdValue
	}
	return sums
}
