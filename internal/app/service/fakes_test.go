package service

import (
	"context"
	"errors"
	"math/big"
	"sort"
	"sync"

	"portfolio_rebalancer/internal/app/port"
	"portfolio_rebalancer/internal/domain/entity"
)

type staticRegistry map[entity.Network][]entity.Asset

func (r staticRegistry) ListAssets(network entity.Network) []entity.Asset {
	out := make([]entity.Asset, len(r[network]))
	copy(out, r[network])
	return out
}

type fakeFeed struct {
	mu     sync.Mutex
	rates  map[string]float64
	fail   bool
	calls  int
	sawIDs []string
}

func (f *fakeFeed) GetQuotes(_ context.Context, ids []string) (map[string]entity.FeedQuote, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.sawIDs = append(f.sawIDs, ids...)
	sort.Strings(f.sawIDs)
	if f.fail {
		return nil, errors.New("feed down")
	}
	out := make(map[string]entity.FeedQuote, len(ids))
	for _, id := range ids {
		if r, ok := f.rates[id]; ok {
			out[id] = entity.FeedQuote{FeedID: id, UsdRate: r}
		}
	}
	return out, nil
}

var (
	assetEthGas = entity.Asset{ChainID: "1", Decimals: 18, Symbol: "ETH.ETH", Canonical: "ETH", CoinType: entity.CoinTypeGas, PriceFeedID: "ethereum", Zrc20Address: "0x00000000000000000000000000000000000000e1"}
	assetEthArb = entity.Asset{ChainID: "42161", Decimals: 18, Symbol: "ETH.ARB", Canonical: "ETH", CoinType: entity.CoinTypeGas, PriceFeedID: "ethereum"}
	assetUsdc   = entity.Asset{ChainID: "1", Decimals: 6, Symbol: "USDC.ETH", Canonical: "USDC", CoinType: entity.CoinTypeERC20, PriceFeedID: "usd-coin", ExternalAddress: "0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48"}
	assetBtc    = entity.Asset{ChainID: "8332", Decimals: 8, Symbol: "BTC.BTC", Canonical: "BTC", CoinType: entity.CoinTypeGas, PriceFeedID: "bitcoin", Zrc20Address: "0x00000000000000000000000000000000000000b1"}
	assetZeta   = entity.Asset{ChainID: "7000", Decimals: 18, Symbol: "ZETA", Canonical: "ZETA", CoinType: entity.CoinTypeGas, PriceFeedID: "zetachain"}
)

// fakeChain returns balances keyed by token address (ZeroAddress for native).
type fakeChain struct {
	chainID  string
	balances map[string]int64
	failing  map[string]bool
	down     bool
}

func (c *fakeChain) ChainID() string { return c.chainID }

func (c *fakeChain) GetBalances(_ context.Context, reqs []entity.BalanceRequestItem) ([]entity.BalanceResultItem, error) {
	if c.down {
		return nil, errors.New("rpc down")
	}
	out := make([]entity.BalanceResultItem, 0, len(reqs))
	for _, r := range reqs {
		res := entity.BalanceResultItem{RequestID: r.ID, Asset: r.Asset, TokenAddress: r.TokenAddress, CoinType: r.Asset.CoinType}
		if c.failing[r.TokenAddress] {
			res.Error = errors.New("execution reverted")
		} else {
			res.Balance = big.NewInt(c.balances[r.TokenAddress])
		}
		out = append(out, res)
	}
	return out, nil
}

type fakeClientProvider struct {
	chains  map[string]*fakeChain
	dialErr map[string]bool
}

func (p *fakeClientProvider) GetClient(chainID string) (port.BlockchainClient, bool, error) {
	if p.dialErr[chainID] {
		return nil, true, errors.New("dial failed")
	}
	c, ok := p.chains[chainID]
	if !ok {
		return nil, false, nil
	}
	return c, true, nil
}

func (p *fakeClientProvider) ChainIDs() []string {
	ids := make([]string, 0, len(p.chains))
	for id := range p.chains {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (p *fakeClientProvider) Close() {}

type fakeBalances struct {
	records []entity.BalanceRecord
	errs    []entity.BalanceError
	err     error
	calls   int
}

func (f *fakeBalances) FetchBalances(_ context.Context, _ entity.Network, _ string) ([]entity.BalanceRecord, []entity.BalanceError, error) {
	f.calls++
	return f.records, f.errs, f.err
}

type fakePrices struct {
	prices   []entity.Price
	warnings []string
	err      error
	calls    int
}

func (f *fakePrices) Snapshot(_ context.Context, _ entity.Network) ([]entity.Price, []string, error) {
	f.calls++
	return f.prices, f.warnings, f.err
}
