package service

import (
	"context"
	"errors"
	"testing"

	"portfolio_rebalancer/internal/app/port"
	"portfolio_rebalancer/internal/domain/entity"
	"portfolio_rebalancer/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const wallet = "0x1111111111111111111111111111111111111111"

func balanceRegistry() staticRegistry {
	return staticRegistry{entity.Mainnet: {assetEthGas, assetUsdc, assetBtc, assetZeta}}
}

func TestFetchBalances(t *testing.T) {
	cp := &fakeClientProvider{chains: map[string]*fakeChain{
		"1": {chainID: "1", balances: map[string]int64{
			entity.ZeroAddress:        500000000000000000, // 0.5 ETH
			assetUsdc.ExternalAddress: 0,
		}},
		"7000": {chainID: "7000", balances: map[string]int64{
			assetEthGas.Zrc20Address: 250000000000000000, // 0.25 ETH as ZRC20
			assetBtc.Zrc20Address:    1500000,            // 0.015 BTC as ZRC20
			entity.ZeroAddress:       2000000000000000000,
		}},
	}}
	svc := NewBalanceService(balanceRegistry(), cp, logger.NewSlogAdapter(), 2)

	records, balanceErrs, err := svc.FetchBalances(context.Background(), entity.Mainnet, wallet)
	require.NoError(t, err)
	assert.Empty(t, balanceErrs)

	require.Len(t, records, 3)

	eth := records[0]
	assert.Equal(t, "1", eth.ChainID)
	assert.Equal(t, entity.CoinTypeGas, eth.CoinType)
	assert.Equal(t, "0.75", eth.Balance)

	btc := records[1]
	assert.Equal(t, "8332", btc.ChainID)
	assert.Equal(t, entity.CoinTypeZRC20, btc.CoinType)
	assert.Equal(t, assetBtc.Zrc20Address, btc.ContractAddress)
	assert.Equal(t, "0.015", btc.Balance)

	zeta := records[2]
	assert.Equal(t, "7000", zeta.ChainID)
	assert.Equal(t, "2", zeta.Balance)
}

func TestFetchBalances_CollectsPerChainFailures(t *testing.T) {
	eth := &fakeChain{
		chainID:  "1",
		balances: map[string]int64{entity.ZeroAddress: 1000000000000000000},
		failing:  map[string]bool{assetUsdc.ExternalAddress: true},
	}
	zeta := &fakeChain{chainID: "7000", down: true}
	cp := &fakeClientProvider{chains: map[string]*fakeChain{"1": eth, "7000": zeta}}
	svc := NewBalanceService(balanceRegistry(), cp, logger.NewSlogAdapter(), 2)

	records, balanceErrs, err := svc.FetchBalances(context.Background(), entity.Mainnet, wallet)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "1", records[0].Balance)

	require.Len(t, balanceErrs, 2)
	var chains []string
	for _, e := range balanceErrs {
		chains = append(chains, e.ChainID)
	}
	assert.ElementsMatch(t, []string{"1", "7000"}, chains)
}

func TestFetchBalances_AllChainsDown(t *testing.T) {
	cp := &fakeClientProvider{
		chains:  map[string]*fakeChain{"1": {chainID: "1", down: true}},
		dialErr: map[string]bool{"7000": true},
	}
	svc := NewBalanceService(balanceRegistry(), cp, logger.NewSlogAdapter(), 1)

	_, balanceErrs, err := svc.FetchBalances(context.Background(), entity.Mainnet, wallet)
	require.Error(t, err)
	assert.True(t, errors.Is(err, port.ErrUpstreamUnavailable))
	assert.Len(t, balanceErrs, 2)
}

func TestFetchBalances_InvalidWallet(t *testing.T) {
	svc := NewBalanceService(balanceRegistry(), &fakeClientProvider{}, logger.NewSlogAdapter(), 1)

	for _, w := range []string{"", "1111111111111111111111111111111111111111", "0x1234", "0xZZ11111111111111111111111111111111111111"} {
		_, _, err := svc.FetchBalances(context.Background(), entity.Mainnet, w)
		assert.True(t, errors.Is(err, entity.ErrInvalidInput), "wallet %q", w)
	}
}
