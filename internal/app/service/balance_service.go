package service

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"portfolio_rebalancer/internal/app/port"
	"portfolio_rebalancer/internal/app/provider"
	"portfolio_rebalancer/internal/domain/entity"
	"portfolio_rebalancer/internal/pkg/metrics"
	"portfolio_rebalancer/internal/pkg/utils"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/sync/errgroup"
)

// balanceSource tells where a holding was read from.
type balanceSource int

const (
	sourceOrigin balanceSource = iota
	sourceZrc20
)

type pendingRead struct {
	asset  entity.Asset
	source balanceSource
}

// holding accumulates the raw balance of one asset across its representations.
type holding struct {
	raw        *big.Int
	fromOrigin bool
	fromZrc20  bool
}

// balanceServiceImpl implements port.BalanceService.
type balanceServiceImpl struct {
	registry       port.AssetRegistry
	clientProvider port.BlockchainClientProvider
	logger         port.Logger
	maxConcurrency int
}

// NewBalanceService creates a new wallet balance service.
func NewBalanceService(
	registry port.AssetRegistry,
	cp port.BlockchainClientProvider,
	l port.Logger,
	maxRoutines int,
) port.BalanceService {
	if maxRoutines <= 0 {
		maxRoutines = 1
	}
	return &balanceServiceImpl{
		registry:       registry,
		clientProvider: cp,
		logger:         l,
		maxConcurrency: maxRoutines,
	}
}

// ValidateWalletAddress checks for a 0x-prefixed 20-byte hex address.
func ValidateWalletAddress(wallet string) error {
	if !strings.HasPrefix(wallet, "0x") || !common.IsHexAddress(wallet) {
		return entity.NewInvalidInputError(fmt.Sprintf("invalid wallet address %q", wallet))
	}
	return nil
}

// FetchBalances implements port.BalanceService.
//
// Every supported asset is read on its own chain (native balance or ERC20 balanceOf) and,
// when it has a ZRC20 representation, on the settlement chain as well. Both reads of the
// same asset are summed into one record keyed by the asset's chain. Zero balances are omitted.
func (s *balanceServiceImpl) FetchBalances(ctx context.Context, network entity.Network, wallet string) ([]entity.BalanceRecord, []entity.BalanceError, error) {
	if err := ValidateWalletAddress(wallet); err != nil {
		return nil, nil, err
	}

	assets := s.registry.ListAssets(network)
	settlementChain := provider.SettlementGasAsset(network).ChainID

	requests := make(map[string][]entity.BalanceRequestItem)
	reads := make(map[string]pendingRead)
	var chainOrder []string
	addRead := func(chainID string, item entity.BalanceRequestItem, source balanceSource) {
		if _, ok := requests[chainID]; !ok {
			chainOrder = append(chainOrder, chainID)
		}
		item.ID = fmt.Sprintf("%s|%d|%s", chainID, source, item.Asset.Key())
		item.WalletAddress = wallet
		requests[chainID] = append(requests[chainID], item)
		reads[item.ID] = pendingRead{asset: item.Asset, source: source}
	}

	for _, a := range assets {
		switch a.CoinType {
		case entity.CoinTypeGas:
			addRead(a.ChainID, entity.BalanceRequestItem{Type: entity.NativeBalanceRequest, TokenAddress: entity.ZeroAddress, Asset: a}, sourceOrigin)
		case entity.CoinTypeERC20:
			if a.ExternalAddress != "" {
				addRead(a.ChainID, entity.BalanceRequestItem{Type: entity.TokenBalanceRequest, TokenAddress: a.ExternalAddress, Asset: a}, sourceOrigin)
			}
		}
		if a.Zrc20Address != "" {
			addRead(settlementChain, entity.BalanceRequestItem{Type: entity.TokenBalanceRequest, TokenAddress: a.Zrc20Address, Asset: a}, sourceZrc20)
		}
	}

	var (
		mu           sync.Mutex
		holdings     = make(map[string]*holding, len(assets))
		balanceErrs  []entity.BalanceError
		attempted    int
		failedChains int
	)
	recordErr := func(e entity.BalanceError) {
		mu.Lock()
		balanceErrs = append(balanceErrs, e)
		mu.Unlock()
	}

	var eg errgroup.Group
	eg.SetLimit(s.maxConcurrency)
	for _, chainID := range chainOrder {
		chainID := chainID
		client, ok, err := s.clientProvider.GetClient(chainID)
		if !ok {
			s.logger.Debug("No RPC endpoint for chain, skipping its balances", "chainId", chainID, "reads", len(requests[chainID]))
			continue
		}
		attempted++
		if err != nil {
			metrics.BalanceReadsTotal.WithLabelValues(chainID, "error").Inc()
			mu.Lock()
			failedChains++
			mu.Unlock()
			recordErr(entity.BalanceError{ChainID: chainID, Message: err.Error()})
			continue
		}

		batch := requests[chainID]
		eg.Go(func() error {
			results, err := client.GetBalances(ctx, batch)
			if err != nil {
				s.logger.Error("Failed to read balances", "chainId", chainID, "error", err)
				metrics.BalanceReadsTotal.WithLabelValues(chainID, "error").Inc()
				mu.Lock()
				failedChains++
				mu.Unlock()
				recordErr(entity.BalanceError{ChainID: chainID, Message: err.Error()})
				return nil
			}
			metrics.BalanceReadsTotal.WithLabelValues(chainID, "ok").Inc()

			mu.Lock()
			defer mu.Unlock()
			for _, r := range results {
				read, known := reads[r.RequestID]
				if !known {
					continue
				}
				if r.Error != nil {
					balanceErrs = append(balanceErrs, entity.BalanceError{
						ChainID:      chainID,
						TokenSymbol:  read.asset.Symbol,
						TokenAddress: r.TokenAddress,
						Message:      r.Error.Error(),
					})
					continue
				}
				if r.Balance == nil || r.Balance.Sign() <= 0 {
					continue
				}
				h, ok := holdings[read.asset.Key()]
				if !ok {
					h = &holding{raw: new(big.Int)}
					holdings[read.asset.Key()] = h
				}
				h.raw.Add(h.raw, r.Balance)
				if read.source == sourceZrc20 {
					h.fromZrc20 = true
				} else {
					h.fromOrigin = true
				}
			}
			return nil
		})
	}
	_ = eg.Wait()

	records := make([]entity.BalanceRecord, 0, len(holdings))
	for _, a := range assets {
		h, ok := holdings[a.Key()]
		if !ok {
			continue
		}
		records = append(records, newBalanceRecord(a, h))
	}

	s.logger.Info("Wallet balances fetched",
		"network", network,
		"wallet", wallet,
		"records", len(records),
		"errors", len(balanceErrs),
		"chains", attempted)

	if attempted > 0 && failedChains == attempted {
		return records, balanceErrs, fmt.Errorf("%w: balance reads failed on every chain", port.ErrUpstreamUnavailable)
	}
	return records, balanceErrs, nil
}

// newBalanceRecord reports a holding in its origin representation when it was read there,
// otherwise as the ZRC20 token on the settlement chain, keyed by the asset's chain.
func newBalanceRecord(a entity.Asset, h *holding) entity.BalanceRecord {
	rec := entity.BalanceRecord{
		ChainID:  a.ChainID,
		Decimals: a.Decimals,
		Symbol:   a.Symbol,
		Balance:  utils.FormatBigInt(h.raw, a.Decimals),
	}
	if h.fromOrigin || a.Zrc20Address == "" {
		rec.CoinType = a.CoinType
		if a.CoinType == entity.CoinTypeERC20 {
			rec.ContractAddress = a.ExternalAddress
		}
		return rec
	}
	rec.CoinType = entity.CoinTypeZRC20
	rec.ContractAddress = a.Zrc20Address
	return rec
}
