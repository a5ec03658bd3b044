package service

import (
	"context"
	"fmt"
	"time"

	"portfolio_rebalancer/internal/app/port"
	"portfolio_rebalancer/internal/domain/entity"
	"portfolio_rebalancer/internal/domain/rebalance"
	"portfolio_rebalancer/internal/infrastructure/configloader"
	"portfolio_rebalancer/internal/pkg/metrics"

	"github.com/patrickmn/go-cache"
)

// rebalanceServiceImpl implements port.RebalanceService.
type rebalanceServiceImpl struct {
	registry       port.AssetRegistry
	strategies     port.StrategyCatalog
	prices         port.PriceService
	balances       port.BalanceService
	history        *cache.Cache // output id -> *entity.RebalanceOutput
	defaultNetwork entity.Network
	logger         port.Logger
}

// NewRebalanceService wires the pure pipeline to catalogs, live data and the history store.
// prices and balances may be nil when callers always supply portfolio and prices.
func NewRebalanceService(
	registry port.AssetRegistry,
	strategies port.StrategyCatalog,
	prices port.PriceService,
	balances port.BalanceService,
	defaultNetwork entity.Network,
	cfg configloader.HistoryConfig,
	l port.Logger,
) port.RebalanceService {
	return &rebalanceServiceImpl{
		registry:       registry,
		strategies:     strategies,
		prices:         prices,
		balances:       balances,
		history:        cache.New(time.Duration(cfg.TTLMinutes)*time.Minute, time.Duration(cfg.CleanupMinutes)*time.Minute),
		defaultNetwork: defaultNetwork,
		logger:         l,
	}
}

// Rebalance implements port.RebalanceService.
func (s *rebalanceServiceImpl) Rebalance(ctx context.Context, req port.RebalanceRequest) (*entity.RebalanceOutput, error) {
	start := time.Now()
	out, err := s.rebalance(ctx, req)
	metrics.RebalanceDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		outcome := "error"
		if kind, ok := entity.KindOf(err); ok {
			outcome = string(kind)
		}
		metrics.RebalanceRequestsTotal.WithLabelValues(req.StrategyID, outcome).Inc()
		s.logger.Warn("Rebalance failed", "strategy", req.StrategyID, "network", req.Network, "error", err)
		return nil, err
	}

	outcome := "valid"
	if !out.Valid {
		outcome = "invalid"
	}
	metrics.RebalanceRequestsTotal.WithLabelValues(req.StrategyID, outcome).Inc()
	metrics.RebalanceActions.Observe(float64(len(out.Actions)))

	s.history.Set(out.ID, out, cache.DefaultExpiration)
	s.logger.Info("Rebalance computed",
		"id", out.ID,
		"strategy", req.StrategyID,
		"network", req.Network,
		"valid", out.Valid,
		"actions", len(out.Actions))
	return out, nil
}

func (s *rebalanceServiceImpl) rebalance(ctx context.Context, req port.RebalanceRequest) (*entity.RebalanceOutput, error) {
	network := s.defaultNetwork
	if req.Network != "" {
		parsed, err := entity.ParseNetwork(string(req.Network))
		if err != nil {
			return nil, entity.NewInvalidInputError(err.Error())
		}
		network = parsed
	}

	strategy, err := s.strategies.GetStrategy(req.StrategyID)
	if err != nil {
		return nil, err
	}
	if !strategy.EnabledOn(network) {
		return nil, entity.NewStrategyNotFoundError(req.StrategyID)
	}

	var notes []string

	portfolio := req.Portfolio
	if portfolio == nil {
		if req.WalletAddress == "" {
			return nil, entity.NewInvalidInputError("either portfolio or wallet must be provided")
		}
		if s.balances == nil {
			return nil, entity.NewInvalidInputError("live balances are not available, portfolio must be provided")
		}
		records, balanceErrs, err := s.balances.FetchBalances(ctx, network, req.WalletAddress)
		if err != nil {
			return nil, err
		}
		for _, be := range balanceErrs {
			notes = append(notes, fmt.Sprintf("Balance read failed on chain %s %s: %s", be.ChainID, be.TokenSymbol, be.Message))
		}
		portfolio = records
	}

	prices := req.Prices
	if len(prices) == 0 {
		if s.prices == nil {
			return nil, entity.NewInvalidInputError("live prices are not available, prices must be provided")
		}
		snapshot, warnings, err := s.prices.Snapshot(ctx, network)
		if err != nil {
			return nil, err
		}
		for _, w := range warnings {
			notes = append(notes, "Price snapshot: "+w)
		}
		prices = snapshot
	}

	out, err := rebalance.Rebalance(entity.RebalanceInput{
		Portfolio:       portfolio,
		Prices:          prices,
		SupportedAssets: s.registry.ListAssets(network),
		Strategy:        strategy,
		Allocation:      req.Allocation,
	})
	if err != nil {
		return nil, err
	}
	if len(notes) > 0 {
		out.Logs = append(notes, out.Logs...)
	}
	return out, nil
}

// Get implements port.RebalanceService.
func (s *rebalanceServiceImpl) Get(id string) (*entity.RebalanceOutput, bool) {
	v, ok := s.history.Get(id)
	if !ok {
		return nil, false
	}
	return v.(*entity.RebalanceOutput), true
}
