package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"portfolio_rebalancer/internal/app/port"
	"portfolio_rebalancer/internal/domain/entity"
	"portfolio_rebalancer/internal/infrastructure/configloader"
	"portfolio_rebalancer/internal/pkg/metrics"
	"portfolio_rebalancer/internal/pkg/utils"

	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/errgroup"
)

// priceServiceImpl implements port.PriceService.
type priceServiceImpl struct {
	registry         port.AssetRegistry
	feed             port.PriceFeedClient
	logger           port.Logger
	quotes           *cache.Cache // feed id -> entity.FeedQuote
	maxConcurrency   int
	maxIDsPerRequest int
}

// NewPriceService creates a price snapshot service over the given feed client.
func NewPriceService(
	registry port.AssetRegistry,
	feed port.PriceFeedClient,
	cfg configloader.PriceServiceConfig,
	maxIDsPerRequest int,
	l port.Logger,
) port.PriceService {
	ttl := time.Duration(cfg.CacheTTLSeconds) * time.Second
	s := &priceServiceImpl{
		registry:         registry,
		feed:             feed,
		logger:           l,
		quotes:           cache.New(ttl, 2*ttl),
		maxConcurrency:   cfg.MaxConcurrentRequests,
		maxIDsPerRequest: maxIDsPerRequest,
	}
	l.Info("PriceService initialized", "cacheTTL", ttl.String(), "maxConcurrency", s.maxConcurrency)
	return s
}

// Snapshot implements port.PriceService.
func (s *priceServiceImpl) Snapshot(ctx context.Context, network entity.Network) ([]entity.Price, []string, error) {
	assets := s.registry.ListAssets(network)
	var warnings []string

	var feedIDs []string
	seen := make(map[string]struct{}, len(assets))
	for _, a := range assets {
		if a.PriceFeedID == "" {
			warnings = append(warnings, fmt.Sprintf("asset %s on chain %s has no price feed id", a.Symbol, a.ChainID))
			continue
		}
		if _, ok := seen[a.PriceFeedID]; ok {
			continue
		}
		seen[a.PriceFeedID] = struct{}{}
		feedIDs = append(feedIDs, a.PriceFeedID)
	}

	quotes := make(map[string]entity.FeedQuote, len(feedIDs))
	var missing []string
	for _, id := range feedIDs {
		if cached, ok := s.quotes.Get(id); ok {
			quotes[id] = cached.(entity.FeedQuote)
			metrics.PriceCacheHitsTotal.Inc()
			continue
		}
		missing = append(missing, id)
	}

	if len(missing) > 0 {
		fetched, failed, firstErr := s.fetch(ctx, missing)
		for id, q := range fetched {
			quotes[id] = q
			s.quotes.Set(id, q, cache.DefaultExpiration)
		}
		if failed > 0 {
			warnings = append(warnings, fmt.Sprintf("%d price feed requests failed: %v", failed, firstErr))
		}
		if len(quotes) == 0 && firstErr != nil {
			return nil, warnings, fmt.Errorf("%w: price feed: %v", port.ErrUpstreamUnavailable, firstErr)
		}
	}

	prices := make([]entity.Price, 0, len(assets))
	emitted := make(map[string]struct{}, len(assets))
	for _, a := range assets {
		if a.PriceFeedID == "" {
			continue
		}
		q, ok := quotes[a.PriceFeedID]
		if !ok {
			warnings = append(warnings, fmt.Sprintf("no quote for %s (feed %s)", a.Symbol, a.PriceFeedID))
			continue
		}
		if q.UsdRate <= 0 {
			warnings = append(warnings, fmt.Sprintf("non-positive quote %v for %s (feed %s)", q.UsdRate, a.Symbol, a.PriceFeedID))
			continue
		}
		p := entity.Price{
			FeedID:       q.FeedID,
			PublishedAt:  q.PublishedAt,
			UsdRate:      q.UsdRate,
			TickerSymbol: a.Symbol,
			Canonical:    a.Canonical,
			ChainID:      a.ChainID,
		}
		if _, dup := emitted[p.Key()]; dup {
			continue
		}
		emitted[p.Key()] = struct{}{}
		prices = append(prices, p)
	}

	s.logger.Debug("Price snapshot built",
		"network", network,
		"prices", len(prices),
		"feeds", len(feedIDs),
		"fetched", len(missing),
		"warnings", len(warnings))
	return prices, warnings, nil
}

// fetch requests the given feed ids in bounded concurrent batches. A failed batch
// does not cancel the others.
func (s *priceServiceImpl) fetch(ctx context.Context, feedIDs []string) (map[string]entity.FeedQuote, int, error) {
	batches := utils.BatchStrings(feedIDs, s.maxIDsPerRequest)

	var (
		mu       sync.Mutex
		result   = make(map[string]entity.FeedQuote, len(feedIDs))
		failed   int
		firstErr error
	)

	var eg errgroup.Group
	if s.maxConcurrency > 0 {
		eg.SetLimit(s.maxConcurrency)
	}
	for _, batch := range batches {
		batch := batch
		eg.Go(func() error {
			quotes, err := s.feed.GetQuotes(ctx, batch)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				s.logger.Error("Failed to fetch quotes", "batchSize", len(batch), "error", err)
				failed++
				if firstErr == nil {
					firstErr = err
				}
				return nil
			}
			for id, q := range quotes {
				result[id] = q
			}
			return nil
		})
	}
	_ = eg.Wait()
	return result, failed, firstErr
}
