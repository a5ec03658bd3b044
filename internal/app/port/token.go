package port

import (
	"context"

	"portfolio_rebalancer/internal/domain/entity"
)

// AssetRegistry lists supported assets per network.
type AssetRegistry interface {
	ListAssets(network entity.Network) []entity.Asset
}

// PriceFeedClient fetches raw USD quotes by feed id.
type PriceFeedClient interface {
	GetQuotes(ctx context.Context, feedIDs []string) (map[string]entity.FeedQuote, error)
}

// PriceService builds a price snapshot covering every asset of a network.
type PriceService interface {
	// Snapshot returns one Price per asset with a quote, plus warnings for assets without one.
	Snapshot(ctx context.Context, network entity.Network) ([]entity.Price, []string, error)
}
