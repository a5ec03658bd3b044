package entity

import "time"

// Price is a USD quote for one canonical asset on one chain.
type Price struct {
	FeedID       string    `json:"feedId"`
	PublishedAt  time.Time `json:"publishedAt"`
	UsdRate      float64   `json:"usdRate"`
	TickerSymbol string    `json:"tickerSymbol"`
	Canonical    string    `json:"canonical"`
	ChainID      string    `json:"chainId"`
}

// Key returns the chainId:canonical identity the quote applies to.
func (p Price) Key() string {
	return ChainKey(p.ChainID, p.Canonical)
}

// FeedQuote is a raw quote returned by a price feed for one feed id.
type FeedQuote struct {
	FeedID      string
	UsdRate     float64
	PublishedAt time.Time
}
