package httpclient

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"portfolio_rebalancer/internal/app/port"
	"portfolio_rebalancer/internal/domain/entity"
	"portfolio_rebalancer/internal/pkg/metrics"

	jsoniter "github.com/json-iterator/go"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const apiKeyHeader = "x-cg-demo-api-key"

// Options configures a CoinGecko client.
type Options struct {
	BaseURL           string
	APIKey            string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
	MaxIDsPerRequest  int
}

// simplePriceEntry is one coin of a /simple/price response.
type simplePriceEntry struct {
	USD           *float64 `json:"usd"`
	LastUpdatedAt int64    `json:"last_updated_at"`
}

// coinGeckoClient implements port.PriceFeedClient over the CoinGecko simple price API.
type coinGeckoClient struct {
	client           *fasthttp.Client
	baseURL          string
	apiKey           string
	timeout          time.Duration
	limiter          *rate.Limiter
	maxIDsPerRequest int
	logger           *zap.Logger
}

// NewCoinGeckoClient creates a new CoinGecko price feed client.
func NewCoinGeckoClient(opts Options, logger *zap.Logger) port.PriceFeedClient {
	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}
	burst := opts.Burst
	if burst <= 0 {
		burst = 1
	}
	return &coinGeckoClient{
		client:           &fasthttp.Client{},
		baseURL:          strings.TrimRight(opts.BaseURL, "/"),
		apiKey:           opts.APIKey,
		timeout:          opts.Timeout,
		limiter:          rate.NewLimiter(limit, burst),
		maxIDsPerRequest: opts.MaxIDsPerRequest,
		logger:           logger.Named("CoinGeckoClient"),
	}
}

// GetQuotes implements port.PriceFeedClient. Feed ids without a usd quote are omitted from the result.
func (c *coinGeckoClient) GetQuotes(ctx context.Context, feedIDs []string) (map[string]entity.FeedQuote, error) {
	if len(feedIDs) == 0 {
		return nil, fmt.Errorf("feedIDs cannot be empty")
	}
	if c.maxIDsPerRequest > 0 && len(feedIDs) > c.maxIDsPerRequest {
		c.logger.Warn("Number of feed ids exceeds maxIDsPerRequest",
			zap.Int("requestedCount", len(feedIDs)),
			zap.Int("maxAllowed", c.maxIDsPerRequest))
		return nil, fmt.Errorf("number of feed ids (%d) exceeds max ids per request (%d)", len(feedIDs), c.maxIDsPerRequest)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait: %w", err)
	}

	requestURL := fmt.Sprintf("%s/simple/price?ids=%s&vs_currencies=usd&include_last_updated_at=true",
		c.baseURL, url.QueryEscape(strings.Join(feedIDs, ",")))
	c.logger.Debug("Requesting quotes from CoinGecko", zap.String("url", requestURL), zap.Int("ids", len(feedIDs)))

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	req.SetRequestURI(requestURL)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set(apiKeyHeader, c.apiKey)
	}

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	start := time.Now()
	var err error
	if deadline, ok := ctx.Deadline(); ok {
		err = c.client.DoDeadline(req, resp, deadline)
	} else {
		err = c.client.DoTimeout(req, resp, c.timeout)
	}
	metrics.PriceFeedRequestDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.PriceFeedRequestsTotal.WithLabelValues("error").Inc()
		c.logger.Error("Failed to execute request to CoinGecko", zap.String("url", requestURL), zap.Error(err))
		return nil, fmt.Errorf("failed to execute request to %s: %w", requestURL, err)
	}

	rawBody := resp.Body()
	if resp.StatusCode() != fasthttp.StatusOK {
		metrics.PriceFeedRequestsTotal.WithLabelValues("http_" + fmt.Sprint(resp.StatusCode())).Inc()
		c.logger.Error("CoinGecko API request failed",
			zap.String("url", requestURL),
			zap.Int("statusCode", resp.StatusCode()),
			zap.ByteString("responseBody", rawBody))
		return nil, fmt.Errorf("CoinGecko API request to %s failed with status %d: %s", requestURL, resp.StatusCode(), string(rawBody))
	}

	var payload map[string]simplePriceEntry
	if err := json.Unmarshal(rawBody, &payload); err != nil {
		metrics.PriceFeedRequestsTotal.WithLabelValues("decode_error").Inc()
		c.logger.Error("Failed to unmarshal CoinGecko response",
			zap.String("url", requestURL),
			zap.ByteString("responseBody", rawBody),
			zap.Error(err))
		return nil, fmt.Errorf("failed to unmarshal CoinGecko response from %s: %w", requestURL, err)
	}
	metrics.PriceFeedRequestsTotal.WithLabelValues("ok").Inc()

	quotes := make(map[string]entity.FeedQuote, len(payload))
	for _, id := range feedIDs {
		entry, ok := payload[id]
		if !ok || entry.USD == nil {
			c.logger.Debug("CoinGecko returned no usd quote", zap.String("feedId", id))
			continue
		}
		publishedAt := time.Now().UTC()
		if entry.LastUpdatedAt > 0 {
			publishedAt = time.Unix(entry.LastUpdatedAt, 0).UTC()
		}
		quotes[id] = entity.FeedQuote{FeedID: id, UsdRate: *entry.USD, PublishedAt: publishedAt}
	}

	c.logger.Debug("Received quotes from CoinGecko",
		zap.Int("requested", len(feedIDs)),
		zap.Int("returned", len(quotes)))
	return quotes, nil
}
