package restapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"portfolio_rebalancer/internal/app/port"
	"portfolio_rebalancer/internal/app/provider"
	"portfolio_rebalancer/internal/domain/entity"
	"portfolio_rebalancer/internal/infrastructure/assetloader"
	"portfolio_rebalancer/internal/infrastructure/strategyloader"
	"portfolio_rebalancer/internal/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubPrices struct {
	prices []entity.Price
	err    error
}

func (s stubPrices) Snapshot(context.Context, entity.Network) ([]entity.Price, []string, error) {
	return s.prices, []string{"no quote for ZETA"}, s.err
}

type stubBalances struct {
	records []entity.BalanceRecord
	errs    []entity.BalanceError
}

func (s stubBalances) FetchBalances(_ context.Context, _ entity.Network, wallet string) ([]entity.BalanceRecord, []entity.BalanceError, error) {
	if !strings.HasPrefix(wallet, "0x") {
		return nil, nil, entity.NewInvalidInputError("invalid wallet address")
	}
	return s.records, s.errs, nil
}

type stubRebalancer struct {
	out  *entity.RebalanceOutput
	err  error
	last port.RebalanceRequest
}

func (s *stubRebalancer) Rebalance(_ context.Context, req port.RebalanceRequest) (*entity.RebalanceOutput, error) {
	s.last = req
	return s.out, s.err
}

func (s *stubRebalancer) Get(id string) (*entity.RebalanceOutput, bool) {
	if s.out != nil && s.out.ID == id {
		return s.out, true
	}
	return nil, false
}

func newTestRouter(t *testing.T, prices port.PriceService, rebalancer port.RebalanceService) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	catalogs, err := assetloader.NewAssetLoader("", nil, nil).LoadCatalogs()
	require.NoError(t, err)
	registry, err := provider.NewAssetRegistry(catalogs, logger.NewSlogAdapter())
	require.NoError(t, err)
	strategies, err := strategyloader.Load("")
	require.NoError(t, err)
	catalog, err := provider.NewStrategyCatalog(strategies, logger.NewSlogAdapter())
	require.NoError(t, err)

	balances := stubBalances{
		records: []entity.BalanceRecord{{ChainID: "1", CoinType: entity.CoinTypeGas, Decimals: 18, Symbol: "ETH.ETH", Balance: "1.5"}},
		errs:    []entity.BalanceError{{ChainID: "56", Message: "timeout"}},
	}
	return SetupRouter(Handlers{
		Catalog:   NewCatalogHandler(registry, catalog, entity.Mainnet),
		Portfolio: NewPortfolioHandler(prices, balances, entity.Mainnet),
		Rebalance: NewRebalanceHandler(rebalancer),
	}, []string{"*"}, zap.NewNop())
}

func do(router *gin.Engine, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func TestCatalogRoutes(t *testing.T) {
	router := newTestRouter(t, stubPrices{}, &stubRebalancer{})

	rec := do(router, http.MethodGet, "/api/v1/assets?network=testnet", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var assets struct {
		Data []entity.Asset `json:"data"`
	}
	decode(t, rec, &assets)
	require.NotEmpty(t, assets.Data)
	assert.Equal(t, provider.ZetaTestnetChainID, assets.Data[len(assets.Data)-1].ChainID)

	rec = do(router, http.MethodGet, "/api/v1/strategies", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var strategies struct {
		Data []entity.Strategy `json:"data"`
	}
	decode(t, rec, &strategies)
	require.NotEmpty(t, strategies.Data)

	rec = do(router, http.MethodGet, "/api/v1/strategies/"+strategies.Data[0].ID, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(router, http.MethodGet, "/api/v1/strategies/does-not-exist", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	var apiErr APIError
	decode(t, rec, &apiErr)
	assert.Equal(t, string(entity.KindStrategyNotFound), apiErr.Error.Kind)

	rec = do(router, http.MethodGet, "/api/v1/assets?network=devnet", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPortfolioRoutes(t *testing.T) {
	prices := stubPrices{prices: []entity.Price{{FeedID: "ethereum", UsdRate: 3000, Canonical: "ETH", ChainID: "1"}}}
	router := newTestRouter(t, prices, &stubRebalancer{})

	rec := do(router, http.MethodGet, "/api/v1/prices", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp APIResponse
	decode(t, rec, &resp)
	assert.Equal(t, []string{"no quote for ZETA"}, resp.Warnings)

	rec = do(router, http.MethodGet, "/api/v1/balances/0x1111111111111111111111111111111111111111", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var balances struct {
		Data          []entity.BalanceRecord `json:"data"`
		ServiceErrors []entity.BalanceError  `json:"service_errors"`
	}
	decode(t, rec, &balances)
	assert.Len(t, balances.Data, 1)
	assert.Len(t, balances.ServiceErrors, 1)

	rec = do(router, http.MethodGet, "/api/v1/balances/nothex", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	down := newTestRouter(t, stubPrices{err: port.ErrUpstreamUnavailable}, &stubRebalancer{})
	rec = do(down, http.MethodGet, "/api/v1/prices", "")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestRebalanceRoutes(t *testing.T) {
	out := &entity.RebalanceOutput{Valid: true, ID: "abc", CreatedAt: time.Now().UTC(), Actions: []entity.RebalanceAction{}, Logs: []string{}}
	rebalancer := &stubRebalancer{out: out}
	router := newTestRouter(t, stubPrices{}, rebalancer)

	rec := do(router, http.MethodPost, "/api/v1/rebalance",
		`{"network":"mainnet","strategyId":"balanced","allocation":{"kind":"percentage","value":25},"wallet":"0x1111111111111111111111111111111111111111"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "balanced", rebalancer.last.StrategyID)
	assert.Equal(t, entity.AllocationPercentage, rebalancer.last.Allocation.Kind)
	assert.Equal(t, 25.0, rebalancer.last.Allocation.Value)
	assert.Equal(t, "0x1111111111111111111111111111111111111111", rebalancer.last.WalletAddress)

	rec = do(router, http.MethodGet, "/api/v1/rebalance/abc", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = do(router, http.MethodGet, "/api/v1/rebalance/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(router, http.MethodPost, "/api/v1/rebalance", `{"strategyId":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = do(router, http.MethodPost, "/api/v1/rebalance", `{"allocation":{"kind":"usd","value":10}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStatusMapping(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{entity.NewStrategyNotFoundError("x"), http.StatusNotFound},
		{entity.NewAssetNotFoundError("X"), http.StatusUnprocessableEntity},
		{entity.NewPriceNotFoundError("1", "X"), http.StatusUnprocessableEntity},
		{entity.NewInvalidAllocationError("bad"), http.StatusBadRequest},
		{entity.NewAllocationExceedsPortfolioError(10, 5), http.StatusBadRequest},
		{entity.NewEmptyPortfolioError(), http.StatusBadRequest},
		{entity.NewInvalidInputError("bad"), http.StatusBadRequest},
		{port.ErrUpstreamUnavailable, http.StatusBadGateway},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}

	rebalancer := &stubRebalancer{err: entity.NewPriceNotFoundError("1", "PEPE")}
	router := newTestRouter(t, stubPrices{}, rebalancer)
	rec := do(router, http.MethodPost, "/api/v1/rebalance", `{"strategyId":"balanced","allocation":{"kind":"usd","value":10},"portfolio":[]}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var apiErr APIError
	decode(t, rec, &apiErr)
	assert.Equal(t, string(entity.KindPriceNotFound), apiErr.Error.Kind)
	assert.Equal(t, "PEPE", apiErr.Error.Details["asset"])
}

func TestHealthz(t *testing.T) {
	router := newTestRouter(t, stubPrices{}, &stubRebalancer{})
	rec := do(router, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = do(router, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}
