package restapi

import (
	"fmt"
	"net/http"

	"portfolio_rebalancer/internal/app/port"
	"portfolio_rebalancer/internal/domain/entity"

	"github.com/gin-gonic/gin"
)

// CatalogHandler serves the asset registry and the strategy catalog.
type CatalogHandler struct {
	registry       port.AssetRegistry
	strategies     port.StrategyCatalog
	defaultNetwork entity.Network
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(registry port.AssetRegistry, strategies port.StrategyCatalog, defaultNetwork entity.Network) *CatalogHandler {
	return &CatalogHandler{registry: registry, strategies: strategies, defaultNetwork: defaultNetwork}
}

// GetAssetsHandler lists the supported assets of a network.
func (h *CatalogHandler) GetAssetsHandler(c *gin.Context) {
	network, ok := networkParam(c, h.defaultNetwork)
	if !ok {
		return
	}
	assets := h.registry.ListAssets(network)
	c.JSON(http.StatusOK, APIResponse{
		Data:          assets,
		StatusMessage: fmt.Sprintf("%d assets on %s", len(assets), network),
	})
}

// GetStrategiesHandler lists the strategies offered on a network.
func (h *CatalogHandler) GetStrategiesHandler(c *gin.Context) {
	network, ok := networkParam(c, h.defaultNetwork)
	if !ok {
		return
	}
	strategies := h.strategies.ListStrategies(network)
	c.JSON(http.StatusOK, APIResponse{
		Data:          strategies,
		StatusMessage: fmt.Sprintf("%d strategies on %s", len(strategies), network),
	})
}

// GetStrategyHandler returns one strategy by id.
func (h *CatalogHandler) GetStrategyHandler(c *gin.Context) {
	strategy, err := h.strategies.GetStrategy(c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, APIResponse{Data: strategy, StatusMessage: "Strategy found."})
}

// networkParam reads ?network=, falling back to the default. It aborts the request on an unknown value.
func networkParam(c *gin.Context, fallback entity.Network) (entity.Network, bool) {
	raw := c.Query("network")
	if raw == "" {
		return fallback, true
	}
	network, err := entity.ParseNetwork(raw)
	if err != nil {
		abortWithKind(c, http.StatusBadRequest, entity.KindInvalidInput, err.Error())
		return "", false
	}
	return network, true
}
