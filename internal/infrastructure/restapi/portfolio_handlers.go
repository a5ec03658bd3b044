package restapi

import (
	"fmt"
	"net/http"

	"portfolio_rebalancer/internal/app/port"
	"portfolio_rebalancer/internal/domain/entity"

	"github.com/gin-gonic/gin"
)

// PortfolioHandler serves live market data: price snapshots and wallet balances.
type PortfolioHandler struct {
	prices         port.PriceService
	balances       port.BalanceService
	defaultNetwork entity.Network
}

// NewPortfolioHandler creates a new PortfolioHandler.
func NewPortfolioHandler(prices port.PriceService, balances port.BalanceService, defaultNetwork entity.Network) *PortfolioHandler {
	return &PortfolioHandler{prices: prices, balances: balances, defaultNetwork: defaultNetwork}
}

// GetPricesHandler returns the price snapshot of a network.
func (h *PortfolioHandler) GetPricesHandler(c *gin.Context) {
	network, ok := networkParam(c, h.defaultNetwork)
	if !ok {
		return
	}
	prices, warnings, err := h.prices.Snapshot(c.Request.Context(), network)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, APIResponse{
		Data:          prices,
		Warnings:      warnings,
		StatusMessage: fmt.Sprintf("%d prices on %s", len(prices), network),
	})
}

// GetBalancesHandler returns the holdings of a wallet across every readable chain.
func (h *PortfolioHandler) GetBalancesHandler(c *gin.Context) {
	network, ok := networkParam(c, h.defaultNetwork)
	if !ok {
		return
	}
	records, balanceErrs, err := h.balances.FetchBalances(c.Request.Context(), network, c.Param("wallet"))
	if err != nil {
		abortWithError(c, err)
		return
	}

	response := APIResponse{Data: records, ServiceErrors: balanceErrs}
	switch {
	case len(balanceErrs) > 0:
		response.StatusMessage = "Balances retrieved. Some chains or tokens could not be read."
	case len(records) == 0:
		response.StatusMessage = "No holdings found for this wallet."
	default:
		response.StatusMessage = "Balances retrieved successfully."
	}
	c.JSON(http.StatusOK, response)
}
