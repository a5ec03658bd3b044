package restapi

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Handlers groups every handler the router mounts.
type Handlers struct {
	Catalog   *CatalogHandler
	Portfolio *PortfolioHandler
	Rebalance *RebalanceHandler
}

// SetupRouter builds the gin engine with CORS, request logging, recovery and all routes.
func SetupRouter(h Handlers, allowedOrigins []string, logger *zap.Logger) *gin.Engine {
	router := gin.New()

	corsConfig := cors.DefaultConfig()
	if len(allowedOrigins) == 0 || (len(allowedOrigins) == 1 && allowedOrigins[0] == "*") {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = allowedOrigins
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	router.Use(cors.New(corsConfig))
	router.Use(ZapLoggerMiddleware(logger))
	router.Use(gin.Recovery())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/assets", h.Catalog.GetAssetsHandler)
		v1.GET("/strategies", h.Catalog.GetStrategiesHandler)
		v1.GET("/strategies/:id", h.Catalog.GetStrategyHandler)
		v1.GET("/prices", h.Portfolio.GetPricesHandler)
		v1.GET("/balances/:wallet", h.Portfolio.GetBalancesHandler)
		v1.POST("/rebalance", h.Rebalance.PostRebalanceHandler)
		v1.GET("/rebalance/:id", h.Rebalance.GetRebalanceHandler)
	}

	return router
}
