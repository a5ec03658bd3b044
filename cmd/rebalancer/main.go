package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"portfolio_rebalancer/internal/app/provider"
	"portfolio_rebalancer/internal/app/service"
	"portfolio_rebalancer/internal/domain/entity"
	"portfolio_rebalancer/internal/infrastructure/assetloader"
	"portfolio_rebalancer/internal/infrastructure/configloader"
	"portfolio_rebalancer/internal/infrastructure/httpclient"
	clientprovider "portfolio_rebalancer/internal/infrastructure/network/client"
	networkdefinition "portfolio_rebalancer/internal/infrastructure/network/definition"
	"portfolio_rebalancer/internal/infrastructure/restapi"
	"portfolio_rebalancer/internal/infrastructure/strategyloader"
	"portfolio_rebalancer/internal/pkg/logger"
	"portfolio_rebalancer/internal/pkg/metrics"
	"portfolio_rebalancer/internal/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

const defaultConfigPath = "config/config.yml"

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "failed to load .env: %v\n", err)
	}

	cfgPath := utils.GetEnv("CONFIG_PATH", defaultConfigPath)
	cfg, err := configloader.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "CRITICAL: failed to load configuration %s: %v\n", cfgPath, err)
		os.Exit(1)
	}
	if key := os.Getenv("COINGECKO_API_KEY"); key != "" {
		cfg.CoinGecko.APIKey = key
	}

	zapLogger, err := logger.NewZap(cfg.Logging.Level, cfg.Logging.Development)
	if err != nil {
		fmt.Fprintf(os.Stderr, "CRITICAL: failed to initialize zap logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = zapLogger.Sync() }()
	logger.InitZap(zapLogger, cfg.Logging.Level)

	logger.Info("Portfolio rebalancer starting", "config", cfgPath, "network", cfg.Network)
	metrics.MustRegisterMetrics()

	appLogger := logger.NewSlogAdapter()
	defaultNetwork, err := entity.ParseNetwork(cfg.Network)
	if err != nil {
		logger.Fatal("Invalid default network", "error", err)
	}

	catalogs, err := assetloader.NewAssetLoader(cfg.Catalog.AssetDir, appLogger.Info, appLogger.Warn).LoadCatalogs()
	if err != nil {
		logger.Fatal("Failed to load asset catalogs", "error", err)
	}
	registry, err := provider.NewAssetRegistry(catalogs, appLogger)
	if err != nil {
		logger.Fatal("Invalid asset catalog", "error", err)
	}

	strategies, err := strategyloader.Load(cfg.Catalog.StrategyFile)
	if err != nil {
		logger.Fatal("Failed to load strategies", "error", err)
	}
	strategyCatalog, err := provider.NewStrategyCatalog(strategies, appLogger)
	if err != nil {
		logger.Fatal("Invalid strategy catalog", "error", err)
	}

	priceFeed := httpclient.NewCoinGeckoClient(httpclient.Options{
		BaseURL:           cfg.CoinGecko.BaseURL,
		APIKey:            cfg.CoinGecko.APIKey,
		Timeout:           time.Duration(cfg.CoinGecko.RequestTimeoutMillis) * time.Millisecond,
		RequestsPerSecond: cfg.CoinGecko.RequestsPerSecond,
		Burst:             cfg.CoinGecko.Burst,
		MaxIDsPerRequest:  cfg.CoinGecko.MaxIDsPerRequest,
	}, zapLogger)
	priceService := service.NewPriceService(registry, priceFeed, cfg.PriceService, cfg.CoinGecko.MaxIDsPerRequest, appLogger)

	chainDefs := networkdefinition.NewNetworkDefinitionProvider(appLogger, cfg.BalanceService.Chains)
	clients := clientprovider.NewEVMClientProvider(
		chainDefs,
		time.Duration(cfg.BalanceService.ConnectionTimeoutSeconds)*time.Second,
		time.Duration(cfg.BalanceService.RPCCallTimeoutSeconds)*time.Second,
		zapLogger,
	)
	defer clients.Close()
	logger.Info("Balance reads enabled", "chains", clients.ChainIDs())
	balanceService := service.NewBalanceService(registry, clients, appLogger, cfg.BalanceService.MaxConcurrentRequests)

	rebalanceService := service.NewRebalanceService(
		registry,
		strategyCatalog,
		priceService,
		balanceService,
		defaultNetwork,
		cfg.History,
		appLogger,
	)

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := restapi.SetupRouter(restapi.Handlers{
		Catalog:   restapi.NewCatalogHandler(registry, strategyCatalog, defaultNetwork),
		Portfolio: restapi.NewPortfolioHandler(priceService, balanceService, defaultNetwork),
		Rebalance: restapi.NewRebalanceHandler(rebalanceService),
	}, cfg.Server.AllowedOrigins, zapLogger)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeoutSeconds) * time.Second,
	}

	go func() {
		logger.Info("HTTP server listening", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start HTTP server", "error", err)
		}
	}()

	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGINT, syscall.SIGTERM)
	<-signalChan

	logger.Info("Shutdown signal received, stopping HTTP server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server forced to shutdown", "error", err)
	} else {
		logger.Info("HTTP server stopped.")
	}
	zapLogger.Info("Portfolio rebalancer stopped", zap.String("network", string(defaultNetwork)))
}
