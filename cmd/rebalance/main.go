// Command rebalance computes a rebalance proposal offline from a request file
// carrying the portfolio and the price snapshot, and prints it as JSON.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"portfolio_rebalancer/internal/app/port"
	"portfolio_rebalancer/internal/app/provider"
	"portfolio_rebalancer/internal/app/service"
	"portfolio_rebalancer/internal/domain/entity"
	"portfolio_rebalancer/internal/infrastructure/assetloader"
	"portfolio_rebalancer/internal/infrastructure/configloader"
	"portfolio_rebalancer/internal/infrastructure/strategyloader"
	"portfolio_rebalancer/internal/pkg/logger"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func main() {
	os.Exit(execute(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// execute runs the command and returns its exit code. Only the RebalanceOutput goes to stdout;
// diagnostics and errors go to stderr.
func execute(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("rebalance", flag.ContinueOnError)
	fs.SetOutput(stderr)
	requestPath := fs.String("request", "", "path to a rebalance request JSON file (- for stdin)")
	networkFlag := fs.String("network", "", "network override: mainnet or testnet")
	assetDir := fs.String("assets", "", "directory with <network>.json asset catalogs (default: built-in)")
	strategyFile := fs.String("strategies", "", "strategy catalog YAML file (default: built-in)")
	logLevel := fs.String("log-level", "warn", "log level for diagnostics on stderr")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	logger.InitSlogTo(stderr, *logLevel)

	if *requestPath == "" {
		fs.Usage()
		return 2
	}

	out, err := run(*requestPath, *networkFlag, *assetDir, *strategyFile, stdin)
	if err != nil {
		writeError(stderr, err)
		return 1
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		fmt.Fprintf(stderr, "failed to encode output: %v\n", err)
		return 1
	}
	return 0
}

func run(requestPath, networkOverride, assetDir, strategyFile string, stdin io.Reader) (*entity.RebalanceOutput, error) {
	var (
		data []byte
		err  error
	)
	if requestPath == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(requestPath)
	}
	if err != nil {
		return nil, fmt.Errorf("read request: %w", err)
	}

	var req port.RebalanceRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, entity.NewInvalidInputError(fmt.Sprintf("malformed request %s: %v", requestPath, err))
	}
	if networkOverride != "" {
		req.Network = entity.Network(networkOverride)
	}
	if req.Portfolio == nil {
		req.Portfolio = []entity.BalanceRecord{}
	}

	appLogger := logger.NewSlogAdapter()
	catalogs, err := assetloader.NewAssetLoader(assetDir, appLogger.Info, appLogger.Warn).LoadCatalogs()
	if err != nil {
		return nil, fmt.Errorf("load asset catalogs: %w", err)
	}
	registry, err := provider.NewAssetRegistry(catalogs, appLogger)
	if err != nil {
		return nil, err
	}
	strategies, err := strategyloader.Load(strategyFile)
	if err != nil {
		return nil, fmt.Errorf("load strategies: %w", err)
	}
	catalog, err := provider.NewStrategyCatalog(strategies, appLogger)
	if err != nil {
		return nil, err
	}

	// Offline: no price feed and no RPC, the request must carry both.
	svc := service.NewRebalanceService(registry, catalog, nil, nil, entity.Mainnet, configloader.HistoryConfig{TTLMinutes: 1, CleanupMinutes: 1}, appLogger)
	return svc.Rebalance(context.Background(), req)
}

func writeError(w io.Writer, err error) {
	body := map[string]any{"error": err.Error()}
	var rbErr *entity.RebalanceError
	if errors.As(err, &rbErr) {
		body = map[string]any{"kind": rbErr.Kind, "message": rbErr.Message, "details": rbErr.Details}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(body)
}
