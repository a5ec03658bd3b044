package configloader

import (
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// ServerConfig holds server-specific configurations.
type ServerConfig struct {
	Port                string   `yaml:"port"`
	ReadTimeoutSeconds  int      `yaml:"readTimeoutSeconds"`
	WriteTimeoutSeconds int      `yaml:"writeTimeoutSeconds"`
	IdleTimeoutSeconds  int      `yaml:"idleTimeoutSeconds"`
	AllowedOrigins      []string `yaml:"allowedOrigins"`
}

// LoggingConfig holds logging-specific configurations.
type LoggingConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// CatalogConfig points at optional on-disk catalogs replacing the built-in ones.
type CatalogConfig struct {
	AssetDir     string `yaml:"assetDir"`
	StrategyFile string `yaml:"strategyFile"`
}

// CoinGeckoConfig holds CoinGecko API specific configurations.
type CoinGeckoConfig struct {
	APIKey               string  `yaml:"apiKey"`
	BaseURL              string  `yaml:"baseURL"`
	RequestTimeoutMillis int64   `yaml:"requestTimeoutMillis"`
	RequestsPerSecond    float64 `yaml:"requestsPerSecond"`
	Burst                int     `yaml:"burst"`
	MaxIDsPerRequest     int     `yaml:"maxIdsPerRequest"`
}

// PriceServiceConfig holds configuration for the price snapshot service.
type PriceServiceConfig struct {
	CacheTTLSeconds       int `yaml:"cacheTTLSeconds"`
	MaxConcurrentRequests int `yaml:"maxConcurrentRequests"`
}

// BalanceServiceConfig holds configuration for on-chain balance reads.
// Chains maps a chain id to its RPC endpoints, primary first.
type BalanceServiceConfig struct {
	RPCCallTimeoutSeconds    int                 `yaml:"rpcCallTimeoutSeconds"`
	ConnectionTimeoutSeconds int                 `yaml:"connectionTimeoutSeconds"`
	MaxConcurrentRequests    int                 `yaml:"maxConcurrentRequests"`
	Chains                   map[string][]string `yaml:"chains"`
}

// HistoryConfig bounds the in-memory store of computed rebalance outputs.
type HistoryConfig struct {
	TTLMinutes     int `yaml:"ttlMinutes"`
	CleanupMinutes int `yaml:"cleanupMinutes"`
}

// Config is the top-level configuration structure.
type Config struct {
	Server         ServerConfig         `yaml:"server"`
	Logging        LoggingConfig        `yaml:"logging"`
	Network        string               `yaml:"network"`
	Catalog        CatalogConfig        `yaml:"catalog"`
	CoinGecko      CoinGeckoConfig      `yaml:"coinGecko"`
	PriceService   PriceServiceConfig   `yaml:"priceService"`
	BalanceService BalanceServiceConfig `yaml:"balanceService"`
	History        HistoryConfig        `yaml:"history"`
}

// Load reads the YAML configuration file from the given path and applies defaults.
func Load(path string) (*Config, error) {
	logrus.Infof("Loading configuration from path: %s", path)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return Parse(data, path)
}

// Parse unmarshals a YAML document and applies defaults.
func Parse(data []byte, source string) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config data from %s: %w", source, err)
	}
	applyDefaults(&cfg)
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", source, err)
	}
	logrus.Info("Configuration loaded successfully.")
	return &cfg, nil
}

// Default returns a configuration with every default applied.
func Default() *Config {
	var cfg Config
	applyDefaults(&cfg)
	return &cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == "" {
		cfg.Server.Port = ":8080"
		logrus.Infof("server.port not set, defaulting to %s", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeoutSeconds <= 0 {
		cfg.Server.ReadTimeoutSeconds = 10
	}
	if cfg.Server.WriteTimeoutSeconds <= 0 {
		cfg.Server.WriteTimeoutSeconds = 30
	}
	if cfg.Server.IdleTimeoutSeconds <= 0 {
		cfg.Server.IdleTimeoutSeconds = 60
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Network == "" {
		cfg.Network = "mainnet"
		logrus.Infof("network not set, defaulting to %s", cfg.Network)
	}

	if cfg.CoinGecko.BaseURL == "" {
		cfg.CoinGecko.BaseURL = "https://api.coingecko.com/api/v3"
		logrus.Infof("coinGecko.baseURL not set, defaulting to %s", cfg.CoinGecko.BaseURL)
	}
	if cfg.CoinGecko.RequestTimeoutMillis <= 0 {
		cfg.CoinGecko.RequestTimeoutMillis = 10000
		logrus.Infof("coinGecko.requestTimeoutMillis not set, defaulting to %d ms", cfg.CoinGecko.RequestTimeoutMillis)
	}
	if cfg.CoinGecko.RequestsPerSecond <= 0 {
		// Public API tier allows roughly 30 calls per minute.
		cfg.CoinGecko.RequestsPerSecond = 0.5
		logrus.Infof("coinGecko.requestsPerSecond not set, defaulting to %.2f", cfg.CoinGecko.RequestsPerSecond)
	}
	if cfg.CoinGecko.Burst <= 0 {
		cfg.CoinGecko.Burst = 3
	}
	if cfg.CoinGecko.MaxIDsPerRequest <= 0 {
		cfg.CoinGecko.MaxIDsPerRequest = 50
	}

	if cfg.PriceService.CacheTTLSeconds <= 0 {
		cfg.PriceService.CacheTTLSeconds = 60
		logrus.Infof("priceService.cacheTTLSeconds not set, defaulting to %d", cfg.PriceService.CacheTTLSeconds)
	}
	if cfg.PriceService.MaxConcurrentRequests <= 0 {
		cfg.PriceService.MaxConcurrentRequests = 2
	}

	if cfg.BalanceService.RPCCallTimeoutSeconds <= 0 {
		cfg.BalanceService.RPCCallTimeoutSeconds = 10
	}
	if cfg.BalanceService.ConnectionTimeoutSeconds <= 0 {
		cfg.BalanceService.ConnectionTimeoutSeconds = 10
	}
	if cfg.BalanceService.MaxConcurrentRequests <= 0 {
		cfg.BalanceService.MaxConcurrentRequests = 5
	}

	if cfg.History.TTLMinutes <= 0 {
		cfg.History.TTLMinutes = 60
	}
	if cfg.History.CleanupMinutes <= 0 {
		cfg.History.CleanupMinutes = 10
	}
}

func validate(cfg *Config) error {
	switch strings.ToLower(cfg.Network) {
	case "mainnet", "testnet":
	default:
		return fmt.Errorf("network must be mainnet or testnet, got %q", cfg.Network)
	}
	for chainID, urls := range cfg.BalanceService.Chains {
		if len(urls) == 0 {
			logrus.Warnf("balanceService.chains[%s] has no RPC endpoints, balances on this chain will not be read", chainID)
		}
	}
	return nil
}
