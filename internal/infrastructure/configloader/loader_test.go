package configloader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_AppliesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: ":9090"
network: testnet
balanceService:
  chains:
    "11155111": ["https://ethereum-sepolia-rpc.publicnode.com"]
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Port)
	assert.Equal(t, "testnet", cfg.Network)
	assert.Equal(t, "https://api.coingecko.com/api/v3", cfg.CoinGecko.BaseURL)
	assert.Equal(t, int64(10000), cfg.CoinGecko.RequestTimeoutMillis)
	assert.Equal(t, 50, cfg.CoinGecko.MaxIDsPerRequest)
	assert.Equal(t, 60, cfg.PriceService.CacheTTLSeconds)
	assert.Equal(t, 60, cfg.History.TTLMinutes)
	assert.Equal(t, []string{"https://ethereum-sepolia-rpc.publicnode.com"}, cfg.BalanceService.Chains["11155111"])
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)

	_, err = Parse([]byte("server: ["), "inline")
	assert.Error(t, err)

	_, err = Parse([]byte("network: devnet"), "inline")
	assert.Error(t, err)
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, ":8080", cfg.Server.Port)
	assert.Equal(t, "mainnet", cfg.Network)
	assert.Equal(t, "info", cfg.Logging.Level)
}
