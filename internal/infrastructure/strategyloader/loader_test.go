package strategyloader

import (
	"os"
	"path/filepath"
	"testing"

	"portfolio_rebalancer/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Embedded(t *testing.T) {
	strategies, err := Load("")
	require.NoError(t, err)
	require.NotEmpty(t, strategies)

	for _, s := range strategies {
		total := 0
		for _, d := range s.Definitions {
			total += d.PercentageBp
		}
		assert.Equal(t, entity.FullAllocationBp, total, s.ID)
	}
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "strategies.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
strategies:
  - id: all-in
    name: All In
    environments: [testnet]
    definitions:
      - {asset: ETH, percentageBp: 10000}
`), 0o600))

	strategies, err := Load(path)
	require.NoError(t, err)
	require.Len(t, strategies, 1)
	assert.Equal(t, "all-in", strategies[0].ID)
	assert.Equal(t, []entity.Network{entity.Testnet}, strategies[0].Environments)
	assert.Equal(t, entity.Distribution{Asset: "ETH", PercentageBp: 10000}, strategies[0].Definitions[0])
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Parse([]byte("strategies: {"), "inline")
	assert.Error(t, err)
}
