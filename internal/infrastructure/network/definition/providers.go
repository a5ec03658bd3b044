package networkdefinition

import (
	"sort"
	"strconv"

	"portfolio_rebalancer/internal/app/port"
	"portfolio_rebalancer/internal/domain/entity"
)

// Built-in EVM chains the balance reader knows how to reach. Non-EVM origin chains
// (Bitcoin, Solana) are absent on purpose: their assets are only visible as ZRC20 on ZetaChain.
var (
	Ethereum = entity.ChainDefinition{
		ChainID:      "1",
		Name:         "Ethereum Mainnet",
		Network:      entity.Mainnet,
		NativeSymbol: "ETH",
		RPCURLs:      []string{"https://ethereum-rpc.publicnode.com", "https://rpc.ankr.com/eth", "https://ethereum.publicnode.com"},
	}
	BSC = entity.ChainDefinition{
		ChainID:      "56",
		Name:         "BNB Smart Chain",
		Network:      entity.Mainnet,
		NativeSymbol: "BNB",
		RPCURLs:      []string{"https://1rpc.io/bnb", "https://bsc-dataseed2.binance.org/", "https://bsc.publicnode.com"},
	}
	Polygon = entity.ChainDefinition{
		ChainID:      "137",
		Name:         "Polygon PoS",
		Network:      entity.Mainnet,
		NativeSymbol: "POL",
		RPCURLs:      []string{"https://polygon-rpc.com/", "https://rpc.ankr.com/polygon", "https://polygon.publicnode.com"},
	}
	Base = entity.ChainDefinition{
		ChainID:      "8453",
		Name:         "Base",
		Network:      entity.Mainnet,
		NativeSymbol: "ETH",
		RPCURLs:      []string{"https://mainnet.base.org", "https://base.publicnode.com"},
	}
	Arbitrum = entity.ChainDefinition{
		ChainID:      "42161",
		Name:         "Arbitrum One",
		Network:      entity.Mainnet,
		NativeSymbol: "ETH",
		RPCURLs:      []string{"https://arb1.arbitrum.io/rpc", "https://arbitrum.publicnode.com"},
	}
	Avalanche = entity.ChainDefinition{
		ChainID:      "43114",
		Name:         "Avalanche C-Chain",
		Network:      entity.Mainnet,
		NativeSymbol: "AVAX",
		RPCURLs:      []string{"https://api.avax.network/ext/bc/C/rpc", "https://avalanche-c-chain-rpc.publicnode.com"},
	}
	ZetaChain = entity.ChainDefinition{
		ChainID:      "7000",
		Name:         "ZetaChain Mainnet",
		Network:      entity.Mainnet,
		NativeSymbol: "ZETA",
		RPCURLs:      []string{"https://zetachain-evm.blockpi.network/v1/rpc/public", "https://zetachain-mainnet.public.blastapi.io"},
	}

	Sepolia = entity.ChainDefinition{
		ChainID:      "11155111",
		Name:         "Ethereum Sepolia",
		Network:      entity.Testnet,
		NativeSymbol: "ETH",
		RPCURLs:      []string{"https://ethereum-sepolia-rpc.publicnode.com"},
	}
	BSCTestnet = entity.ChainDefinition{
		ChainID:      "97",
		Name:         "BNB Smart Chain Testnet",
		Network:      entity.Testnet,
		NativeSymbol: "tBNB",
		RPCURLs:      []string{"https://bsc-testnet-rpc.publicnode.com"},
	}
	PolygonAmoy = entity.ChainDefinition{
		ChainID:      "80002",
		Name:         "Polygon Amoy",
		Network:      entity.Testnet,
		NativeSymbol: "POL",
		RPCURLs:      []string{"https://rpc-amoy.polygon.technology"},
	}
	BaseSepolia = entity.ChainDefinition{
		ChainID:      "84532",
		Name:         "Base Sepolia",
		Network:      entity.Testnet,
		NativeSymbol: "ETH",
		RPCURLs:      []string{"https://sepolia.base.org"},
	}
	ZetaAthens = entity.ChainDefinition{
		ChainID:      "7001",
		Name:         "ZetaChain Athens Testnet",
		Network:      entity.Testnet,
		NativeSymbol: "ZETA",
		RPCURLs:      []string{"https://zetachain-athens-evm.blockpi.network/v1/rpc/public"},
	}
)

var allKnownDefinitions = []entity.ChainDefinition{
	Ethereum, BSC, Polygon, Base, Arbitrum, Avalanche, ZetaChain,
	Sepolia, BSCTestnet, PolygonAmoy, BaseSepolia, ZetaAthens,
}

// NetworkDefinitionProvider provides chain definitions, built-in ones merged with configured endpoints.
type NetworkDefinitionProvider struct {
	logger port.Logger
	defs   map[string]entity.ChainDefinition
}

// NewNetworkDefinitionProvider creates a provider. Configured RPC URLs replace the built-in
// list for a known chain; an unknown chain id with URLs is added as a bare definition.
func NewNetworkDefinitionProvider(log port.Logger, configured map[string][]string) *NetworkDefinitionProvider {
	p := &NetworkDefinitionProvider{
		logger: log,
		defs:   make(map[string]entity.ChainDefinition, len(allKnownDefinitions)+len(configured)),
	}
	for _, def := range allKnownDefinitions {
		def.RPCURLs = append([]string(nil), def.RPCURLs...)
		p.defs[def.ChainID] = def
	}

	for chainID, urls := range configured {
		def, known := p.defs[chainID]
		if !known {
			def = entity.ChainDefinition{ChainID: chainID, Name: "chain " + chainID}
			p.logger.Warn("Configured RPC endpoints for a chain without a built-in definition", "chainId", chainID)
		}
		if len(urls) > 0 {
			def.RPCURLs = append([]string(nil), urls...)
		}
		p.defs[chainID] = def
	}

	p.logger.Info("NetworkDefinitionProvider initialized", "chains", len(p.defs))
	return p
}

// GetChainDefinition returns the definition of a chain.
func (p *NetworkDefinitionProvider) GetChainDefinition(chainID string) (entity.ChainDefinition, bool) {
	def, ok := p.defs[chainID]
	return def, ok
}

// AllChainDefinitions returns every definition with at least one RPC URL, ordered by numeric chain id.
func (p *NetworkDefinitionProvider) AllChainDefinitions() []entity.ChainDefinition {
	out := make([]entity.ChainDefinition, 0, len(p.defs))
	for _, def := range p.defs {
		if len(def.RPCURLs) == 0 {
			continue
		}
		out = append(out, def)
	}
	sort.Slice(out, func(i, j int) bool {
		a, errA := strconv.ParseUint(out[i].ChainID, 10, 64)
		b, errB := strconv.ParseUint(out[j].ChainID, 10, 64)
		if errA != nil || errB != nil {
			return out[i].ChainID < out[j].ChainID
		}
		return a < b
	})
	return out
}
