package client

import (
	"fmt"
	"sync"
	"time"

	"portfolio_rebalancer/internal/app/port"

	"go.uber.org/zap"
)

// evmClientProvider implements port.BlockchainClientProvider with lazily dialled, cached clients.
type evmClientProvider struct {
	chains            port.ChainDefinitionProvider
	clients           map[string]*EVMClient
	mu                sync.Mutex
	logger            *zap.Logger
	connectionTimeout time.Duration
	rpcCallTimeout    time.Duration
}

// NewEVMClientProvider creates a new EVMClientProvider.
func NewEVMClientProvider(
	chains port.ChainDefinitionProvider,
	connectionTimeout time.Duration,
	rpcCallTimeout time.Duration,
	logger *zap.Logger,
) port.BlockchainClientProvider {
	return &evmClientProvider{
		chains:            chains,
		clients:           make(map[string]*EVMClient),
		logger:            logger.Named("EVMClientProvider"),
		connectionTimeout: connectionTimeout,
		rpcCallTimeout:    rpcCallTimeout,
	}
}

// GetClient returns a cached client for the chain, dialling it on first use.
// The boolean is false when the chain has no RPC endpoint.
func (p *evmClientProvider) GetClient(chainID string) (port.BlockchainClient, bool, error) {
	def, ok := p.chains.GetChainDefinition(chainID)
	if !ok || len(def.RPCURLs) == 0 {
		return nil, false, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if client, exists := p.clients[chainID]; exists {
		return client, true, nil
	}

	p.logger.Info("Creating new EVM client", zap.String("chainId", chainID), zap.String("name", def.Name), zap.String("rpcPrimary", def.RPCURLs[0]))
	newClient, err := NewEVMClient(def, p.connectionTimeout, p.rpcCallTimeout, p.logger)
	if err != nil {
		p.logger.Error("Failed to create EVM client", zap.String("chainId", chainID), zap.Error(err))
		return nil, true, fmt.Errorf("failed to create EVM client for chain %s: %w", chainID, err)
	}

	p.clients[chainID] = newClient
	return newClient, true, nil
}

// ChainIDs lists every chain with at least one RPC endpoint.
func (p *evmClientProvider) ChainIDs() []string {
	defs := p.chains.AllChainDefinitions()
	ids := make([]string, 0, len(defs))
	for _, d := range defs {
		ids = append(ids, d.ChainID)
	}
	return ids
}

// Close closes every dialled client.
func (p *evmClientProvider) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for id, c := range p.clients {
		c.Close()
		delete(p.clients, id)
	}
}
