package port

import (
	"context"

	"portfolio_rebalancer/internal/domain/entity"
)

// BlockchainClient defines the interface for reading balances from one chain.
type BlockchainClient interface {
	// GetBalances reads native and token balances of a wallet in a single batch.
	GetBalances(ctx context.Context, requests []entity.BalanceRequestItem) ([]entity.BalanceResultItem, error)

	// ChainID returns the chain this client is connected to.
	ChainID() string
}

// BlockchainClientProvider defines the interface for providing blockchain clients.
type BlockchainClientProvider interface {
	// GetClient returns a client for the chain, or false when no RPC endpoint is configured.
	GetClient(chainID string) (BlockchainClient, bool, error)
	// ChainIDs lists every chain with a configured endpoint.
	ChainIDs() []string
	// Close releases every dialled client.
	Close()
}

// ChainDefinitionProvider resolves chain ids to their RPC definitions.
type ChainDefinitionProvider interface {
	GetChainDefinition(chainID string) (entity.ChainDefinition, bool)
	AllChainDefinitions() []entity.ChainDefinition
}
