package port

import (
	"context"

	"portfolio_rebalancer/internal/domain/entity"
)

// BalanceService reads a wallet's holdings across every configured chain.
type BalanceService interface {
	// FetchBalances returns the balances it could read and one error per failed read.
	FetchBalances(ctx context.Context, network entity.Network, walletAddress string) ([]entity.BalanceRecord, []entity.BalanceError, error)
}

// RebalanceRequest is a caller-level rebalance request. Portfolio and Prices are optional;
// when absent they are fetched for WalletAddress and Network.
type RebalanceRequest struct {
	Network       entity.Network           `json:"network"`
	StrategyID    string                   `json:"strategyId"`
	Allocation    entity.AllocationRequest `json:"allocation"`
	WalletAddress string                   `json:"wallet,omitempty"`
	Portfolio     []entity.BalanceRecord   `json:"portfolio,omitempty"`
	Prices        []entity.Price           `json:"prices,omitempty"`
}

// RebalanceService computes and remembers rebalance proposals.
type RebalanceService interface {
	Rebalance(ctx context.Context, req RebalanceRequest) (*entity.RebalanceOutput, error)
	// Get returns a previously computed output by id.
	Get(id string) (*entity.RebalanceOutput, bool)
}
