package port

import "portfolio_rebalancer/internal/domain/entity"

// StrategyCatalog serves validated target-allocation templates.
type StrategyCatalog interface {
	ListStrategies(network entity.Network) []entity.Strategy
	GetStrategy(id string) (entity.Strategy, error)
}
