package provider

import (
	"fmt"
	"sort"

	"portfolio_rebalancer/internal/app/port"
	"portfolio_rebalancer/internal/domain/entity"
)

type strategyCatalogImpl struct {
	strategies []entity.Strategy
	byID       map[string]entity.Strategy
}

// NewStrategyCatalog validates every strategy and fails on the first malformed one.
func NewStrategyCatalog(strategies []entity.Strategy, logger port.Logger) (port.StrategyCatalog, error) {
	c := &strategyCatalogImpl{
		strategies: make([]entity.Strategy, 0, len(strategies)),
		byID:       make(map[string]entity.Strategy, len(strategies)),
	}
	for i, s := range strategies {
		if err := ValidateStrategy(s); err != nil {
			return nil, fmt.Errorf("strategy #%d: %w", i, err)
		}
		if _, dup := c.byID[s.ID]; dup {
			return nil, fmt.Errorf("strategy #%d: duplicate id %q", i, s.ID)
		}
		c.byID[s.ID] = s
		c.strategies = append(c.strategies, s)
	}
	sort.SliceStable(c.strategies, func(i, j int) bool {
		return c.strategies[i].Priority < c.strategies[j].Priority
	})
	logger.Info("Strategy catalog initialized", "strategies", len(c.strategies))
	return c, nil
}

// ValidateStrategy checks the structural invariants of a strategy definition.
func ValidateStrategy(s entity.Strategy) error {
	if s.ID == "" || s.Name == "" {
		return fmt.Errorf("id and name are required")
	}
	if len(s.Environments) == 0 {
		return fmt.Errorf("strategy %s: environments must not be empty", s.ID)
	}
	for _, env := range s.Environments {
		if env != entity.Mainnet && env != entity.Testnet {
			return fmt.Errorf("strategy %s: unknown environment %q", s.ID, env)
		}
	}
	if len(s.Definitions) == 0 {
		return fmt.Errorf("strategy %s: definitions must not be empty", s.ID)
	}
	total := 0
	for _, d := range s.Definitions {
		if d.Asset == "" {
			return fmt.Errorf("strategy %s: definition with empty asset", s.ID)
		}
		if d.PercentageBp < 0 || d.PercentageBp > entity.FullAllocationBp {
			return fmt.Errorf("strategy %s: %s percentage %d bp out of range", s.ID, d.Asset, d.PercentageBp)
		}
		total += d.PercentageBp
	}
	if total != entity.FullAllocationBp {
		return fmt.Errorf("strategy %s: percentages sum to %d bp, want %d", s.ID, total, entity.FullAllocationBp)
	}
	return nil
}

// ListStrategies returns the strategies offered on network in display-priority order.
func (c *strategyCatalogImpl) ListStrategies(network entity.Network) []entity.Strategy {
	out := make([]entity.Strategy, 0, len(c.strategies))
	for _, s := range c.strategies {
		if s.EnabledOn(network) {
			out = append(out, s)
		}
	}
	return out
}

// GetStrategy looks a strategy up by id.
func (c *strategyCatalogImpl) GetStrategy(id string) (entity.Strategy, error) {
	s, ok := c.byID[id]
	if !ok {
		return entity.Strategy{}, entity.NewStrategyNotFoundError(id)
	}
	return s, nil
}
