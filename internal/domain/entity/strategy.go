package entity

// Distribution is one line of a strategy: a canonical asset and its share in basis points.
type Distribution struct {
	Asset        string `json:"asset" yaml:"asset"`
	PercentageBp int    `json:"percentageBp" yaml:"percentageBp"`
}

// Strategy is a named target-allocation template.
type Strategy struct {
	ID           string         `json:"id" yaml:"id"`
	Name         string         `json:"name" yaml:"name"`
	Description  string         `json:"description" yaml:"description"`
	Tags         []string       `json:"tags" yaml:"tags"`
	Environments []Network      `json:"environments" yaml:"environments"`
	Priority     int            `json:"priority" yaml:"priority"`
	Definitions  []Distribution `json:"definitions" yaml:"definitions"`
}

// FullAllocationBp is 100% expressed in basis points.
const FullAllocationBp = 10000

// EnabledOn reports whether the strategy is offered on the given network.
func (s Strategy) EnabledOn(network Network) bool {
	for _, env := range s.Environments {
		if env == network {
			return true
		}
	}
	return false
}
