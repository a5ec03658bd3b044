package strategyloader

import (
	_ "embed"
	"fmt"
	"os"

	"portfolio_rebalancer/internal/domain/entity"

	"gopkg.in/yaml.v3"
)

//go:embed strategies.yaml
var embeddedStrategies []byte

type strategyFile struct {
	Strategies []entity.Strategy `yaml:"strategies"`
}

// Load reads strategy definitions from path, or the built-in catalog when path is empty.
// Validation happens when the catalog is constructed, not here.
func Load(path string) ([]entity.Strategy, error) {
	data := embeddedStrategies
	source := "embedded"
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read strategy file %s: %w", path, err)
		}
		source = path
	}
	return Parse(data, source)
}

// Parse decodes a strategies YAML document.
func Parse(data []byte, source string) ([]entity.Strategy, error) {
	var file strategyFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to unmarshal strategies from %s: %w", source, err)
	}
	return file.Strategies, nil
}
