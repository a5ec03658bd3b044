package assetloader

import (
	"embed"
	"fmt"
	"io/fs"
	"os"

	"portfolio_rebalancer/internal/domain/entity"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

//go:embed catalog/*.json
var embeddedCatalogs embed.FS

// AssetFileLoader reads one <network>.json asset catalog per network.
type AssetFileLoader struct {
	catalogFS  fs.FS
	source     string
	loggerInfo func(msg string, args ...any)
	loggerWarn func(msg string, args ...any)
}

// NewAssetLoader creates a loader over dir, or over the built-in catalogs when dir is empty.
func NewAssetLoader(dir string, loggerInfo func(msg string, args ...any), loggerWarn func(msg string, args ...any)) *AssetFileLoader {
	l := &AssetFileLoader{loggerInfo: loggerInfo, loggerWarn: loggerWarn}
	if dir == "" {
		sub, err := fs.Sub(embeddedCatalogs, "catalog")
		if err != nil {
			panic(fmt.Sprintf("embedded asset catalog missing: %v", err))
		}
		l.catalogFS = sub
		l.source = "embedded"
	} else {
		l.catalogFS = os.DirFS(dir)
		l.source = dir
	}
	return l
}

// LoadCatalogs reads the mainnet and testnet catalogs. A missing or malformed file is an error:
// the registry cannot start without both networks.
func (l *AssetFileLoader) LoadCatalogs() (map[entity.Network][]entity.Asset, error) {
	catalogs := make(map[entity.Network][]entity.Asset, 2)
	for _, network := range []entity.Network{entity.Mainnet, entity.Testnet} {
		fileName := string(network) + ".json"
		data, err := fs.ReadFile(l.catalogFS, fileName)
		if err != nil {
			if l.loggerWarn != nil {
				l.loggerWarn("Failed to read asset catalog", "source", l.source, "file", fileName, "error", err)
			}
			return nil, fmt.Errorf("failed to read asset catalog %s from %s: %w", fileName, l.source, err)
		}

		var assets []entity.Asset
		if err := json.Unmarshal(data, &assets); err != nil {
			return nil, fmt.Errorf("failed to unmarshal asset catalog %s from %s: %w", fileName, l.source, err)
		}
		catalogs[network] = assets

		if l.loggerInfo != nil {
			l.loggerInfo("Loaded asset catalog", "network", network, "source", l.source, "count", len(assets))
		}
	}
	return catalogs, nil
}
