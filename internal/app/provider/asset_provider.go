package provider

import (
	"fmt"

	"portfolio_rebalancer/internal/app/port"
	"portfolio_rebalancer/internal/domain/entity"
)

// Settlement-chain ids of the synthetic native gas asset.
const (
	ZetaMainnetChainID = "7000"
	ZetaTestnetChainID = "7001"
)

// SettlementGasAsset returns the native ZETA asset of the network's settlement chain.
func SettlementGasAsset(network entity.Network) entity.Asset {
	chainID := ZetaMainnetChainID
	if network == entity.Testnet {
		chainID = ZetaTestnetChainID
	}
	return entity.Asset{
		ChainID:     chainID,
		Decimals:    18,
		Name:        "ZetaChain",
		Symbol:      "ZETA",
		Canonical:   "ZETA",
		CoinType:    entity.CoinTypeGas,
		PriceFeedID: "zetachain",
	}
}

type assetRegistryImpl struct {
	assets map[entity.Network][]entity.Asset
	logger port.Logger
}

// NewAssetRegistry validates the catalogs and builds a registry. Any malformed asset or a
// duplicate (chainId, canonical) pair fails construction.
func NewAssetRegistry(catalogs map[entity.Network][]entity.Asset, logger port.Logger) (port.AssetRegistry, error) {
	r := &assetRegistryImpl{
		assets: make(map[entity.Network][]entity.Asset, len(catalogs)),
		logger: logger,
	}
	for _, network := range []entity.Network{entity.Mainnet, entity.Testnet} {
		list := make([]entity.Asset, 0, len(catalogs[network])+1)
		list = append(list, catalogs[network]...)
		list = append(list, SettlementGasAsset(network))
		if err := validateAssets(network, list); err != nil {
			return nil, err
		}
		r.assets[network] = list
		logger.Info("Asset registry initialized", "network", network, "assets", len(list))
	}
	return r, nil
}

func validateAssets(network entity.Network, assets []entity.Asset) error {
	seen := make(map[string]string, len(assets))
	for i, a := range assets {
		switch {
		case a.ChainID == "":
			return fmt.Errorf("%s asset #%d (%s): empty chainId", network, i, a.Symbol)
		case a.Symbol == "" || a.Canonical == "":
			return fmt.Errorf("%s asset #%d on chain %s: symbol and canonical are required", network, i, a.ChainID)
		case !a.CoinType.Valid():
			return fmt.Errorf("%s asset %s: unknown coin type %q", network, a.Symbol, a.CoinType)
		case a.CoinType == entity.CoinTypeERC20 && a.ExternalAddress == "":
			return fmt.Errorf("%s asset %s: ERC20 asset requires externalAddress", network, a.Symbol)
		case a.CoinType == entity.CoinTypeZRC20 && a.Zrc20Address == "":
			return fmt.Errorf("%s asset %s: ZRC20 asset requires zrc20Address", network, a.Symbol)
		}
		if prev, dup := seen[a.Key()]; dup {
			return fmt.Errorf("%s assets %s and %s share chain %s and canonical %s", network, prev, a.Symbol, a.ChainID, a.Canonical)
		}
		seen[a.Key()] = a.Symbol
	}
	return nil
}

// ListAssets returns the network's assets, settlement gas asset last.
// The returned slice is a copy.
func (r *assetRegistryImpl) ListAssets(network entity.Network) []entity.Asset {
	list := r.assets[network]
	out := make([]entity.Asset, len(list))
	copy(out, list)
	return out
}
