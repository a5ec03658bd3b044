package entity

import (
	"fmt"
	"strings"
)

// Network selects which asset and strategy catalogs are active.
type Network string

const (
	Mainnet Network = "mainnet"
	Testnet Network = "testnet"
)

// ParseNetwork parses a network name, case-insensitively.
func ParseNetwork(s string) (Network, error) {
	switch Network(strings.ToLower(strings.TrimSpace(s))) {
	case Mainnet:
		return Mainnet, nil
	case Testnet:
		return Testnet, nil
	default:
		return "", fmt.Errorf("unknown network %q", s)
	}
}

// CoinType identifies how an asset is held on its chain.
type CoinType string

const (
	CoinTypeGas   CoinType = "Gas"
	CoinTypeERC20 CoinType = "ERC20"
	CoinTypeZRC20 CoinType = "ZRC20"
)

// Valid reports whether c is one of the known coin types.
func (c CoinType) Valid() bool {
	switch c {
	case CoinTypeGas, CoinTypeERC20, CoinTypeZRC20:
		return true
	}
	return false
}

// Asset is the identity of a token on a specific chain.
type Asset struct {
	Zrc20Address    string   `json:"zrc20Address,omitempty" yaml:"zrc20Address,omitempty"`
	ExternalAddress string   `json:"externalAddress,omitempty" yaml:"externalAddress,omitempty"`
	ChainID         string   `json:"chainId" yaml:"chainId"`
	Decimals        uint8    `json:"decimals" yaml:"decimals"`
	Name            string   `json:"name" yaml:"name"`
	Symbol          string   `json:"symbol" yaml:"symbol"`       // chain-qualified, e.g. USDC.ETH
	Canonical       string   `json:"canonical" yaml:"canonical"` // chain-agnostic, e.g. USDC
	CoinType        CoinType `json:"coinType" yaml:"coinType"`
	PriceFeedID     string   `json:"priceFeedId" yaml:"priceFeedId"`
}

// Key returns the chainId:canonical identity of the asset.
func (a Asset) Key() string {
	return ChainKey(a.ChainID, a.Canonical)
}

// ChainKey joins a chain id and a second component into a lookup key.
// Address-like components are lower-cased.
func ChainKey(chainID, part string) string {
	return chainID + ":" + strings.ToLower(part)
}
