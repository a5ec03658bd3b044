package entity

// BalanceRecord represents a wallet's holding of one asset.
// ChainID is the asset's chain; for ZRC20 holdings that is the origin chain of the wrapped asset.
type BalanceRecord struct {
	ChainID         string   `json:"chainId"`
	CoinType        CoinType `json:"coinType"`
	ContractAddress string   `json:"contractAddress,omitempty"`
	Decimals        uint8    `json:"decimals"`
	Symbol          string   `json:"symbol"`
	Balance         string   `json:"balance"`
}

// LookupKey derives the registry key for the record: chainId:contract for tokens,
// chainId:gas for native balances.
func (b BalanceRecord) LookupKey() string {
	if b.CoinType == CoinTypeGas {
		return ChainKey(b.ChainID, GasKey)
	}
	return ChainKey(b.ChainID, b.ContractAddress)
}

// GasKey is the second component of native-asset lookup keys.
const GasKey = "gas"

// BalanceError describes a balance that could not be read.
type BalanceError struct {
	ChainID      string `json:"chainId"`
	TokenSymbol  string `json:"tokenSymbol,omitempty"`
	TokenAddress string `json:"tokenAddress,omitempty"`
	Message      string `json:"message"`
}
