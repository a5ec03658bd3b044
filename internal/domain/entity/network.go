package entity

// ChainDefinition describes an EVM chain balances can be read from.
type ChainDefinition struct {
	ChainID      string   `json:"chainId" yaml:"chainId"`
	Name         string   `json:"name" yaml:"name"`
	Network      Network  `json:"network" yaml:"network"`
	NativeSymbol string   `json:"nativeSymbol" yaml:"nativeSymbol"`
	RPCURLs      []string `json:"rpcUrls" yaml:"rpcUrls"` // primary first, then fallbacks
}
