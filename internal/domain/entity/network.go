package entity

// NetworkDefinition holds the static description of an EVM network the service can talk to.
type NetworkDefinition struct {
	ChainID          uint64 `json:"chainId" yaml:"chainId"`
	Name             string `json:"name" yaml:"name"`
	Identifier       string `json:"identifier" yaml:"identifier"` // e.g. "bsc-testnet"
	NativeSymbol     string `json:"nativeSymbol" yaml:"nativeSymbol"`
	PrimaryRPCURL    string `json:"primaryRpcUrl" yaml:"primaryRpcUrl"`
	BlockExplorerURL string `json:"blockExplorerUrl,omitempty" yaml:"blockExplorerUrl,omitempty"`
	DEXScreenerID    string `json:"dexScreenerChainId,omitempty" yaml:"dexScreenerChainId,omitempty"`
}
