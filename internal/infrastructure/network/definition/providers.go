package networkdefinition

import (
	"sort"
	"strings"

	"stablecoin_monitor/internal/domain/entity"
)

// DefaultIdentifier is the network used when none is configured.
const DefaultIdentifier = "bsc-testnet"

// Predefined network definitions
var ( //nolint:gochecknoglobals // Global for definitions
	BSCTestnet = entity.NetworkDefinition{
		ChainID:          97,
		Name:             "BNB Smart Chain Testnet",
		Identifier:       "bsc-testnet",
		NativeSymbol:     "tBNB",
		PrimaryRPCURL:    "https://data-seed-prebsc-1-s1.bnbchain.org:8545",
		BlockExplorerURL: "https://testnet.bscscan.com",
	}
	BSC = entity.NetworkDefinition{
		ChainID:          56,
		Name:             "BNB Smart Chain",
		Identifier:       "bsc",
		NativeSymbol:     "BNB",
		PrimaryRPCURL:    "https://bsc-dataseed.bnbchain.org",
		BlockExplorerURL: "https://bscscan.com",
		DEXScreenerID:    "bsc",
	}

	allNetworkDefs = map[string]entity.NetworkDefinition{
		BSCTestnet.Identifier: BSCTestnet,
		BSC.Identifier:        BSC,
	}
)

// Lookup returns a network definition by identifier (case-insensitive).
func Lookup(identifier string) (entity.NetworkDefinition, bool) {
	def, ok := allNetworkDefs[strings.ToLower(strings.TrimSpace(identifier))]
	return def, ok
}

// LookupByChainID returns a network definition by chain id.
func LookupByChainID(chainID uint64) (entity.NetworkDefinition, bool) {
	for _, def := range allNetworkDefs {
		if def.ChainID == chainID {
			return def, true
		}
	}
	return entity.NetworkDefinition{}, false
}

// Identifiers lists the known network identifiers in sorted order.
func Identifiers() []string {
	ids := make([]string, 0, len(allNetworkDefs))
	for id := range allNetworkDefs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
