package networkdefinition

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	def, ok := Lookup(" BSC-Testnet ")
	require.True(t, ok)
	assert.Equal(t, uint64(97), def.ChainID)

	_, ok = Lookup("solana")
	assert.False(t, ok)
}

func TestLookupByChainID(t *testing.T) {
	def, ok := LookupByChainID(56)
	require.True(t, ok)
	assert.Equal(t, "bsc", def.Identifier)
}

func TestIdentifiersSorted(t *testing.T) {
	assert.Equal(t, []string{"bsc", "bsc-testnet"}, Identifiers())
}
