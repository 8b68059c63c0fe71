package utils

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// ZeroAddress represents the Ethereum zero address.
const ZeroAddress = "0x0000000000000000000000000000000000000000"

// ParseContractAddress validates an address string against EIP-55. Only the exact
// checksummed form is accepted; single-case hex, the zero address and anything malformed
// report false.
func ParseContractAddress(s string) (common.Address, bool) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "0x") || !common.IsHexAddress(s) {
		return common.Address{}, false
	}

	addr := common.HexToAddress(s)
	if addr == (common.Address{}) || addr.Hex() != s {
		return common.Address{}, false
	}
	return addr, true
}

// ChecksumOrEmpty returns the trimmed checksummed address, or "" when invalid.
func ChecksumOrEmpty(s string) string {
	addr, ok := ParseContractAddress(s)
	if !ok {
		return ""
	}
	return addr.Hex()
}
