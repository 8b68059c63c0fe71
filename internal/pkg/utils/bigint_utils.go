package utils

import (
	"math/big"
	"strings"
)

// FormatBigInt converts a base-unit amount to a display string using the token's decimals.
// Example: amount=1234500000000000000, decimals=18 => "1.2345"
func FormatBigInt(amount *big.Int, decimals uint8) string {
	if amount == nil || amount.Sign() == 0 {
		return "0"
	}
	if decimals == 0 {
		return amount.String()
	}

	// exact: big.Float would round long 18-decimal amounts
	divisor := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	whole, frac := new(big.Int).QuoRem(new(big.Int).Abs(amount), divisor, new(big.Int))

	sign := ""
	if amount.Sign() < 0 {
		sign = "-"
	}

	fracStr := frac.String()
	if pad := int(decimals) - len(fracStr); pad > 0 {
		fracStr = strings.Repeat("0", pad) + fracStr
	}
	fracStr = strings.TrimRight(fracStr, "0")
	if fracStr == "" {
		return sign + whole.String()
	}
	return sign + whole.String() + "." + fracStr
}

// BigIntString renders nil as "0".
func BigIntString(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}
