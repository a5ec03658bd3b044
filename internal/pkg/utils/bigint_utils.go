package utils

import (
	"math/big"
	"strings"
)

// FormatBigInt converts a raw on-chain amount into a decimal string with the given decimals.
// Trailing zeros are trimmed: amount=1234500000000000000, decimals=18 => "1.2345".
func FormatBigInt(amount *big.Int, decimals uint8) string {
	if amount == nil || amount.Sign() == 0 {
		return "0"
	}
	if decimals == 0 {
		return amount.String()
	}

	negative := amount.Sign() < 0
	digits := new(big.Int).Abs(amount).String()
	d := int(decimals)
	if len(digits) <= d {
		digits = strings.Repeat("0", d-len(digits)+1) + digits
	}
	intPart := digits[:len(digits)-d]
	fracPart := strings.TrimRight(digits[len(digits)-d:], "0")

	formatted := intPart
	if fracPart != "" {
		formatted += "." + fracPart
	}
	if negative {
		formatted = "-" + formatted
	}
	return formatted
}
