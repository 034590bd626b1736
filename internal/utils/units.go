package utils

import (
	"fmt"
	"math/big"
	"strings"
)

// weiPerEther is 10^18.
var weiPerEther = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

// EtherToWei converts a decimal ether amount ("1.5", "0.000000000000000001")
// into an integer wei value. Amounts finer than 1 wei are rejected rather than
// silently truncated.
func EtherToWei(amount string) (*big.Int, error) {
	amount = strings.TrimSpace(amount)
	if amount == "" {
		return nil, fmt.Errorf("empty amount")
	}

	rat, ok := new(big.Rat).SetString(amount)
	if !ok {
		return nil, fmt.Errorf("invalid decimal amount: %q", amount)
	}
	if rat.Sign() <= 0 {
		return nil, fmt.Errorf("amount must be positive: %q", amount)
	}

	rat.Mul(rat, new(big.Rat).SetInt(weiPerEther))
	if !rat.IsInt() {
		return nil, fmt.Errorf("amount %q has sub-wei precision", amount)
	}
	return new(big.Int).Set(rat.Num()), nil
}

// WeiToEther renders an integer wei value as a decimal ether string with
// trailing zeros trimmed, so that EtherToWei(WeiToEther(w)) == w.
func WeiToEther(wei *big.Int) string {
	if wei == nil {
		return "0"
	}
	rat := new(big.Rat).SetFrac(wei, weiPerEther)
	s := rat.FloatString(18)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	if s == "" || s == "-" {
		return "0"
	}
	return s
}
