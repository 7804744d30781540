package amm

import (
	"errors"
	"math/big"
)

// MaxSlippageBps is the basis-point representation of 100%.
const MaxSlippageBps = 10_000

var ErrInvalidSlippage = errors.New("slippage tolerance exceeds 10000 bps")

var bpsDen = big.NewInt(MaxSlippageBps)

// MinOut converts a basis-point tolerance into the minimum acceptable output
// for the given amount: amount * (10000 - toleranceBps) / 10000, floored.
// The tolerance applies to a single leg; callers never compound it.
func MinOut(amount *big.Int, toleranceBps uint64) (*big.Int, error) {
	if toleranceBps > MaxSlippageBps {
		return nil, ErrInvalidSlippage
	}
	if amount == nil {
		return new(big.Int), nil
	}

	out := new(big.Int).Mul(amount, new(big.Int).SetUint64(MaxSlippageBps-toleranceBps))
	return out.Div(out, bpsDen), nil
}
