package amm

import (
	"errors"
	"math/big"
)

// Constant-product math for two-asset pools with the fixed 0.3% exchange fee
// (997/1000 multiplier).

var (
	ErrNonPositiveAmount = errors.New("amount must be positive")
	ErrEmptyReserves     = errors.New("empty reserves")
)

var (
	feeMul = big.NewInt(997)
	feeDen = big.NewInt(1000)

	// coefficients of the optimal pre-swap closed form, derived for the
	// 0.3% fee: 3988000 = 4*997*1000, 3988009 = 1997^2, 1994 = 2*997.
	coefIn      = big.NewInt(3988000)
	coefReserve = big.NewInt(3988009)
	coefSub     = big.NewInt(1997)
	coefDiv     = big.NewInt(1994)
)

// AmountOut returns the output amount for swapping amountIn against a pool
// with the given reserves, after the 0.3% fee.
func AmountOut(amountIn, reserveIn, reserveOut *big.Int) (*big.Int, error) {
	if amountIn == nil || amountIn.Sign() <= 0 {
		return nil, ErrNonPositiveAmount
	}
	if reserveIn == nil || reserveOut == nil || reserveIn.Sign() <= 0 || reserveOut.Sign() <= 0 {
		return nil, ErrEmptyReserves
	}

	amountInWithFee := new(big.Int).Mul(amountIn, feeMul)
	numerator := new(big.Int).Mul(amountInWithFee, reserveOut)
	denominator := new(big.Int).Mul(reserveIn, feeDen)
	denominator.Add(denominator, amountInWithFee)
	return numerator.Div(numerator, denominator), nil
}

// Quote returns the fee-free ratio equivalent of amountA in the paired asset.
func Quote(amountA, reserveA, reserveB *big.Int) (*big.Int, error) {
	if amountA == nil || amountA.Sign() <= 0 {
		return nil, ErrNonPositiveAmount
	}
	if reserveA == nil || reserveB == nil || reserveA.Sign() <= 0 || reserveB.Sign() <= 0 {
		return nil, ErrEmptyReserves
	}

	out := new(big.Int).Mul(amountA, reserveB)
	return out.Div(out, reserveA), nil
}

// OptimalSwapAmount returns the portion of amountIn to pre-swap so that the
// remainder and the swap proceeds match the pool ratio and mint the maximum
// liquidity:
//
//	toSwap = (isqrt(reserveIn * (amountIn*3988000 + reserveIn*3988009)) - reserveIn*1997) / 1994
//
// Floor division throughout; the result under-swaps by at most one unit, so
// callers must not assume an exact ratio match after deposit.
func OptimalSwapAmount(amountIn, reserveIn *big.Int) (*big.Int, error) {
	if amountIn == nil || amountIn.Sign() <= 0 {
		return nil, ErrNonPositiveAmount
	}
	if reserveIn == nil || reserveIn.Sign() <= 0 {
		return nil, ErrEmptyReserves
	}

	inner := new(big.Int).Mul(amountIn, coefIn)
	inner.Add(inner, new(big.Int).Mul(reserveIn, coefReserve))
	inner.Mul(inner, reserveIn)

	toSwap := isqrt(inner)
	toSwap.Sub(toSwap, new(big.Int).Mul(reserveIn, coefSub))
	return toSwap.Div(toSwap, coefDiv), nil
}

// isqrt returns the floor integer square root via Babylonian iteration.
// The iteration is strictly decreasing once x overshoots, so it terminates
// for the full big.Int range.
func isqrt(n *big.Int) *big.Int {
	if n.Sign() <= 0 {
		return new(big.Int)
	}
	if n.Cmp(big.NewInt(3)) <= 0 {
		return big.NewInt(1)
	}

	z := new(big.Int).Set(n)
	x := new(big.Int).Rsh(n, 1)
	x.Add(x, big.NewInt(1))
	quot := new(big.Int)
	for x.Cmp(z) < 0 {
		z.Set(x)
		quot.Div(n, x)
		x.Add(x, quot)
		x.Rsh(x, 1)
	}
	return z
}
