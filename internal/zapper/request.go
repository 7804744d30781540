package zapper

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"liquidityZap/internal/amm"
)

// ZapInRequest describes a single-token liquidity entry. The input token must
// be one of the two pair tokens.
type ZapInRequest struct {
	Caller          common.Address
	InputToken      common.Address
	TokenA          common.Address
	TokenB          common.Address
	AmountIn        *big.Int
	SlippageBps     uint64
	MinLiquidityOut *big.Int
	Deadline        uint64
	FeeOnTransfer   bool
}

// Validate checks the request invariants before any funds move.
func (r ZapInRequest) Validate() error {
	if r.AmountIn == nil || r.AmountIn.Sign() <= 0 {
		return ErrZeroAmount
	}
	if r.SlippageBps > amm.MaxSlippageBps {
		return ErrInvalidSlippage
	}
	if r.InputToken != r.TokenA && r.InputToken != r.TokenB {
		return ErrTokenNotInPair
	}
	return nil
}

// pairedToken returns the pair token that is not the given one.
func (r ZapInRequest) pairedToken() common.Address {
	if r.InputToken == r.TokenA {
		return r.TokenB
	}
	return r.TokenA
}

// ZapOutRequest describes a single-token liquidity exit. The output token
// must be one of the two pair tokens.
type ZapOutRequest struct {
	Caller          common.Address
	OutputToken     common.Address
	TokenA          common.Address
	TokenB          common.Address
	LiquidityIn     *big.Int
	SlippageBps     uint64
	MinAmountOut    *big.Int
	Deadline        uint64
	FeeOnTransfer   bool
}

// Validate checks the request invariants before any funds move.
func (r ZapOutRequest) Validate() error {
	if r.LiquidityIn == nil || r.LiquidityIn.Sign() <= 0 {
		return ErrZeroAmount
	}
	if r.SlippageBps > amm.MaxSlippageBps {
		return ErrInvalidSlippage
	}
	if r.OutputToken != r.TokenA && r.OutputToken != r.TokenB {
		return ErrUnsupportedOutputToken
	}
	return nil
}

func (r ZapOutRequest) pairedToken() common.Address {
	if r.OutputToken == r.TokenA {
		return r.TokenB
	}
	return r.TokenA
}

// swapPlan is the sized pre-swap: an ordered two-token path, the amount
// offered and the minimum accepted. Discarded when the invocation returns.
type swapPlan struct {
	path     [2]common.Address
	amountIn *big.Int
	minOut   *big.Int
}

// liquidityPlan carries both deposit legs with their per-leg floors.
type liquidityPlan struct {
	amountA *big.Int
	amountB *big.Int
	minA    *big.Int
	minB    *big.Int
}
