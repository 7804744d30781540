package zapper

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// EntryEvent is emitted after a committed zap-in.
type EntryEvent struct {
	Caller          common.Address
	Pair            common.Address
	InputToken      common.Address
	TokenA          common.Address
	TokenB          common.Address
	AmountIn        *big.Int
	LiquidityMinted *big.Int
}

// ExitEvent is emitted after a committed zap-out.
type ExitEvent struct {
	Caller      common.Address
	Pair        common.Address
	OutputToken common.Address
	TokenA      common.Address
	TokenB      common.Address
	LiquidityIn *big.Int
	AmountOut   *big.Int
}
