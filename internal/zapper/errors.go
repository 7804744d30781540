package zapper

import (
	"errors"

	"liquidityZap/internal/amm"
)

// Every error below is fatal to the whole operation: no partial effect is
// kept and nothing is retried at this layer. Collaborator failures are
// wrapped with %w and abort the same way.
var (
	ErrZeroAmount             = errors.New("zero amount supplied")
	ErrPairNotFound           = errors.New("pair does not exist")
	ErrSwapBounds             = errors.New("pre-swap amount outside (0, amountIn)")
	ErrInvalidSlippage        = amm.ErrInvalidSlippage
	ErrSlippageExceeded       = errors.New("realized amount below caller floor")
	ErrUnsupportedOutputToken = errors.New("output token is neither pair token")
	ErrTokenNotInPair         = errors.New("input token is neither pair token")
	ErrReentrancy             = errors.New("reentrant call into a guarded entry point")
)
