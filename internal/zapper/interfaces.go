package zapper

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"liquidityZap/internal/pairaddr"
)

// Collaborator interfaces. Implementations are injected at construction and
// substitutable with fakes; the orchestrator never performs ambient lookups.

// Token is a fungible asset with standard ERC20 semantics. Fee-on-transfer
// assets may deliver less than the nominal amount; callers that care measure
// balances around the call instead of trusting the nominal value.
type Token interface {
	TransferFrom(ctx context.Context, from, to common.Address, amount *big.Int) error
	Transfer(ctx context.Context, to common.Address, amount *big.Int) error
	Approve(ctx context.Context, spender common.Address, amount *big.Int) error
	Allowance(ctx context.Context, owner, spender common.Address) (*big.Int, error)
	BalanceOf(ctx context.Context, owner common.Address) (*big.Int, error)
}

// TokenSource resolves a Token collaborator by address. The liquidity token
// of a pair resolves like any other token.
type TokenSource interface {
	Token(addr common.Address) Token
}

// Registry is the pool factory lookup consumed by the pair resolver. GetPair
// returns the zero address when no pool exists for the pair.
type Registry = pairaddr.Registry

// Pool exposes the read-only state of a two-asset constant-product pool.
type Pool interface {
	Tokens(ctx context.Context) (token0, token1 common.Address, err error)
	Reserves(ctx context.Context) (reserve0, reserve1 *big.Int, err error)
	TotalSupply(ctx context.Context) (*big.Int, error)
}

// PoolSource resolves a Pool collaborator by pair address.
type PoolSource interface {
	Pool(addr common.Address) Pool
}

// Router executes swaps and liquidity operations. The deadline is forwarded
// verbatim on every call; an expired deadline makes the collaborator reject
// the call, aborting the whole operation.
type Router interface {
	// SwapExact swaps amountIn along path and returns the amounts at each
	// hop. The reported output is only trustworthy for assets without
	// transfer fees.
	SwapExact(ctx context.Context, amountIn, minOut *big.Int, path []common.Address, recipient common.Address, deadline uint64) ([]*big.Int, error)

	// SwapExactSupportingFee is the fee-on-transfer-aware variant; it
	// reports no output amount.
	SwapExactSupportingFee(ctx context.Context, amountIn, minOut *big.Int, path []common.Address, recipient common.Address, deadline uint64) error

	AddLiquidity(ctx context.Context, tokenA, tokenB common.Address, amountA, amountB, minA, minB *big.Int, recipient common.Address, deadline uint64) (usedA, usedB, liquidity *big.Int, err error)

	RemoveLiquidity(ctx context.Context, tokenA, tokenB common.Address, liquidity, minA, minB *big.Int, recipient common.Address, deadline uint64) (amountA, amountB *big.Int, err error)

	QuoteAmountsOut(ctx context.Context, amountIn *big.Int, path []common.Address) ([]*big.Int, error)

	// Address is the spender to which token allowances are granted.
	Address() common.Address
}

// Notifier receives the observable side-channel events. Implementations must
// not call back into the orchestrator.
type Notifier interface {
	ZapInExecuted(ctx context.Context, event EntryEvent)
	ZapOutExecuted(ctx context.Context, event ExitEvent)
}
