package zapper

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"liquidityZap/internal/amm"
	"liquidityZap/internal/metrics"
	"liquidityZap/internal/pairaddr"
)

// Deps are the injected collaborators. All of them are required except
// Notifier.
type Deps struct {
	Resolver *pairaddr.Resolver
	Router   Router
	Tokens   TokenSource
	Pools    PoolSource
	Notifier Notifier
}

// Zapper turns a single fungible token into a two-sided liquidity position
// and back in one guarded operation per direction. All collaborator
// references are fixed at construction; the only mutable state is the
// reentrancy flag.
type Zapper struct {
	custody    common.Address
	resolver   *pairaddr.Resolver
	router     Router
	tokens     TokenSource
	pools      PoolSource
	notifier   Notifier
	allowances *allowanceManager
	lock       reentrancyLock
	logger     *zap.Logger
}

// New builds a Zapper holding funds at the custody address during an
// in-flight operation.
func New(custody common.Address, deps Deps, logger *zap.Logger) *Zapper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Zapper{
		custody:  custody,
		resolver: deps.Resolver,
		router:   deps.Router,
		tokens:   deps.Tokens,
		pools:    deps.Pools,
		notifier: deps.Notifier,
		allowances: &allowanceManager{
			owner:  custody,
			tokens: deps.Tokens,
		},
		logger: logger,
	}
}

// ResolvePool returns the pair address for the two tokens, failing with
// ErrPairNotFound when the registry has no pool for them.
func (z *Zapper) ResolvePool(ctx context.Context, tokenA, tokenB common.Address) (common.Address, error) {
	pair, err := z.resolver.ResolveLive(ctx, tokenA, tokenB)
	if err != nil {
		return common.Address{}, fmt.Errorf("resolve pair: %w", err)
	}
	if pair == (common.Address{}) {
		return common.Address{}, ErrPairNotFound
	}
	return pair, nil
}

// ZapIn pulls the input token from the caller, pre-swaps the optimal portion
// into the paired token, deposits both legs, and returns the liquidity
// minted to the caller. Any failure aborts the whole operation.
func (z *Zapper) ZapIn(ctx context.Context, req ZapInRequest) (*big.Int, error) {
	if err := z.lock.acquire(); err != nil {
		metrics.ZapIns.WithLabelValues("error").Inc()
		return nil, err
	}
	defer z.lock.release()

	start := time.Now()
	minted, err := z.zapIn(ctx, req)
	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.ZapIns.WithLabelValues(status).Inc()
	metrics.ZapDuration.WithLabelValues("zap_in").Observe(time.Since(start).Seconds())
	return minted, err
}

func (z *Zapper) zapIn(ctx context.Context, req ZapInRequest) (*big.Int, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	input := z.tokens.Token(req.InputToken)
	effectiveIn, err := z.pull(ctx, input, req.Caller, req.AmountIn, req.FeeOnTransfer)
	if err != nil {
		return nil, fmt.Errorf("pull input: %w", err)
	}
	if effectiveIn.Sign() <= 0 {
		return nil, ErrZeroAmount
	}

	spender := z.router.Address()
	if err := z.allowances.ensure(ctx, req.InputToken, spender, effectiveIn); err != nil {
		return nil, err
	}

	pair, err := z.ResolvePool(ctx, req.TokenA, req.TokenB)
	if err != nil {
		return nil, err
	}

	pool := z.pools.Pool(pair)
	reserveIn, reserveOut, err := orientedReserves(ctx, pool, req.InputToken)
	if err != nil {
		return nil, err
	}
	if reserveIn.Sign() <= 0 || reserveOut.Sign() <= 0 {
		return nil, fmt.Errorf("pool %s has empty reserves: %w", pair.Hex(), ErrSwapBounds)
	}

	toSwap, err := amm.OptimalSwapAmount(effectiveIn, reserveIn)
	if err != nil {
		return nil, fmt.Errorf("size pre-swap: %w", err)
	}
	if toSwap.Sign() <= 0 || toSwap.Cmp(effectiveIn) >= 0 {
		return nil, fmt.Errorf("pre-swap %s of %s: %w", toSwap, effectiveIn, ErrSwapBounds)
	}
	metrics.PreSwapRatio.Observe(ratio(toSwap, effectiveIn))

	expected, err := amm.AmountOut(toSwap, reserveIn, reserveOut)
	if err != nil {
		return nil, fmt.Errorf("expected swap output: %w", err)
	}
	minSwapOut, err := amm.MinOut(expected, req.SlippageBps)
	if err != nil {
		return nil, err
	}

	other := req.pairedToken()
	plan := swapPlan{
		path:     [2]common.Address{req.InputToken, other},
		amountIn: toSwap,
		minOut:   minSwapOut,
	}
	received, err := z.executeSwap(ctx, plan, req.FeeOnTransfer, req.Deadline)
	if err != nil {
		return nil, fmt.Errorf("pre-swap: %w", err)
	}

	remainder := new(big.Int).Sub(effectiveIn, toSwap)
	minRemainder, err := amm.MinOut(remainder, req.SlippageBps)
	if err != nil {
		return nil, err
	}
	minReceived, err := amm.MinOut(received, req.SlippageBps)
	if err != nil {
		return nil, err
	}
	deposit := liquidityPlan{
		amountA: remainder,
		amountB: received,
		minA:    minRemainder,
		minB:    minReceived,
	}

	if err := z.allowances.ensure(ctx, req.InputToken, spender, deposit.amountA); err != nil {
		return nil, err
	}
	if err := z.allowances.ensure(ctx, other, spender, deposit.amountB); err != nil {
		return nil, err
	}

	usedA, usedB, minted, err := z.router.AddLiquidity(ctx,
		req.InputToken, other,
		deposit.amountA, deposit.amountB,
		deposit.minA, deposit.minB,
		req.Caller, req.Deadline)
	if err != nil {
		return nil, fmt.Errorf("add liquidity: %w", err)
	}

	if minted.Cmp(orZero(req.MinLiquidityOut)) < 0 {
		return nil, fmt.Errorf("minted %s below floor %s: %w", minted, req.MinLiquidityOut, ErrSlippageExceeded)
	}

	z.logger.Info("zap-in committed",
		zap.String("caller", req.Caller.Hex()),
		zap.String("pair", pair.Hex()),
		zap.String("input_token", req.InputToken.Hex()),
		zap.String("amount_in", effectiveIn.String()),
		zap.String("pre_swap", toSwap.String()),
		zap.String("used_a", usedA.String()),
		zap.String("used_b", usedB.String()),
		zap.String("liquidity_minted", minted.String()),
	)

	if z.notifier != nil {
		z.notifier.ZapInExecuted(ctx, EntryEvent{
			Caller:          req.Caller,
			Pair:            pair,
			InputToken:      req.InputToken,
			TokenA:          req.TokenA,
			TokenB:          req.TokenB,
			AmountIn:        effectiveIn,
			LiquidityMinted: minted,
		})
	}

	return minted, nil
}

// ZapOut pulls liquidity units from the caller, withdraws both legs, swaps
// the undesired leg into the output token, and transfers the total to the
// caller. Any failure aborts the whole operation.
func (z *Zapper) ZapOut(ctx context.Context, req ZapOutRequest) (*big.Int, error) {
	if err := z.lock.acquire(); err != nil {
		metrics.ZapOuts.WithLabelValues("error").Inc()
		return nil, err
	}
	defer z.lock.release()

	start := time.Now()
	amountOut, err := z.zapOut(ctx, req)
	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.ZapOuts.WithLabelValues(status).Inc()
	metrics.ZapDuration.WithLabelValues("zap_out").Observe(time.Since(start).Seconds())
	return amountOut, err
}

func (z *Zapper) zapOut(ctx context.Context, req ZapOutRequest) (*big.Int, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	pair, err := z.ResolvePool(ctx, req.TokenA, req.TokenB)
	if err != nil {
		return nil, err
	}

	if req.Caller != z.custody {
		lpToken := z.tokens.Token(pair)
		if err := lpToken.TransferFrom(ctx, req.Caller, z.custody, req.LiquidityIn); err != nil {
			return nil, fmt.Errorf("pull liquidity: %w", err)
		}
	}

	spender := z.router.Address()
	if err := z.allowances.ensure(ctx, pair, spender, req.LiquidityIn); err != nil {
		return nil, err
	}

	other := req.pairedToken()
	outputLeg, otherLeg, err := z.withdraw(ctx, req, other, req.Deadline)
	if err != nil {
		return nil, fmt.Errorf("remove liquidity: %w", err)
	}

	amountOut := new(big.Int).Set(outputLeg)
	if otherLeg.Sign() > 0 {
		quoted, err := z.router.QuoteAmountsOut(ctx, otherLeg, []common.Address{other, req.OutputToken})
		if err != nil {
			return nil, fmt.Errorf("quote conversion: %w", err)
		}
		minOut, err := amm.MinOut(quoted[len(quoted)-1], req.SlippageBps)
		if err != nil {
			return nil, err
		}

		if err := z.allowances.ensure(ctx, other, spender, otherLeg); err != nil {
			return nil, err
		}
		plan := swapPlan{
			path:     [2]common.Address{other, req.OutputToken},
			amountIn: otherLeg,
			minOut:   minOut,
		}
		converted, err := z.executeSwap(ctx, plan, req.FeeOnTransfer, req.Deadline)
		if err != nil {
			return nil, fmt.Errorf("convert leg: %w", err)
		}
		amountOut.Add(amountOut, converted)
	}

	if amountOut.Cmp(orZero(req.MinAmountOut)) < 0 {
		return nil, fmt.Errorf("amount out %s below floor %s: %w", amountOut, req.MinAmountOut, ErrSlippageExceeded)
	}

	output := z.tokens.Token(req.OutputToken)
	if err := output.Transfer(ctx, req.Caller, amountOut); err != nil {
		return nil, fmt.Errorf("transfer output: %w", err)
	}

	z.logger.Info("zap-out committed",
		zap.String("caller", req.Caller.Hex()),
		zap.String("pair", pair.Hex()),
		zap.String("output_token", req.OutputToken.Hex()),
		zap.String("liquidity_in", req.LiquidityIn.String()),
		zap.String("amount_out", amountOut.String()),
	)

	if z.notifier != nil {
		z.notifier.ZapOutExecuted(ctx, ExitEvent{
			Caller:      req.Caller,
			Pair:        pair,
			OutputToken: req.OutputToken,
			TokenA:      req.TokenA,
			TokenB:      req.TokenB,
			LiquidityIn: req.LiquidityIn,
			AmountOut:   amountOut,
		})
	}

	return amountOut, nil
}

// pull transfers amount from the caller into custody. For fee-on-transfer
// tokens the credited amount is measured from the custody balance delta
// instead of the nominal amount.
func (z *Zapper) pull(ctx context.Context, token Token, from common.Address, amount *big.Int, feeOnTransfer bool) (*big.Int, error) {
	if from == z.custody {
		// caller and custody are the same account; funds are already here
		return new(big.Int).Set(amount), nil
	}
	if !feeOnTransfer {
		if err := token.TransferFrom(ctx, from, z.custody, amount); err != nil {
			return nil, err
		}
		return new(big.Int).Set(amount), nil
	}
	return z.measured(ctx, token, func() error {
		return token.TransferFrom(ctx, from, z.custody, amount)
	})
}

// executeSwap runs the sized swap with custody as recipient and returns the
// amount of the destination token credited.
func (z *Zapper) executeSwap(ctx context.Context, plan swapPlan, feeOnTransfer bool, deadline uint64) (*big.Int, error) {
	path := []common.Address{plan.path[0], plan.path[1]}

	if feeOnTransfer {
		dest := z.tokens.Token(plan.path[1])
		return z.measured(ctx, dest, func() error {
			return z.router.SwapExactSupportingFee(ctx, plan.amountIn, plan.minOut, path, z.custody, deadline)
		})
	}

	amounts, err := z.router.SwapExact(ctx, plan.amountIn, plan.minOut, path, z.custody, deadline)
	if err != nil {
		return nil, err
	}
	if len(amounts) == 0 {
		return nil, fmt.Errorf("router reported no output amounts")
	}
	return amounts[len(amounts)-1], nil
}

// withdraw removes liquidity into custody and returns the output-token leg
// and the paired-token leg. With fee-on-transfer accounting both legs are
// measured from balance deltas rather than the router's report.
func (z *Zapper) withdraw(ctx context.Context, req ZapOutRequest, other common.Address, deadline uint64) (*big.Int, *big.Int, error) {
	if !req.FeeOnTransfer {
		outputLeg, otherLeg, err := z.router.RemoveLiquidity(ctx,
			req.OutputToken, other,
			req.LiquidityIn, new(big.Int), new(big.Int),
			z.custody, deadline)
		if err != nil {
			return nil, nil, err
		}
		return outputLeg, otherLeg, nil
	}

	outputToken := z.tokens.Token(req.OutputToken)
	otherToken := z.tokens.Token(other)

	outputBefore, err := outputToken.BalanceOf(ctx, z.custody)
	if err != nil {
		return nil, nil, fmt.Errorf("balance before: %w", err)
	}
	otherBefore, err := otherToken.BalanceOf(ctx, z.custody)
	if err != nil {
		return nil, nil, fmt.Errorf("balance before: %w", err)
	}

	if _, _, err := z.router.RemoveLiquidity(ctx,
		req.OutputToken, other,
		req.LiquidityIn, new(big.Int), new(big.Int),
		z.custody, deadline); err != nil {
		return nil, nil, err
	}

	outputAfter, err := outputToken.BalanceOf(ctx, z.custody)
	if err != nil {
		return nil, nil, fmt.Errorf("balance after: %w", err)
	}
	otherAfter, err := otherToken.BalanceOf(ctx, z.custody)
	if err != nil {
		return nil, nil, fmt.Errorf("balance after: %w", err)
	}

	return new(big.Int).Sub(outputAfter, outputBefore), new(big.Int).Sub(otherAfter, otherBefore), nil
}

// measured reads the custody balance around call and trusts only the delta.
func (z *Zapper) measured(ctx context.Context, token Token, call func() error) (*big.Int, error) {
	before, err := token.BalanceOf(ctx, z.custody)
	if err != nil {
		return nil, fmt.Errorf("balance before: %w", err)
	}
	if err := call(); err != nil {
		return nil, err
	}
	after, err := token.BalanceOf(ctx, z.custody)
	if err != nil {
		return nil, fmt.Errorf("balance after: %w", err)
	}
	return new(big.Int).Sub(after, before), nil
}

func orientedReserves(ctx context.Context, pool Pool, inputToken common.Address) (*big.Int, *big.Int, error) {
	token0, _, err := pool.Tokens(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("pool tokens: %w", err)
	}
	reserve0, reserve1, err := pool.Reserves(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("pool reserves: %w", err)
	}
	if inputToken == token0 {
		return reserve0, reserve1, nil
	}
	return reserve1, reserve0, nil
}

func orZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v
}

func ratio(part, whole *big.Int) float64 {
	if whole.Sign() == 0 {
		return 0
	}
	r, _ := new(big.Float).Quo(new(big.Float).SetInt(part), new(big.Float).SetInt(whole)).Float64()
	return r
}
