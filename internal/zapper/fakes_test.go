package zapper

import (
	"bytes"
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"liquidityZap/internal/amm"
)

// In-memory constant-product environment for orchestrator tests: tokens with
// optional transfer fees, pairs with reserves and a liquidity token, and a
// router that mutates them the way the real one would.

type fakeToken struct {
	addr       common.Address
	balances   map[common.Address]*big.Int
	allowances map[common.Address]map[common.Address]*big.Int
	feeBps     int64
	approvals  int
	onPull     func() error
}

func newFakeToken(addr common.Address) *fakeToken {
	return &fakeToken{
		addr:       addr,
		balances:   make(map[common.Address]*big.Int),
		allowances: make(map[common.Address]map[common.Address]*big.Int),
	}
}

func (t *fakeToken) mint(owner common.Address, amount int64) {
	t.credit(owner, big.NewInt(amount))
}

func (t *fakeToken) credit(owner common.Address, amount *big.Int) {
	cur, ok := t.balances[owner]
	if !ok {
		cur = new(big.Int)
		t.balances[owner] = cur
	}
	cur.Add(cur, amount)
}

func (t *fakeToken) balance(owner common.Address) *big.Int {
	if cur, ok := t.balances[owner]; ok {
		return new(big.Int).Set(cur)
	}
	return new(big.Int)
}

// move debits the nominal amount from the sender and credits the amount net
// of the transfer fee; returns the credited amount.
func (t *fakeToken) move(from, to common.Address, amount *big.Int) (*big.Int, error) {
	cur := t.balances[from]
	if cur == nil || cur.Cmp(amount) < 0 {
		return nil, fmt.Errorf("token %s: insufficient balance of %s", t.addr.Hex(), from.Hex())
	}
	cur.Sub(cur, amount)

	credited := new(big.Int).Set(amount)
	if t.feeBps > 0 {
		fee := new(big.Int).Mul(amount, big.NewInt(t.feeBps))
		fee.Div(fee, big.NewInt(10_000))
		credited.Sub(credited, fee)
	}
	t.credit(to, credited)
	return credited, nil
}

func (t *fakeToken) TransferFrom(_ context.Context, from, to common.Address, amount *big.Int) error {
	if t.onPull != nil {
		if err := t.onPull(); err != nil {
			return err
		}
	}
	_, err := t.move(from, to, amount)
	return err
}

func (t *fakeToken) Transfer(_ context.Context, to common.Address, amount *big.Int) error {
	// custody is the only direct sender in these tests
	_, err := t.move(custodyAddr, to, amount)
	return err
}

func (t *fakeToken) Approve(_ context.Context, spender common.Address, amount *big.Int) error {
	owner := custodyAddr
	if t.allowances[owner] == nil {
		t.allowances[owner] = make(map[common.Address]*big.Int)
	}
	t.allowances[owner][spender] = new(big.Int).Set(amount)
	t.approvals++
	return nil
}

func (t *fakeToken) Allowance(_ context.Context, owner, spender common.Address) (*big.Int, error) {
	if m, ok := t.allowances[owner]; ok {
		if a, ok := m[spender]; ok {
			return new(big.Int).Set(a), nil
		}
	}
	return new(big.Int), nil
}

func (t *fakeToken) BalanceOf(_ context.Context, owner common.Address) (*big.Int, error) {
	return t.balance(owner), nil
}

type fakePair struct {
	addr     common.Address
	token0   *fakeToken
	token1   *fakeToken
	reserve0 *big.Int
	reserve1 *big.Int
	lp       *fakeToken
	supply   *big.Int
}

func (p *fakePair) Tokens(context.Context) (common.Address, common.Address, error) {
	return p.token0.addr, p.token1.addr, nil
}

func (p *fakePair) Reserves(context.Context) (*big.Int, *big.Int, error) {
	return new(big.Int).Set(p.reserve0), new(big.Int).Set(p.reserve1), nil
}

func (p *fakePair) TotalSupply(context.Context) (*big.Int, error) {
	return new(big.Int).Set(p.supply), nil
}

func (p *fakePair) oriented(token common.Address) (*big.Int, *big.Int, *fakeToken, *fakeToken) {
	if token == p.token0.addr {
		return p.reserve0, p.reserve1, p.token0, p.token1
	}
	return p.reserve1, p.reserve0, p.token1, p.token0
}

type fakeEnv struct {
	tokens map[common.Address]*fakeToken
	pairs  map[common.Address]*fakePair
	router *fakeRouter
}

func newFakeEnv() *fakeEnv {
	env := &fakeEnv{
		tokens: make(map[common.Address]*fakeToken),
		pairs:  make(map[common.Address]*fakePair),
	}
	env.router = &fakeRouter{env: env, caller: custodyAddr, addr: routerAddr}
	return env
}

func (e *fakeEnv) addToken(addr common.Address) *fakeToken {
	t := newFakeToken(addr)
	e.tokens[addr] = t
	return t
}

// addPair creates a pair, seeds its reserves and mints the initial liquidity
// supply to the seeder.
func (e *fakeEnv) addPair(addr common.Address, a, b *fakeToken, reserveA, reserveB int64, seeder common.Address) *fakePair {
	t0, t1 := a, b
	r0, r1 := big.NewInt(reserveA), big.NewInt(reserveB)
	if bytes.Compare(t1.addr.Bytes(), t0.addr.Bytes()) < 0 {
		t0, t1 = t1, t0
		r0, r1 = r1, r0
	}

	lp := newFakeToken(addr)
	pair := &fakePair{
		addr:     addr,
		token0:   t0,
		token1:   t1,
		reserve0: r0,
		reserve1: r1,
		lp:       lp,
		supply:   new(big.Int).Sqrt(new(big.Int).Mul(r0, r1)),
	}
	lp.credit(seeder, pair.supply)
	t0.credit(addr, r0)
	t1.credit(addr, r1)

	e.pairs[addr] = pair
	e.tokens[addr] = lp
	return pair
}

func (e *fakeEnv) Token(addr common.Address) Token {
	return e.tokens[addr]
}

func (e *fakeEnv) Pool(addr common.Address) Pool {
	return e.pairs[addr]
}

func (e *fakeEnv) GetPair(_ context.Context, tokenA, tokenB common.Address) (common.Address, error) {
	for addr, pair := range e.pairs {
		has := func(t common.Address) bool {
			return t == pair.token0.addr || t == pair.token1.addr
		}
		if has(tokenA) && has(tokenB) && tokenA != tokenB {
			return addr, nil
		}
	}
	return common.Address{}, nil
}

type fakeRouter struct {
	env    *fakeEnv
	caller common.Address
	addr   common.Address
	now    uint64
}

func (r *fakeRouter) Address() common.Address { return r.addr }

func (r *fakeRouter) pairFor(a, b common.Address) (*fakePair, error) {
	addr, err := r.env.GetPair(context.Background(), a, b)
	if err != nil {
		return nil, err
	}
	if addr == (common.Address{}) {
		return nil, fmt.Errorf("router: no pair for %s/%s", a.Hex(), b.Hex())
	}
	return r.env.pairs[addr], nil
}

func (r *fakeRouter) checkDeadline(deadline uint64) error {
	if deadline > 0 && deadline < r.now {
		return fmt.Errorf("router: deadline expired")
	}
	return nil
}

func (r *fakeRouter) swap(amountIn, minOut *big.Int, path []common.Address, recipient common.Address, deadline uint64) (*big.Int, error) {
	if err := r.checkDeadline(deadline); err != nil {
		return nil, err
	}
	pair, err := r.pairFor(path[0], path[1])
	if err != nil {
		return nil, err
	}

	reserveIn, reserveOut, inToken, outToken := pair.oriented(path[0])

	credited, err := inToken.move(r.caller, pair.addr, amountIn)
	if err != nil {
		return nil, err
	}

	out, err := amm.AmountOut(credited, reserveIn, reserveOut)
	if err != nil {
		return nil, err
	}
	if out.Cmp(minOut) < 0 {
		return nil, fmt.Errorf("router: insufficient output amount")
	}

	reserveIn.Add(reserveIn, credited)
	reserveOut.Sub(reserveOut, out)
	if _, err := outToken.move(pair.addr, recipient, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *fakeRouter) SwapExact(_ context.Context, amountIn, minOut *big.Int, path []common.Address, recipient common.Address, deadline uint64) ([]*big.Int, error) {
	out, err := r.swap(amountIn, minOut, path, recipient, deadline)
	if err != nil {
		return nil, err
	}
	return []*big.Int{new(big.Int).Set(amountIn), out}, nil
}

func (r *fakeRouter) SwapExactSupportingFee(_ context.Context, amountIn, minOut *big.Int, path []common.Address, recipient common.Address, deadline uint64) error {
	_, err := r.swap(amountIn, minOut, path, recipient, deadline)
	return err
}

func (r *fakeRouter) AddLiquidity(_ context.Context, tokenA, tokenB common.Address, amountA, amountB, minA, minB *big.Int, recipient common.Address, deadline uint64) (*big.Int, *big.Int, *big.Int, error) {
	if err := r.checkDeadline(deadline); err != nil {
		return nil, nil, nil, err
	}
	pair, err := r.pairFor(tokenA, tokenB)
	if err != nil {
		return nil, nil, nil, err
	}

	reserveA, reserveB, aToken, bToken := pair.oriented(tokenA)

	useA, useB := new(big.Int).Set(amountA), new(big.Int).Set(amountB)
	if reserveA.Sign() > 0 && reserveB.Sign() > 0 {
		bOptimal, err := amm.Quote(amountA, reserveA, reserveB)
		if err != nil {
			return nil, nil, nil, err
		}
		if bOptimal.Cmp(amountB) <= 0 {
			if bOptimal.Cmp(minB) < 0 {
				return nil, nil, nil, fmt.Errorf("router: insufficient B amount")
			}
			useB = bOptimal
		} else {
			aOptimal, err := amm.Quote(amountB, reserveB, reserveA)
			if err != nil {
				return nil, nil, nil, err
			}
			if aOptimal.Cmp(minA) < 0 {
				return nil, nil, nil, fmt.Errorf("router: insufficient A amount")
			}
			useA = aOptimal
		}
	}

	credA, err := aToken.move(r.caller, pair.addr, useA)
	if err != nil {
		return nil, nil, nil, err
	}
	credB, err := bToken.move(r.caller, pair.addr, useB)
	if err != nil {
		return nil, nil, nil, err
	}

	var liquidity *big.Int
	if pair.supply.Sign() == 0 {
		liquidity = new(big.Int).Sqrt(new(big.Int).Mul(credA, credB))
	} else {
		byA := new(big.Int).Mul(credA, pair.supply)
		byA.Div(byA, reserveA)
		byB := new(big.Int).Mul(credB, pair.supply)
		byB.Div(byB, reserveB)
		liquidity = byA
		if byB.Cmp(byA) < 0 {
			liquidity = byB
		}
	}

	reserveA.Add(reserveA, credA)
	reserveB.Add(reserveB, credB)
	pair.supply.Add(pair.supply, liquidity)
	pair.lp.credit(recipient, liquidity)

	return useA, useB, liquidity, nil
}

func (r *fakeRouter) RemoveLiquidity(_ context.Context, tokenA, tokenB common.Address, liquidity, minA, minB *big.Int, recipient common.Address, deadline uint64) (*big.Int, *big.Int, error) {
	if err := r.checkDeadline(deadline); err != nil {
		return nil, nil, err
	}
	pair, err := r.pairFor(tokenA, tokenB)
	if err != nil {
		return nil, nil, err
	}

	held := pair.lp.balances[r.caller]
	if held == nil || held.Cmp(liquidity) < 0 {
		return nil, nil, fmt.Errorf("router: insufficient liquidity balance")
	}

	reserveA, reserveB, aToken, bToken := pair.oriented(tokenA)

	amountA := new(big.Int).Mul(liquidity, reserveA)
	amountA.Div(amountA, pair.supply)
	amountB := new(big.Int).Mul(liquidity, reserveB)
	amountB.Div(amountB, pair.supply)
	if amountA.Cmp(minA) < 0 || amountB.Cmp(minB) < 0 {
		return nil, nil, fmt.Errorf("router: insufficient withdrawn amount")
	}

	held.Sub(held, liquidity)
	pair.supply.Sub(pair.supply, liquidity)
	reserveA.Sub(reserveA, amountA)
	reserveB.Sub(reserveB, amountB)

	if _, err := aToken.move(pair.addr, recipient, amountA); err != nil {
		return nil, nil, err
	}
	if _, err := bToken.move(pair.addr, recipient, amountB); err != nil {
		return nil, nil, err
	}
	return amountA, amountB, nil
}

func (r *fakeRouter) QuoteAmountsOut(_ context.Context, amountIn *big.Int, path []common.Address) ([]*big.Int, error) {
	pair, err := r.pairFor(path[0], path[1])
	if err != nil {
		return nil, err
	}
	reserveIn, reserveOut, _, _ := pair.oriented(path[0])
	out, err := amm.AmountOut(amountIn, reserveIn, reserveOut)
	if err != nil {
		return nil, err
	}
	return []*big.Int{new(big.Int).Set(amountIn), out}, nil
}
