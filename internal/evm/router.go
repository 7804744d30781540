package evm

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"

	"liquidityZap/internal/pairaddr"
)

var (
	transferTopic = crypto.Keccak256Hash([]byte("Transfer(address,address,uint256)"))
	mintTopic     = crypto.Keccak256Hash([]byte("Mint(address,uint256,uint256)"))
	burnTopic     = crypto.Keccak256Hash([]byte("Burn(address,uint256,uint256,address)"))
)

// Router is the on-chain V2 router adapter. Swap and liquidity calls are
// signed transactions; realized amounts come from quotes and receipt logs
// since transaction return data is not observable.
type Router struct {
	backend *Backend
	addr    common.Address
}

func NewRouter(backend *Backend, addr common.Address) *Router {
	return &Router{backend: backend, addr: addr}
}

func (r *Router) Address() common.Address {
	return r.addr
}

func (r *Router) SwapExact(ctx context.Context, amountIn, minOut *big.Int, path []common.Address, recipient common.Address, deadline uint64) ([]*big.Int, error) {
	amounts, err := r.QuoteAmountsOut(ctx, amountIn, path)
	if err != nil {
		return nil, err
	}

	parsed, err := routerABIInstance()
	if err != nil {
		return nil, fmt.Errorf("parse router abi: %w", err)
	}
	if _, err := r.backend.transact(ctx, r.addr, parsed, "swapExactTokensForTokens",
		amountIn, minOut, path, recipient, new(big.Int).SetUint64(deadline)); err != nil {
		return nil, err
	}
	return amounts, nil
}

func (r *Router) SwapExactSupportingFee(ctx context.Context, amountIn, minOut *big.Int, path []common.Address, recipient common.Address, deadline uint64) error {
	parsed, err := routerABIInstance()
	if err != nil {
		return fmt.Errorf("parse router abi: %w", err)
	}
	_, err = r.backend.transact(ctx, r.addr, parsed, "swapExactTokensForTokensSupportingFeeOnTransferTokens",
		amountIn, minOut, path, recipient, new(big.Int).SetUint64(deadline))
	return err
}

func (r *Router) AddLiquidity(ctx context.Context, tokenA, tokenB common.Address, amountA, amountB, minA, minB *big.Int, recipient common.Address, deadline uint64) (*big.Int, *big.Int, *big.Int, error) {
	parsed, err := routerABIInstance()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("parse router abi: %w", err)
	}

	receipt, err := r.backend.transact(ctx, r.addr, parsed, "addLiquidity",
		tokenA, tokenB, amountA, amountB, minA, minB, recipient, new(big.Int).SetUint64(deadline))
	if err != nil {
		return nil, nil, nil, err
	}

	pair, amount0, amount1, err := pairAmountsFromLogs(receipt.Logs, mintTopic)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("parse mint log: %w", err)
	}

	liquidity, err := mintedFromLogs(receipt.Logs, pair, recipient)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("parse liquidity transfer: %w", err)
	}

	usedA, usedB := orientAmounts(tokenA, tokenB, amount0, amount1)
	return usedA, usedB, liquidity, nil
}

func (r *Router) RemoveLiquidity(ctx context.Context, tokenA, tokenB common.Address, liquidity, minA, minB *big.Int, recipient common.Address, deadline uint64) (*big.Int, *big.Int, error) {
	parsed, err := routerABIInstance()
	if err != nil {
		return nil, nil, fmt.Errorf("parse router abi: %w", err)
	}

	receipt, err := r.backend.transact(ctx, r.addr, parsed, "removeLiquidity",
		tokenA, tokenB, liquidity, minA, minB, recipient, new(big.Int).SetUint64(deadline))
	if err != nil {
		return nil, nil, err
	}

	_, amount0, amount1, err := pairAmountsFromLogs(receipt.Logs, burnTopic)
	if err != nil {
		return nil, nil, fmt.Errorf("parse burn log: %w", err)
	}

	amountA, amountB := orientAmounts(tokenA, tokenB, amount0, amount1)
	return amountA, amountB, nil
}

func (r *Router) QuoteAmountsOut(ctx context.Context, amountIn *big.Int, path []common.Address) ([]*big.Int, error) {
	parsed, err := routerABIInstance()
	if err != nil {
		return nil, fmt.Errorf("parse router abi: %w", err)
	}

	values, err := r.backend.call(ctx, r.addr, parsed, "getAmountsOut", amountIn, path)
	if err != nil {
		return nil, err
	}
	amounts, ok := values[0].([]*big.Int)
	if !ok {
		return nil, fmt.Errorf("unsupported amounts type %T", values[0])
	}
	return amounts, nil
}

// pairAmountsFromLogs finds the first pair event with the given topic and
// returns the emitting pair plus its two data amounts.
func pairAmountsFromLogs(logs []*types.Log, topic common.Hash) (common.Address, *big.Int, *big.Int, error) {
	for _, log := range logs {
		if len(log.Topics) == 0 || log.Topics[0] != topic {
			continue
		}
		if len(log.Data) < 64 {
			return common.Address{}, nil, nil, fmt.Errorf("event data too short: %d bytes", len(log.Data))
		}
		amount0 := new(big.Int).SetBytes(log.Data[:32])
		amount1 := new(big.Int).SetBytes(log.Data[32:64])
		return log.Address, amount0, amount1, nil
	}
	return common.Address{}, nil, nil, fmt.Errorf("event %s not found in receipt", topic.Hex())
}

// mintedFromLogs returns the liquidity amount from the pair's zero-origin
// Transfer to the recipient.
func mintedFromLogs(logs []*types.Log, pair, recipient common.Address) (*big.Int, error) {
	for _, log := range logs {
		if log.Address != pair || len(log.Topics) != 3 || log.Topics[0] != transferTopic {
			continue
		}
		from := common.BytesToAddress(log.Topics[1].Bytes())
		to := common.BytesToAddress(log.Topics[2].Bytes())
		if from != (common.Address{}) || to != recipient {
			continue
		}
		if len(log.Data) < 32 {
			return nil, fmt.Errorf("transfer data too short: %d bytes", len(log.Data))
		}
		return new(big.Int).SetBytes(log.Data[:32]), nil
	}
	return nil, fmt.Errorf("liquidity transfer to %s not found in receipt", recipient.Hex())
}

func orientAmounts(tokenA, tokenB common.Address, amount0, amount1 *big.Int) (*big.Int, *big.Int) {
	token0, _ := pairaddr.SortTokens(tokenA, tokenB)
	if tokenA == token0 {
		return amount0, amount1
	}
	return amount1, amount0
}
