package evm

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"liquidityZap/internal/zapper"
)

// Pool is the on-chain pair adapter exposing reserves and supply.
type Pool struct {
	backend *Backend
	addr    common.Address
}

func (p *Pool) Tokens(ctx context.Context) (common.Address, common.Address, error) {
	parsed, err := pairABIInstance()
	if err != nil {
		return common.Address{}, common.Address{}, fmt.Errorf("parse pair abi: %w", err)
	}

	values, err := p.backend.call(ctx, p.addr, parsed, "token0")
	if err != nil {
		return common.Address{}, common.Address{}, err
	}
	token0, err := asAddress(values[0])
	if err != nil {
		return common.Address{}, common.Address{}, fmt.Errorf("token0: %w", err)
	}

	values, err = p.backend.call(ctx, p.addr, parsed, "token1")
	if err != nil {
		return common.Address{}, common.Address{}, err
	}
	token1, err := asAddress(values[0])
	if err != nil {
		return common.Address{}, common.Address{}, fmt.Errorf("token1: %w", err)
	}

	return token0, token1, nil
}

func (p *Pool) Reserves(ctx context.Context) (*big.Int, *big.Int, error) {
	parsed, err := pairABIInstance()
	if err != nil {
		return nil, nil, fmt.Errorf("parse pair abi: %w", err)
	}

	values, err := p.backend.call(ctx, p.addr, parsed, "getReserves")
	if err != nil {
		return nil, nil, err
	}
	if len(values) < 2 {
		return nil, nil, fmt.Errorf("getReserves returned %d values", len(values))
	}

	reserve0, err := asBigInt(values[0])
	if err != nil {
		return nil, nil, fmt.Errorf("reserve0: %w", err)
	}
	reserve1, err := asBigInt(values[1])
	if err != nil {
		return nil, nil, fmt.Errorf("reserve1: %w", err)
	}
	return reserve0, reserve1, nil
}

func (p *Pool) TotalSupply(ctx context.Context) (*big.Int, error) {
	parsed, err := pairABIInstance()
	if err != nil {
		return nil, fmt.Errorf("parse pair abi: %w", err)
	}

	values, err := p.backend.call(ctx, p.addr, parsed, "totalSupply")
	if err != nil {
		return nil, err
	}
	return asBigInt(values[0])
}

// Pools resolves pair adapters by address.
type Pools struct {
	backend *Backend
}

func NewPools(backend *Backend) *Pools {
	return &Pools{backend: backend}
}

func (s *Pools) Pool(addr common.Address) zapper.Pool {
	return &Pool{backend: s.backend, addr: addr}
}
