package evm

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"liquidityZap/internal/zapper"
)

// Registry is the on-chain factory adapter. GetPair returns the zero address
// when no pair has been deployed for the tokens.
type Registry struct {
	backend *Backend
	addr    common.Address
}

var _ zapper.Registry = (*Registry)(nil)

func NewRegistry(backend *Backend, factory common.Address) *Registry {
	return &Registry{backend: backend, addr: factory}
}

func (r *Registry) GetPair(ctx context.Context, tokenA, tokenB common.Address) (common.Address, error) {
	parsed, err := factoryABIInstance()
	if err != nil {
		return common.Address{}, fmt.Errorf("parse factory abi: %w", err)
	}

	values, err := r.backend.call(ctx, r.addr, parsed, "getPair", tokenA, tokenB)
	if err != nil {
		return common.Address{}, err
	}
	pair, err := asAddress(values[0])
	if err != nil {
		return common.Address{}, fmt.Errorf("getPair: %w", err)
	}
	return pair, nil
}
