package pairaddr

import (
	"bytes"
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Registry is the authoritative pool registry. GetPair returns the zero
// address when no pool exists for the pair.
type Registry interface {
	GetPair(ctx context.Context, tokenA, tokenB common.Address) (common.Address, error)
}

// Resolver locates the pool for a token pair, either by querying the registry
// or by recomputing the deterministic deployment address locally.
type Resolver struct {
	factory      common.Address
	initCodeHash common.Hash
	registry     Registry
}

func New(factory common.Address, initCodeHash common.Hash, registry Registry) *Resolver {
	return &Resolver{
		factory:      factory,
		initCodeHash: initCodeHash,
		registry:     registry,
	}
}

// ResolveLive performs the authoritative registry query.
func (r *Resolver) ResolveLive(ctx context.Context, tokenA, tokenB common.Address) (common.Address, error) {
	return r.registry.GetPair(ctx, tokenA, tokenB)
}

// Derive recomputes the pair address locally: CREATE2 over the sorted token
// pair with the factory's init code hash. Usable as a consistency check
// without touching the registry.
func (r *Resolver) Derive(tokenA, tokenB common.Address) common.Address {
	token0, token1 := SortTokens(tokenA, tokenB)
	salt := crypto.Keccak256Hash(token0.Bytes(), token1.Bytes())
	return crypto.CreateAddress2(r.factory, salt, r.initCodeHash.Bytes())
}

// SortTokens orders a token pair the way the factory canonicalizes it.
func SortTokens(tokenA, tokenB common.Address) (common.Address, common.Address) {
	if bytes.Compare(tokenA.Bytes(), tokenB.Bytes()) < 0 {
		return tokenA, tokenB
	}
	return tokenB, tokenA
}
