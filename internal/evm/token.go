package evm

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"liquidityZap/internal/zapper"
)

// Token is the on-chain ERC20 adapter.
type Token struct {
	backend *Backend
	addr    common.Address
}

func (t *Token) TransferFrom(ctx context.Context, from, to common.Address, amount *big.Int) error {
	parsed, err := erc20ABIInstance()
	if err != nil {
		return fmt.Errorf("parse erc20 abi: %w", err)
	}
	_, err = t.backend.transact(ctx, t.addr, parsed, "transferFrom", from, to, amount)
	return err
}

func (t *Token) Transfer(ctx context.Context, to common.Address, amount *big.Int) error {
	parsed, err := erc20ABIInstance()
	if err != nil {
		return fmt.Errorf("parse erc20 abi: %w", err)
	}
	_, err = t.backend.transact(ctx, t.addr, parsed, "transfer", to, amount)
	return err
}

func (t *Token) Approve(ctx context.Context, spender common.Address, amount *big.Int) error {
	parsed, err := erc20ABIInstance()
	if err != nil {
		return fmt.Errorf("parse erc20 abi: %w", err)
	}
	_, err = t.backend.transact(ctx, t.addr, parsed, "approve", spender, amount)
	return err
}

func (t *Token) Allowance(ctx context.Context, owner, spender common.Address) (*big.Int, error) {
	parsed, err := erc20ABIInstance()
	if err != nil {
		return nil, fmt.Errorf("parse erc20 abi: %w", err)
	}
	values, err := t.backend.call(ctx, t.addr, parsed, "allowance", owner, spender)
	if err != nil {
		return nil, err
	}
	return asBigInt(values[0])
}

func (t *Token) BalanceOf(ctx context.Context, owner common.Address) (*big.Int, error) {
	parsed, err := erc20ABIInstance()
	if err != nil {
		return nil, fmt.Errorf("parse erc20 abi: %w", err)
	}
	values, err := t.backend.call(ctx, t.addr, parsed, "balanceOf", owner)
	if err != nil {
		return nil, err
	}
	return asBigInt(values[0])
}

// Tokens resolves ERC20 adapters by address.
type Tokens struct {
	backend *Backend
}

func NewTokens(backend *Backend) *Tokens {
	return &Tokens{backend: backend}
}

func (s *Tokens) Token(addr common.Address) zapper.Token {
	return &Token{backend: s.backend, addr: addr}
}

func asBigInt(value interface{}) (*big.Int, error) {
	switch v := value.(type) {
	case *big.Int:
		return new(big.Int).Set(v), nil
	case uint8:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint32:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint64:
		return new(big.Int).SetUint64(v), nil
	default:
		return nil, fmt.Errorf("unsupported int type %T", value)
	}
}

func asAddress(value interface{}) (common.Address, error) {
	switch v := value.(type) {
	case common.Address:
		return v, nil
	case *common.Address:
		return *v, nil
	default:
		return common.Address{}, fmt.Errorf("unsupported address type %T", value)
	}
}
