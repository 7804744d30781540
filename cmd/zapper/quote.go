package main

import (
	"context"
	"fmt"
	"math/big"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"liquidityZap/internal/amm"
	"liquidityZap/internal/chain"
	"liquidityZap/internal/config"
	"liquidityZap/internal/evm"
	"liquidityZap/internal/pairaddr"
	"liquidityZap/internal/zapper"
)

func runQuoteIn(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.RPCURL == "" {
		return fmt.Errorf("rpc url is required")
	}
	if cfg.Factory == "" {
		return fmt.Errorf("factory address is required")
	}
	if cfg.TokenA == "" || cfg.TokenB == "" {
		return fmt.Errorf("both pair token addresses are required")
	}
	if cfg.Token == "" {
		return fmt.Errorf("input token address is required")
	}

	amountIn, err := parseAmount(cfg.Amount)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	chainClient, err := chain.NewClient(ctx, cfg.RPCURL)
	if err != nil {
		return fmt.Errorf("connect rpc: %w", err)
	}
	defer chainClient.Close()

	backend, err := evm.NewBackend(ctx, chainClient, cfg.PrivateKey, logger)
	if err != nil {
		return err
	}

	registry := evm.NewRegistry(backend, common.HexToAddress(cfg.Factory))
	resolver := pairaddr.New(common.HexToAddress(cfg.Factory), common.HexToHash(cfg.InitCodeHash), registry)

	tokenA := common.HexToAddress(cfg.TokenA)
	tokenB := common.HexToAddress(cfg.TokenB)
	input := common.HexToAddress(cfg.Token)
	if input != tokenA && input != tokenB {
		return zapper.ErrTokenNotInPair
	}

	pair, err := resolver.ResolveLive(ctx, tokenA, tokenB)
	if err != nil {
		return fmt.Errorf("query factory: %w", err)
	}
	if pair == (common.Address{}) {
		return zapper.ErrPairNotFound
	}

	pool := evm.NewPools(backend).Pool(pair)
	token0, _, err := pool.Tokens(ctx)
	if err != nil {
		return fmt.Errorf("read pair tokens: %w", err)
	}
	reserve0, reserve1, err := pool.Reserves(ctx)
	if err != nil {
		return fmt.Errorf("read reserves: %w", err)
	}

	reserveIn, reserveOut := reserve0, reserve1
	if input != token0 {
		reserveIn, reserveOut = reserve1, reserve0
	}

	toSwap, err := amm.OptimalSwapAmount(amountIn, reserveIn)
	if err != nil {
		return err
	}
	if toSwap.Sign() <= 0 || toSwap.Cmp(amountIn) >= 0 {
		return fmt.Errorf("%w: computed pre-swap %s for input %s", zapper.ErrSwapBounds, toSwap, amountIn)
	}

	expected, err := amm.AmountOut(toSwap, reserveIn, reserveOut)
	if err != nil {
		return err
	}
	minOut, err := amm.MinOut(expected, cfg.SlippageBps)
	if err != nil {
		return err
	}
	remainder := new(big.Int).Sub(amountIn, toSwap)

	supply, err := pool.TotalSupply(ctx)
	if err != nil {
		return fmt.Errorf("read total supply: %w", err)
	}
	liquidity := estimateLiquidity(remainder, expected, toSwap, reserveIn, reserveOut, supply)

	fmt.Printf("pair:          %s\n", pair.Hex())
	fmt.Printf("reserve in:    %s\n", reserveIn)
	fmt.Printf("reserve out:   %s\n", reserveOut)
	fmt.Printf("pre-swap:      %s\n", toSwap)
	fmt.Printf("keep:          %s\n", remainder)
	fmt.Printf("expected:      %s\n", expected)
	fmt.Printf("min out:       %s (%d bps)\n", minOut, cfg.SlippageBps)
	fmt.Printf("est liquidity: %s\n", liquidity)
	return nil
}

// estimateLiquidity projects the liquidity minted for depositing both legs
// into the post-swap reserves, ignoring the protocol fee mint.
func estimateLiquidity(legIn, legOut, toSwap, reserveIn, reserveOut, supply *big.Int) *big.Int {
	newReserveIn := new(big.Int).Add(reserveIn, toSwap)
	newReserveOut := new(big.Int).Sub(reserveOut, legOut)
	if newReserveIn.Sign() <= 0 || newReserveOut.Sign() <= 0 || supply.Sign() <= 0 {
		return new(big.Int)
	}

	byIn := new(big.Int).Mul(legIn, supply)
	byIn.Div(byIn, newReserveIn)
	byOut := new(big.Int).Mul(legOut, supply)
	byOut.Div(byOut, newReserveOut)

	if byIn.Cmp(byOut) < 0 {
		return byIn
	}
	return byOut
}

func parseAmount(s string) (*big.Int, error) {
	if s == "" {
		return nil, fmt.Errorf("amount is required")
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("invalid amount %q", s)
	}
	return v, nil
}
