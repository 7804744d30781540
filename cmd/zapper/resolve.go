package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"liquidityZap/internal/chain"
	"liquidityZap/internal/config"
	"liquidityZap/internal/evm"
	"liquidityZap/internal/pairaddr"
)

func runResolve(cmd *cobra.Command, _ []string) error {
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

	live, err := resolver.ResolveLive(ctx, tokenA, tokenB)
	if err != nil {
		return fmt.Errorf("query factory: %w", err)
	}
	derived := resolver.Derive(tokenA, tokenB)

	switch {
	case live == (common.Address{}):
		logger.Warn("factory has no pair for these tokens",
			zap.String("derived", derived.Hex()),
		)
	case live != derived:
		logger.Warn("derived address disagrees with factory",
			zap.String("live", live.Hex()),
			zap.String("derived", derived.Hex()),
		)
	}

	fmt.Printf("live:    %s\nderived: %s\n", live.Hex(), derived.Hex())
	return nil
}
