package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"liquidityZap/internal/chain"
	"liquidityZap/internal/config"
	"liquidityZap/internal/evm"
	"liquidityZap/internal/pairaddr"
	"liquidityZap/internal/storage"
	"liquidityZap/internal/storage/postgres"
	"liquidityZap/internal/zapper"
)

func runZapIn(cmd *cobra.Command, _ []string) error {
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

	amountIn, err := parseAmount(cfg.Amount)
	if err != nil {
		return err
	}
	minLiquidity, err := parseAmount(cfg.MinOut)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	z, backend, cleanup, err := newZapper(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	req := zapper.ZapInRequest{
		Caller:          backend.From(),
		InputToken:      common.HexToAddress(cfg.Token),
		TokenA:          common.HexToAddress(cfg.TokenA),
		TokenB:          common.HexToAddress(cfg.TokenB),
		AmountIn:        amountIn,
		SlippageBps:     cfg.SlippageBps,
		MinLiquidityOut: minLiquidity,
		Deadline:        uint64(time.Now().Add(cfg.Deadline).Unix()),
		FeeOnTransfer:   cfg.FeeOnTransfer,
	}

	minted, err := z.ZapIn(ctx, req)
	if err != nil {
		return err
	}

	fmt.Printf("liquidity minted: %s\n", minted)
	return nil
}

func runZapOut(cmd *cobra.Command, _ []string) error {
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

	liquidity, err := parseAmount(cfg.Liquidity)
	if err != nil {
		return fmt.Errorf("liquidity: %w", err)
	}
	minOut, err := parseAmount(cfg.MinOut)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	z, backend, cleanup, err := newZapper(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	req := zapper.ZapOutRequest{
		Caller:        backend.From(),
		OutputToken:   common.HexToAddress(cfg.Token),
		TokenA:        common.HexToAddress(cfg.TokenA),
		TokenB:        common.HexToAddress(cfg.TokenB),
		LiquidityIn:   liquidity,
		SlippageBps:   cfg.SlippageBps,
		MinAmountOut:  minOut,
		Deadline:      uint64(time.Now().Add(cfg.Deadline).Unix()),
		FeeOnTransfer: cfg.FeeOnTransfer,
	}

	received, err := z.ZapOut(ctx, req)
	if err != nil {
		return err
	}

	fmt.Printf("amount received: %s\n", received)
	return nil
}

// newZapper wires the on-chain collaborators, the optional history sink, and
// the optional metrics listener into a ready Zapper. The returned cleanup
// closes what was opened.
func newZapper(ctx context.Context, cfg config.Config, logger *zap.Logger) (*zapper.Zapper, *evm.Backend, func(), error) {
	if cfg.RPCURL == "" {
		return nil, nil, nil, fmt.Errorf("rpc url is required")
	}
	if cfg.PrivateKey == "" {
		return nil, nil, nil, fmt.Errorf("private key is required")
	}
	if cfg.Factory == "" {
		return nil, nil, nil, fmt.Errorf("factory address is required")
	}
	if cfg.Router == "" {
		return nil, nil, nil, fmt.Errorf("router address is required")
	}

	chainClient, err := chain.NewClient(ctx, cfg.RPCURL)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("connect rpc: %w", err)
	}
	closers := []func(){chainClient.Close}
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	backend, err := evm.NewBackend(ctx, chainClient, cfg.PrivateKey, logger)
	if err != nil {
		cleanup()
		return nil, nil, nil, err
	}

	registry := evm.NewRegistry(backend, common.HexToAddress(cfg.Factory))
	resolver := pairaddr.New(common.HexToAddress(cfg.Factory), common.HexToHash(cfg.InitCodeHash), registry)

	var notifier zapper.Notifier
	switch {
	case cfg.PGDSN != "":
		store, err := postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			cleanup()
			return nil, nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		closers = append(closers, store.Close)
		if err := store.EnsureSchema(ctx); err != nil {
			cleanup()
			return nil, nil, nil, fmt.Errorf("ensure schema: %w", err)
		}
		notifier = storage.NewRecorder(store, logger)
	case cfg.HistoryPath != "":
		notifier = storage.NewRecorder(storage.NewJsonlStorage(cfg.HistoryPath), logger)
	}

	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		go func() {
			if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil {
				logger.Warn("metrics listener stopped", zap.Error(err))
			}
		}()
	}

	z := zapper.New(backend.From(), zapper.Deps{
		Resolver: resolver,
		Router:   evm.NewRouter(backend, common.HexToAddress(cfg.Router)),
		Tokens:   evm.NewTokens(backend),
		Pools:    evm.NewPools(backend),
		Notifier: notifier,
	}, logger)

	return z, backend, cleanup, nil
}
