package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	root := &cobra.Command{
		Use:          "zapper",
		Short:        "Single-token liquidity zapper for V2-style pools",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	resolveCmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve the pair address for two tokens",
		RunE:  runResolve,
	}
	resolveCmd.Flags().String("rpc", "", "RPC URL")
	resolveCmd.Flags().String("private-key", "", "hex private key of the operating account")
	resolveCmd.Flags().String("factory", "", "factory address")
	resolveCmd.Flags().String("init-code-hash", "", "pair init code hash for deterministic derivation")
	resolveCmd.Flags().String("token-a", "", "first pair token address")
	resolveCmd.Flags().String("token-b", "", "second pair token address")
	resolveCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
	root.AddCommand(resolveCmd)

	quoteCmd := &cobra.Command{
		Use:   "quote-in",
		Short: "Preview the optimal pre-swap sizing for a zap-in",
		RunE:  runQuoteIn,
	}
	addZapFlags(quoteCmd)
	root.AddCommand(quoteCmd)

	zapInCmd := &cobra.Command{
		Use:   "zap-in",
		Short: "Enter a liquidity position from a single token",
		RunE:  runZapIn,
	}
	addZapFlags(zapInCmd)
	zapInCmd.Flags().String("min-out", "0", "minimum liquidity minted")
	root.AddCommand(zapInCmd)

	zapOutCmd := &cobra.Command{
		Use:   "zap-out",
		Short: "Exit a liquidity position into a single token",
		RunE:  runZapOut,
	}
	addZapFlags(zapOutCmd)
	zapOutCmd.Flags().String("liquidity", "", "liquidity amount to burn")
	zapOutCmd.Flags().String("min-out", "0", "minimum output amount")
	root.AddCommand(zapOutCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func addZapFlags(cmd *cobra.Command) {
	cmd.Flags().String("rpc", "", "RPC URL")
	cmd.Flags().String("private-key", "", "hex private key of the operating account")
	cmd.Flags().String("factory", "", "factory address")
	cmd.Flags().String("router", "", "router address")
	cmd.Flags().String("init-code-hash", "", "pair init code hash for deterministic derivation")
	cmd.Flags().String("token-a", "", "first pair token address")
	cmd.Flags().String("token-b", "", "second pair token address")
	cmd.Flags().String("token", "", "input token (zap-in) or output token (zap-out)")
	cmd.Flags().String("amount", "", "input amount in base units")
	cmd.Flags().Uint64("slippage-bps", 50, "maximum slippage in basis points")
	cmd.Flags().Duration("deadline", 20*time.Minute, "deadline relative to now")
	cmd.Flags().Bool("fee-on-transfer", false, "use balance-delta accounting for fee-on-transfer tokens")
	cmd.Flags().String("history", "", "JSONL zap history path")
	cmd.Flags().String("pg-dsn", "", "Postgres DSN for zap history")
	cmd.Flags().String("metrics-addr", "", "prometheus listen address")
	cmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
