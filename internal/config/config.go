package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds configuration values loaded from flags, env, or config file.
type Config struct {
	RPCURL       string
	PrivateKey   string
	Factory      string
	Router       string
	InitCodeHash string

	TokenA        string
	TokenB        string
	Token         string
	Amount        string
	Liquidity     string
	SlippageBps   uint64
	MinOut        string
	Deadline      time.Duration
	FeeOnTransfer bool

	HistoryPath string
	PGDSN       string
	MetricsAddr string
	LogLevel    string
}

// Load merges config file, environment variables, and flags into Config.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("ZAPPER")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("init-code-hash", "0x96e8ac4277198ff8b6f785478aa9a39f403cb768dd02cbe8f0a221681481132f")
	v.SetDefault("slippage-bps", uint64(50))
	v.SetDefault("deadline", 20*time.Minute)
	v.SetDefault("log-level", "info")

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg := Config{
		RPCURL:        v.GetString("rpc"),
		PrivateKey:    v.GetString("private-key"),
		Factory:       v.GetString("factory"),
		Router:        v.GetString("router"),
		InitCodeHash:  v.GetString("init-code-hash"),
		TokenA:        v.GetString("token-a"),
		TokenB:        v.GetString("token-b"),
		Token:         v.GetString("token"),
		Amount:        v.GetString("amount"),
		Liquidity:     v.GetString("liquidity"),
		SlippageBps:   v.GetUint64("slippage-bps"),
		MinOut:        v.GetString("min-out"),
		Deadline:      v.GetDuration("deadline"),
		FeeOnTransfer: v.GetBool("fee-on-transfer"),
		HistoryPath:   v.GetString("history"),
		PGDSN:         v.GetString("pg-dsn"),
		MetricsAddr:   v.GetString("metrics-addr"),
		LogLevel:      v.GetString("log-level"),
	}

	return cfg, nil
}
