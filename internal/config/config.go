package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

const envPrefix = "STAKING_SYNC"

type Config struct {
	Chain   ChainConfig   `mapstructure:"chain"`
	Poller  PollerConfig  `mapstructure:"poller"`
	Session SessionConfig `mapstructure:"session"`
	Display DisplayConfig `mapstructure:"display"`
	Tx      TxConfig      `mapstructure:"tx"`
	Server  ServerConfig  `mapstructure:"server"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Wallet  *WalletConfig `mapstructure:"wallet"`
	Db      *DbConfig     `mapstructure:"db"`
	Queue   *QueueConfig  `mapstructure:"queue"`
}

func (cfg *Config) Validate() error {
	if err := cfg.Chain.Validate(); err != nil {
		return fmt.Errorf("chain: %w", err)
	}
	if err := cfg.Poller.Validate(); err != nil {
		return fmt.Errorf("poller: %w", err)
	}
	if err := cfg.Session.Validate(); err != nil {
		return fmt.Errorf("session: %w", err)
	}
	if err := cfg.Display.Validate(); err != nil {
		return fmt.Errorf("display: %w", err)
	}
	if err := cfg.Tx.Validate(); err != nil {
		return fmt.Errorf("tx: %w", err)
	}
	if err := cfg.Server.Validate(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := cfg.Metrics.Validate(); err != nil {
		return fmt.Errorf("metrics: %w", err)
	}

	// wallet, db and queue are optional
	if cfg.Wallet != nil {
		if err := cfg.Wallet.Validate(); err != nil {
			return fmt.Errorf("wallet: %w", err)
		}
	}
	if cfg.Db != nil {
		if err := cfg.Db.Validate(); err != nil {
			return fmt.Errorf("db: %w", err)
		}
	}
	if cfg.Queue != nil {
		if err := cfg.Queue.Validate(); err != nil {
			return fmt.Errorf("queue: %w", err)
		}
	}

	return nil
}

// New returns a fully parsed Config object from a given file path.
// Every key can be overridden through STAKING_SYNC_<SECTION>_<KEY> environment variables.
func New(cfgFile string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(cfgFile)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("chain.chain-id", defaultChainID)
	v.SetDefault("chain.contract-address", defaultContractAddress)
	v.SetDefault("chain.explorer-host", defaultExplorerHost)
	v.SetDefault("chain.timeout", defaultChainTimeout)
	v.SetDefault("chain.max-retry-times", defaultMaxRetryTimes)
	v.SetDefault("chain.retry-interval", defaultRetryInterval)
	v.SetDefault("chain.lookback.deposits", defaultDepositLookback)
	v.SetDefault("chain.lookback.ref-bonus", defaultRefBonusLookback)
	v.SetDefault("chain.lookback.leaderboard", defaultLeaderboardLookback)
	v.SetDefault("chain.lookback.withdrawals", defaultWithdrawalLookback)

	v.SetDefault("poller.full-refresh-interval", defaultFullRefreshInterval)
	v.SetDefault("poller.leaderboard-interval", defaultLeaderboardInterval)
	v.SetDefault("poller.global-interval", defaultGlobalInterval)
	v.SetDefault("poller.ticker-interval", defaultTickerInterval)

	v.SetDefault("display.policy", defaultDisplayPolicy)
	v.SetDefault("display.daily-accrual-rate", defaultDailyAccrualRate)

	v.SetDefault("tx.min-investment", defaultMinInvestment)
	v.SetDefault("tx.gas-margin-percent", defaultGasMarginPercent)
	v.SetDefault("tx.confirmation-timeout", defaultConfirmationTimeout)

	v.SetDefault("server.host", defaultServerHost)
	v.SetDefault("server.port", defaultServerPort)
	v.SetDefault("metrics.host", defaultMetricsHost)
	v.SetDefault("metrics.port", defaultMetricsPort)
}
