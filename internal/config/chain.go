package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/polinfinity/staking-sync/pkg"
)

const (
	// Polygon mainnet
	defaultChainID         = 137
	defaultContractAddress = "0xcf0E9664b10f8483e883b7B99E27ef8f4Ff20682"
	defaultExplorerHost    = "polygonscan.com"
	defaultChainTimeout    = 20 * time.Second
	defaultMaxRetryTimes   = 3
	defaultRetryInterval   = 500 * time.Millisecond

	defaultDepositLookback     = 10_000
	defaultRefBonusLookback    = 50_000
	defaultLeaderboardLookback = 30_000
	defaultWithdrawalLookback  = 20_000
)

// ChainConfig defines how the staking contract is reached
type ChainConfig struct {
	// RPCAddr is the http(s) JSON-RPC endpoint used for point queries and log scans.
	RPCAddr string `mapstructure:"rpc-addr"`
	// WSAddr is an optional websocket endpoint for the live deposit feed.
	// Without it the service relies on polling only.
	WSAddr          string         `mapstructure:"ws-addr"`
	ChainID         uint64         `mapstructure:"chain-id"`
	ContractAddress string         `mapstructure:"contract-address"`
	ExplorerHost    string         `mapstructure:"explorer-host"`
	Timeout         time.Duration  `mapstructure:"timeout"`
	MaxRetryTimes   uint           `mapstructure:"max-retry-times"`
	RetryInterval   time.Duration  `mapstructure:"retry-interval"`
	Lookback        LookbackConfig `mapstructure:"lookback"`
}

// LookbackConfig bounds every event scan to a number of blocks behind the tip
type LookbackConfig struct {
	Deposits    uint64 `mapstructure:"deposits"`
	RefBonus    uint64 `mapstructure:"ref-bonus"`
	Leaderboard uint64 `mapstructure:"leaderboard"`
	Withdrawals uint64 `mapstructure:"withdrawals"`
}

func (cfg *ChainConfig) Validate() error {
	if cfg.RPCAddr == "" {
		return errors.New("rpc-addr is required")
	}
	if cfg.ChainID == 0 {
		return errors.New("chain-id is required")
	}
	if err := pkg.ValidateEVMAddress(cfg.ContractAddress); err != nil {
		return fmt.Errorf("invalid contract-address: %w", err)
	}
	if cfg.ExplorerHost == "" {
		return errors.New("explorer-host is required")
	}
	if cfg.Timeout <= 0 {
		return errors.New("timeout must be positive")
	}
	if cfg.MaxRetryTimes == 0 {
		return errors.New("max-retry-times must be positive")
	}
	if cfg.RetryInterval <= 0 {
		return errors.New("retry-interval must be positive")
	}

	return cfg.Lookback.Validate()
}

func (cfg *LookbackConfig) Validate() error {
	if cfg.Deposits == 0 {
		return errors.New("lookback.deposits must be positive")
	}
	if cfg.RefBonus == 0 {
		return errors.New("lookback.ref-bonus must be positive")
	}
	if cfg.Leaderboard == 0 {
		return errors.New("lookback.leaderboard must be positive")
	}
	if cfg.Withdrawals == 0 {
		return errors.New("lookback.withdrawals must be positive")
	}

	return nil
}
