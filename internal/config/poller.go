package config

import (
	"errors"
	"time"
)

const (
	defaultFullRefreshInterval = 30 * time.Second
	defaultLeaderboardInterval = 5 * time.Minute
	defaultGlobalInterval      = 30 * time.Second
	defaultTickerInterval      = time.Second
)

type PollerConfig struct {
	FullRefreshInterval time.Duration `mapstructure:"full-refresh-interval"`
	LeaderboardInterval time.Duration `mapstructure:"leaderboard-interval"`
	GlobalInterval      time.Duration `mapstructure:"global-interval"`
	TickerInterval      time.Duration `mapstructure:"ticker-interval"`
}

func (cfg *PollerConfig) Validate() error {
	if cfg.FullRefreshInterval <= 0 {
		return errors.New("full-refresh-interval must be positive")
	}

	if cfg.GlobalInterval <= 0 {
		return errors.New("global-interval must be positive")
	}

	// leaderboard and ticker fall back to defaults
	if cfg.LeaderboardInterval <= 0 {
		cfg.LeaderboardInterval = defaultLeaderboardInterval
	}

	if cfg.TickerInterval <= 0 {
		cfg.TickerInterval = defaultTickerInterval
	}

	if cfg.LeaderboardInterval < cfg.FullRefreshInterval {
		return errors.New("leaderboard-interval must not be shorter than full-refresh-interval")
	}

	return nil
}
