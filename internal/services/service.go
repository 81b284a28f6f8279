package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/polinfinity/staking-sync/internal/aggregator"
	"github.com/polinfinity/staking-sync/internal/clients/chainclient"
	"github.com/polinfinity/staking-sync/internal/clients/walletclient"
	"github.com/polinfinity/staking-sync/internal/config"
	"github.com/polinfinity/staking-sync/internal/session"
	"github.com/polinfinity/staking-sync/internal/snapshot"
	"github.com/polinfinity/staking-sync/internal/types"
	"github.com/shopspring/decimal"
)

// Service keeps the published snapshot in sync with the staking contract.
// Queries run concurrently; every write goes through publish, which drops
// results of superseded cycles and of connections that no longer exist.
type Service struct {
	cfg     *config.Config
	reader  chainclient.ChainReader
	wallet  walletclient.Provider
	cache   session.ReferralCache
	store   *snapshot.Store
	session *session.Session[chainclient.Writer]
	cycles  *cycleGuard

	policy        aggregator.DisplayPolicy
	dailyRate     decimal.Decimal
	minInvestment decimal.Decimal
	now           func() time.Time

	schedMu      sync.Mutex
	baseCtx      context.Context
	stopSchedule context.CancelFunc
}

func NewService(
	cfg *config.Config,
	reader chainclient.ChainReader,
	wallet walletclient.Provider,
	cache session.ReferralCache,
	store *snapshot.Store,
) (*Service, error) {
	policy, err := displayPolicyFromConfig(&cfg.Display)
	if err != nil {
		return nil, err
	}
	dailyRate, err := decimal.NewFromString(cfg.Display.DailyAccrualRate)
	if err != nil {
		return nil, fmt.Errorf("invalid daily accrual rate: %w", err)
	}
	if cache == nil {
		cache = session.NewMemoryCache()
	}

	return &Service{
		cfg:           cfg,
		reader:        reader,
		wallet:        wallet,
		cache:         cache,
		store:         store,
		session:       session.New[chainclient.Writer](),
		cycles:        newCycleGuard(),
		policy:        policy,
		dailyRate:     dailyRate,
		minInvestment: cfg.Tx.MinInvestmentAmount(),
		now:           time.Now,
		baseCtx:       context.Background(),
	}, nil
}

// Snapshot returns the latest published snapshot
func (s *Service) Snapshot() *types.Snapshot {
	return s.store.Load()
}

// State returns the live connection state, which may be ahead of the snapshot
func (s *Service) State() types.ConnectionState {
	return s.session.State()
}

func displayPolicyFromConfig(cfg *config.DisplayConfig) (aggregator.DisplayPolicy, error) {
	if cfg.Policy != config.DisplayPolicyCustom {
		return aggregator.PolicyByName(cfg.Policy)
	}
	if cfg.Custom == nil {
		return aggregator.DisplayPolicy{}, fmt.Errorf("custom display policy is not configured")
	}

	parse := func(name, raw string) (decimal.Decimal, error) {
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return decimal.Zero, fmt.Errorf("invalid %s: %w", name, err)
		}
		return d, nil
	}

	policy := aggregator.DisplayPolicy{
		Name:              aggregator.PolicyCustom,
		UsersOffset:       cfg.Custom.UsersOffset,
		UsersBonusDivisor: cfg.Custom.UsersBonusDivisor,
	}
	var err error
	if policy.StakedOffset, err = parse("staked-offset", cfg.Custom.StakedOffset); err != nil {
		return policy, err
	}
	if policy.StakedMultiplier, err = parse("staked-multiplier", cfg.Custom.StakedMultiplier); err != nil {
		return policy, err
	}
	if policy.WithdrawnOffset, err = parse("withdrawn-offset", cfg.Custom.WithdrawnOffset); err != nil {
		return policy, err
	}
	if policy.WithdrawnMultiplier, err = parse("withdrawn-multiplier", cfg.Custom.WithdrawnMultiplier); err != nil {
		return policy, err
	}
	return policy, nil
}
