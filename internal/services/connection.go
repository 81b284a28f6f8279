package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/polinfinity/staking-sync/internal/clients/chainclient"
	"github.com/polinfinity/staking-sync/internal/observability/metrics"
	"github.com/polinfinity/staking-sync/internal/session"
	"github.com/polinfinity/staking-sync/internal/types"
	"github.com/polinfinity/staking-sync/internal/utils/poller"
	"github.com/rs/zerolog/log"
)

var errConnectSuperseded = errors.New("connect superseded by a newer session transition")

// Connect asks the wallet for its accounts, makes sure it is on the contract
// chain and activates the first account. Any failure leaves the service
// Disconnected with no identity. While connected it does nothing.
func (s *Service) Connect(ctx context.Context) error {
	var (
		epoch    uint64
		beginErr error
	)
	// session transitions happen inside the store critical section so the
	// published state can never lag behind a newer transition
	s.store.Update(func(next *types.Snapshot) bool {
		epoch, beginErr = s.session.BeginConnect()
		if beginErr != nil {
			return false
		}
		next.State = types.StateConnecting
		return true
	})
	if errors.Is(beginErr, session.ErrAlreadyConnected) {
		log.Ctx(ctx).Debug().Msg("connect requested while connected, nothing to do")
		return nil
	}
	if beginErr != nil {
		return beginErr
	}

	err := s.connect(ctx, epoch)
	if err == nil {
		return nil
	}

	s.store.Update(func(next *types.Snapshot) bool {
		if !s.session.AbortConnect(epoch) {
			return false
		}
		s.stopSessionSchedules()
		next.ClearUser()
		next.State = types.StateDisconnected
		return true
	})
	log.Ctx(ctx).Warn().Err(err).Msg("wallet connection failed")
	return err
}

func (s *Service) connect(ctx context.Context, epoch uint64) error {
	accounts, err := s.wallet.RequestAccounts(ctx)
	if err != nil {
		return fmt.Errorf("failed to request accounts: %w", err)
	}
	if len(accounts) == 0 {
		return fmt.Errorf("no account authorized: %w", types.ErrNetworkRejected)
	}
	if err := s.ensureChain(ctx); err != nil {
		return err
	}
	return s.activate(ctx, accounts[0], epoch)
}

// ensureChain switches the wallet to the contract chain when needed
func (s *Service) ensureChain(ctx context.Context) error {
	want := s.cfg.Chain.ChainID
	if s.wallet.ChainID() == want {
		return nil
	}

	log.Ctx(ctx).Info().
		Uint64("from", s.wallet.ChainID()).
		Uint64("to", want).
		Msg("switching wallet network")
	if err := s.wallet.SwitchNetwork(ctx, want); err != nil {
		return fmt.Errorf("%w: chain %d: %w", types.ErrUnsupportedChain, want, err)
	}
	return nil
}

// activate binds the contract handle for address, publishes the new identity,
// installs the session schedules and runs the first full refresh. Unless epoch
// is anyEpoch, activation is dropped when the session moved on meanwhile.
func (s *Service) activate(ctx context.Context, address common.Address, epoch uint64) error {
	handle, err := s.wallet.Bind(address)
	if err != nil {
		return fmt.Errorf("failed to bind account %s: %w", address.Hex(), err)
	}
	handle = chainclient.NewWriterWithMetrics(handle)

	var id session.Identity[chainclient.Writer]
	_, applied := s.store.Update(func(next *types.Snapshot) bool {
		if epoch != anyEpoch && !s.session.IsCurrent(epoch) {
			return false
		}
		id = s.session.Connect(address, handle)
		// same critical section as the transition, so a later disconnect
		// always cancels these schedules
		s.startSessionSchedules()
		identity := id.Address
		next.ClearUser()
		next.State = types.StateConnected
		next.Identity = &identity
		next.ReferralLink = session.ReferralLink(s.cfg.Session.BaseURL, address)
		return true
	})
	if !applied {
		return errConnectSuperseded
	}
	log.Ctx(ctx).Info().
		Str("account", address.Hex()).
		Uint64("epoch", id.Epoch).
		Msg("wallet connected")

	if err := s.RefreshAll(ctx); err != nil {
		log.Ctx(ctx).Warn().Err(err).Msg("initial refresh incomplete")
	}
	return nil
}

// Disconnect clears the identity and cancels the session schedules. It
// reports false when there was no connection to drop.
func (s *Service) Disconnect(ctx context.Context) bool {
	var dropped bool
	s.store.Update(func(next *types.Snapshot) bool {
		dropped = s.session.Disconnect()
		if !dropped {
			return false
		}
		s.stopSessionSchedules()
		next.ClearUser()
		next.State = types.StateDisconnected
		return true
	})
	if !dropped {
		return false
	}
	log.Ctx(ctx).Info().Msg("wallet disconnected")
	return true
}

// HandleAccountsChanged follows an account change pushed by the wallet. An
// empty list disconnects; a different first account becomes the identity.
func (s *Service) HandleAccountsChanged(ctx context.Context, accounts []common.Address) error {
	if len(accounts) == 0 {
		s.Disconnect(ctx)
		return nil
	}

	if id, ok := s.session.Current(); ok && id.Address == accounts[0] {
		return nil
	}
	return s.activate(ctx, accounts[0], anyEpoch)
}

// HandleChainChanged drops everything derived from the old network and starts
// over: the connection is torn down, global state is reloaded and the wallet
// is reconnected when it is on the contract chain.
func (s *Service) HandleChainChanged(ctx context.Context, chainID uint64) error {
	s.Disconnect(ctx)
	s.store.Update(func(next *types.Snapshot) bool {
		next.Global = types.GlobalMetrics{}
		next.Leaderboard = nil
		next.LatestDeposit = nil
		return true
	})

	if err := s.RefreshGlobal(ctx); err != nil {
		log.Ctx(ctx).Warn().Err(err).Msg("global refresh after chain change incomplete")
	}
	if err := s.RefreshLeaderboard(ctx); err != nil {
		log.Ctx(ctx).Warn().Err(err).Msg("leaderboard refresh after chain change failed")
	}

	if chainID != s.cfg.Chain.ChainID {
		return fmt.Errorf("%w: wallet moved to chain %d", types.ErrUnsupportedChain, chainID)
	}
	if len(s.wallet.Accounts()) == 0 {
		return nil
	}
	return s.Connect(ctx)
}

// startSessionSchedules replaces the session-scoped pollers. They live on the
// service context, not on the context of the call that connected. Callers hold
// the store critical section together with the session transition.
func (s *Service) startSessionSchedules() {
	s.schedMu.Lock()
	defer s.schedMu.Unlock()

	if s.stopSchedule != nil {
		s.stopSchedule()
	}
	ctx, cancel := context.WithCancel(s.baseCtx)
	s.stopSchedule = cancel

	pollers := []*poller.Poller{
		poller.NewPoller(
			"full-refresh",
			s.cfg.Poller.FullRefreshInterval,
			metrics.RecordPollerDuration("full_refresh", s.RefreshAll),
		),
		poller.NewPoller(
			"leaderboard",
			s.cfg.Poller.LeaderboardInterval,
			metrics.RecordPollerDuration("leaderboard", s.RefreshLeaderboard),
		),
		poller.NewPoller(
			"estimate-ticker",
			s.cfg.Poller.TickerInterval,
			s.TickEstimate,
		),
	}
	for _, p := range pollers {
		go p.Start(ctx)
	}
}

func (s *Service) stopSessionSchedules() {
	s.schedMu.Lock()
	defer s.schedMu.Unlock()

	if s.stopSchedule != nil {
		s.stopSchedule()
		s.stopSchedule = nil
	}
}
