package services

import (
	"context"
	"errors"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/polinfinity/staking-sync/internal/aggregator"
	"github.com/polinfinity/staking-sync/internal/clients/chainclient"
	"github.com/polinfinity/staking-sync/internal/clients/walletclient"
	"github.com/polinfinity/staking-sync/internal/observability/metrics"
	"github.com/polinfinity/staking-sync/internal/observability/tracing"
	"github.com/polinfinity/staking-sync/internal/session"
	"github.com/polinfinity/staking-sync/internal/types"
	"github.com/polinfinity/staking-sync/internal/utils/poller"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc"
)

const maxResubscribeDelay = 30 * time.Second

// Run resolves the session referrer, loads global state, connects when the
// wallet already exposes accounts and then keeps everything in sync until ctx
// is cancelled.
func (s *Service) Run(ctx context.Context) error {
	s.schedMu.Lock()
	s.baseCtx = ctx
	s.schedMu.Unlock()
	defer s.stopSessionSchedules()

	referrer := s.session.ResolveReferrer(ctx, session.ParseReferralParam(s.cfg.Session.ReferralLink), s.cache)
	s.store.Update(func(next *types.Snapshot) bool {
		next.Referrer = referrer
		return true
	})
	log.Ctx(ctx).Info().Str("referrer", referrer.Hex()).Msg("referrer resolved")

	// the first global load runs on the poller right away
	globalPoller := poller.NewPoller(
		"global",
		s.cfg.Poller.GlobalInterval,
		metrics.RecordPollerDuration("global", s.RefreshGlobal),
		poller.WithImmediateRun(),
	)

	var wg conc.WaitGroup
	wg.Go(func() { globalPoller.Start(ctx) })

	startCtx := tracing.InjectTraceID(ctx)
	if err := s.RefreshLeaderboard(startCtx); err != nil {
		log.Ctx(startCtx).Warn().Err(err).Msg("initial leaderboard load failed")
	}
	if len(s.wallet.Accounts()) > 0 {
		if err := s.Connect(startCtx); err != nil {
			log.Ctx(startCtx).Warn().Err(err).Msg("auto-connect failed")
		}
	}

	wg.Go(func() { s.watchDeposits(ctx) })
	wg.Go(func() { s.watchWallet(ctx) })
	wg.Wait()

	return nil
}

// watchDeposits keeps the live deposit subscription open, resubscribing with
// backoff after failures.
func (s *Service) watchDeposits(ctx context.Context) {
	err := retry.Do(
		func() error {
			return s.reader.SubscribeDeposits(ctx, func(ev types.DepositEvent) {
				s.onDeposit(ctx, ev)
			})
		},
		retry.Context(ctx),
		retry.Attempts(0),
		retry.Delay(s.cfg.Chain.RetryInterval),
		retry.MaxDelay(maxResubscribeDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return !errors.Is(err, chainclient.ErrNoWebsocket)
		}),
		retry.OnRetry(func(n uint, err error) {
			log.Ctx(ctx).Warn().Err(err).Uint("attempt", n+1).Msg("deposit subscription dropped, resubscribing")
		}),
	)

	switch {
	case errors.Is(err, chainclient.ErrNoWebsocket):
		log.Ctx(ctx).Info().Msg("no websocket endpoint, deposits are picked up by polling only")
	case err != nil && ctx.Err() == nil:
		log.Ctx(ctx).Error().Err(err).Msg("deposit subscription stopped")
	}
}

// onDeposit records the deposit notice and refreshes global totals right away.
func (s *Service) onDeposit(ctx context.Context, ev types.DepositEvent) {
	ctx = tracing.InjectTraceID(ctx)
	notice := &types.DepositNotice{
		User:       ev.User,
		Amount:     aggregator.FromWei(ev.Amount),
		TxHash:     ev.TxHash,
		ObservedAt: s.now(),
	}
	s.store.Update(func(next *types.Snapshot) bool {
		next.LatestDeposit = notice
		return true
	})
	log.Ctx(ctx).Info().
		Str("user", ev.User.Hex()).
		Stringer("amount", notice.Amount).
		Str("txHash", ev.TxHash.Hex()).
		Msg("new deposit observed")

	if err := s.RefreshGlobal(ctx); err != nil {
		log.Ctx(ctx).Warn().Err(err).Msg("global refresh after deposit incomplete")
	}
}

// watchWallet dispatches wallet notifications until ctx is done.
func (s *Service) watchWallet(ctx context.Context) {
	events := s.wallet.Events()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			s.handleWalletEvent(tracing.InjectTraceID(ctx), ev)
		}
	}
}

func (s *Service) handleWalletEvent(ctx context.Context, ev walletclient.Event) {
	var err error
	switch ev.Kind {
	case walletclient.EventAccountsChanged:
		err = s.HandleAccountsChanged(ctx, ev.Accounts)
	case walletclient.EventChainChanged:
		err = s.HandleChainChanged(ctx, ev.ChainID)
	default:
		log.Ctx(ctx).Warn().Str("kind", string(ev.Kind)).Msg("ignoring unknown wallet event")
		return
	}
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("kind", string(ev.Kind)).Msg("wallet event handling failed")
	}
}
