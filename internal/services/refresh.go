package services

import (
	"context"
	"errors"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/polinfinity/staking-sync/internal/aggregator"
	"github.com/polinfinity/staking-sync/internal/observability/tracing"
	"github.com/polinfinity/staking-sync/internal/types"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc"
)

type globalReads struct {
	staked, users, refBonus *big.Int
	withdrawals             []types.WithdrawEvent

	stakedErr, usersErr, refErr, withdrawErr error
}

func (r *globalReads) errs() []error {
	return []error{r.stakedErr, r.usersErr, r.refErr, r.withdrawErr}
}

type userReads struct {
	address                                  common.Address
	available, deposited, withdrawn, balance *big.Int
	bonuses                                  [types.ReferralLevels]*big.Int
	depositEvents                            []types.DepositEvent
	refEvents                                []types.RefBonusEvent
	readAt                                   time.Time

	availableErr, depositedErr, withdrawnErr, balanceErr error
	bonusesErr, historyErr, referralsErr                error
}

func (r *userReads) errs() []error {
	return []error{
		r.availableErr, r.depositedErr, r.withdrawnErr, r.bonusesErr, r.balanceErr, r.historyErr, r.referralsErr,
	}
}

// RefreshGlobal re-reads the contract-wide totals and the withdrawal window.
func (s *Service) RefreshGlobal(ctx context.Context) error {
	seq := s.cycles.next(cycleGlobal)
	ctx = tracing.InjectCycle(ctx, string(cycleGlobal), seq)

	var r globalReads
	var wg conc.WaitGroup
	s.readGlobal(ctx, &wg, &r)
	wg.Wait()
	logFailures(ctx, "global", r.errs())

	s.publish(ctx, cycleGlobal, seq, anyEpoch, func(next *types.Snapshot) {
		s.applyGlobal(next, &r)
	})
	return errors.Join(r.errs()...)
}

// RefreshAll re-reads everything the snapshot shows. While connected the
// global and user reads form one cycle: they are issued together and the
// snapshot is updated once, after all of them settled.
func (s *Service) RefreshAll(ctx context.Context) error {
	id, connected := s.session.Current()
	if !connected {
		return s.RefreshGlobal(ctx)
	}

	seq := s.cycles.next(cycleFull)
	// a full cycle supersedes any global or user cycle already in flight
	globalSeq := s.cycles.next(cycleGlobal)
	userSeq := s.cycles.next(cycleUser)
	ctx = tracing.InjectCycle(ctx, string(cycleFull), seq)

	var (
		global globalReads
		user   userReads
	)
	var wg conc.WaitGroup
	s.readGlobal(ctx, &wg, &global)
	s.readUser(ctx, &wg, id.Address, &user)
	wg.Wait()
	user.readAt = s.now()
	logFailures(ctx, "global", global.errs())
	logFailures(ctx, "user", user.errs())

	s.publish(ctx, cycleFull, seq, id.Epoch, func(next *types.Snapshot) {
		if s.cycles.isLatest(cycleGlobal, globalSeq) {
			s.applyGlobal(next, &global)
		}
		if s.cycles.isLatest(cycleUser, userSeq) {
			s.applyUser(next, &user)
		}
	})
	return errors.Join(append(global.errs(), user.errs()...)...)
}

func (s *Service) readGlobal(ctx context.Context, wg *conc.WaitGroup, r *globalReads) {
	wg.Go(func() { r.staked, r.stakedErr = s.reader.TotalStaked(ctx) })
	wg.Go(func() { r.users, r.usersErr = s.reader.TotalUsers(ctx) })
	wg.Go(func() { r.refBonus, r.refErr = s.reader.TotalRefBonus(ctx) })
	wg.Go(func() {
		r.withdrawals, r.withdrawErr = s.reader.Withdrawals(ctx, s.cfg.Chain.Lookback.Withdrawals)
	})
}

func (s *Service) readUser(ctx context.Context, wg *conc.WaitGroup, addr common.Address, r *userReads) {
	lookback := s.cfg.Chain.Lookback
	r.address = addr

	wg.Go(func() { r.available, r.availableErr = s.reader.UserAvailable(ctx, addr) })
	wg.Go(func() { r.deposited, r.depositedErr = s.reader.UserTotalDeposits(ctx, addr) })
	wg.Go(func() { r.withdrawn, r.withdrawnErr = s.reader.UserTotalWithdrawn(ctx, addr) })
	wg.Go(func() { r.bonuses, r.bonusesErr = s.reader.UserReferralBonuses(ctx, addr) })
	wg.Go(func() { r.balance, r.balanceErr = s.reader.Balance(ctx, addr) })
	wg.Go(func() { r.depositEvents, r.historyErr = s.reader.Deposits(ctx, addr, lookback.Deposits) })
	wg.Go(func() { r.refEvents, r.referralsErr = s.reader.RefBonuses(ctx, &addr, lookback.RefBonus) })
}

// applyGlobal replaces the global totals; failed metrics keep their previous value.
func (s *Service) applyGlobal(next *types.Snapshot, r *globalReads) {
	prev := next.Global
	g := aggregator.ReduceGlobalTotals(r.staked, r.users, r.refBonus, r.withdrawals, s.policy)
	if r.stakedErr != nil {
		g.TotalStaked, g.RawStaked = prev.TotalStaked, prev.RawStaked
	}
	if r.usersErr != nil {
		g.TotalUsers, g.RawUsers = prev.TotalUsers, prev.RawUsers
	}
	if r.refErr != nil {
		g.TotalRefBonus, g.RawRefBonus = prev.TotalRefBonus, prev.RawRefBonus
	}
	if r.withdrawErr != nil {
		g.TotalWithdrawn, g.RawWithdrawn = prev.TotalWithdrawn, prev.RawWithdrawn
	}
	next.Global = g
	next.NextCycleAt = aggregator.NextCycleStart(s.now())
}

// applyUser replaces the identity-scoped fields. Callers guarantee the epoch
// is current, so previous user values always belong to the same identity.
func (s *Service) applyUser(next *types.Snapshot, r *userReads) {
	prev := next.User
	if prev == nil {
		prev = &types.UserMetrics{}
	}

	user := aggregator.ReduceUserMetrics(r.available, r.deposited, r.withdrawn, r.bonuses)
	user.WalletBalance = aggregator.FromWei(r.balance)
	if r.availableErr != nil {
		user.Available = prev.Available
	}
	if r.depositedErr != nil {
		user.TotalDeposited = prev.TotalDeposited
	}
	if r.withdrawnErr != nil {
		user.TotalWithdrawn = prev.TotalWithdrawn
	}
	if r.bonusesErr != nil {
		user.ReferralBonusByLevel = prev.ReferralBonusByLevel
	}
	if r.balanceErr != nil {
		user.WalletBalance = prev.WalletBalance
	}
	next.User = &user

	if r.availableErr == nil {
		next.AvailableEstimate = user.Available
		next.AvailableAt = r.readAt
	}
	if r.historyErr == nil {
		next.Transactions = aggregator.BuildTransactionHistory(r.depositEvents, s.cfg.Chain.ExplorerHost)
	}
	if r.referralsErr == nil {
		next.Referrals = aggregator.ReduceReferralGraph(r.refEvents, r.address)
	}
}

func logFailures(ctx context.Context, scope string, errs []error) {
	for _, err := range errs {
		if err != nil {
			queryFailed(ctx, scope, err)
		}
	}
}

// RefreshLeaderboard rebuilds the top referrers from the leaderboard window.
// On failure the previous leaderboard stays published.
func (s *Service) RefreshLeaderboard(ctx context.Context) error {
	seq := s.cycles.next(cycleLeaderboard)
	ctx = tracing.InjectCycle(ctx, string(cycleLeaderboard), seq)

	events, err := s.reader.RefBonuses(ctx, nil, s.cfg.Chain.Lookback.Leaderboard)
	if err != nil {
		queryFailed(ctx, "leaderboard", err)
		return err
	}

	s.publish(ctx, cycleLeaderboard, seq, anyEpoch, func(next *types.Snapshot) {
		next.Leaderboard = aggregator.BuildLeaderboard(events)
	})
	log.Ctx(ctx).Debug().Int("events", len(events)).Msg("leaderboard refreshed")
	return nil
}

// TickEstimate advances the live estimate of the available balance from the
// last authoritative read. Nothing is published when the value is unchanged.
func (s *Service) TickEstimate(ctx context.Context) error {
	id, connected := s.session.Current()
	if !connected {
		return nil
	}
	now := s.now()

	s.store.Update(func(next *types.Snapshot) bool {
		if !s.session.IsCurrent(id.Epoch) || next.User == nil || next.AvailableAt.IsZero() {
			return false
		}
		estimate := aggregator.EstimateAvailable(next.User.Available, now.Sub(next.AvailableAt), s.dailyRate)
		if estimate.Equal(next.AvailableEstimate) {
			return false
		}
		next.AvailableEstimate = estimate
		return true
	})
	return nil
}
