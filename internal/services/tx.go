package services

import (
	"context"
	"fmt"

	"github.com/polinfinity/staking-sync/internal/aggregator"
	"github.com/polinfinity/staking-sync/internal/types"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// Invest stakes amount (in POL) with the session referrer. The amount is
// validated before anything reaches the network.
func (s *Service) Invest(ctx context.Context, amount string) (*types.TxReceipt, error) {
	value, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", types.ErrInvalidAmount, amount)
	}
	if value.LessThan(s.minInvestment) {
		return nil, fmt.Errorf("%w: %s < %s", types.ErrBelowMinimum, value, s.minInvestment)
	}

	id, ok := s.session.Current()
	if !ok {
		return nil, types.ErrNotConnected
	}

	referrer := s.session.Referrer()
	log.Ctx(ctx).Info().
		Str("account", id.Address.Hex()).
		Str("referrer", referrer.Hex()).
		Stringer("amount", value).
		Msg("submitting investment")

	receipt, err := id.Handle.Invest(ctx, referrer, aggregator.ToWei(value))
	if err != nil {
		return nil, err
	}

	s.refreshAfterTx(ctx)
	return receipt, nil
}

// Withdraw claims the available balance of the connected identity.
func (s *Service) Withdraw(ctx context.Context) (*types.TxReceipt, error) {
	id, ok := s.session.Current()
	if !ok {
		return nil, types.ErrNotConnected
	}

	snap := s.store.Load()
	if snap.User == nil || !snap.AvailableEstimate.IsPositive() {
		return nil, types.ErrNothingToWithdraw
	}

	log.Ctx(ctx).Info().
		Str("account", id.Address.Hex()).
		Stringer("estimate", snap.AvailableEstimate).
		Msg("submitting withdrawal")

	receipt, err := id.Handle.Withdraw(ctx)
	if err != nil {
		return nil, err
	}

	s.refreshAfterTx(ctx)
	return receipt, nil
}

func (s *Service) refreshAfterTx(ctx context.Context) {
	if err := s.RefreshAll(ctx); err != nil {
		log.Ctx(ctx).Warn().Err(err).Msg("refresh after transaction incomplete")
	}
}
