package chainclient

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	gethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/polinfinity/staking-sync/internal/types"
	"github.com/rs/zerolog/log"
)

func decodeAll[T any](ctx context.Context, logs []gethtypes.Log, decode func(gethtypes.Log) (T, error)) []T {
	events := make([]T, 0, len(logs))
	for _, l := range logs {
		if l.Removed {
			continue
		}
		ev, err := decode(l)
		if err != nil {
			log.Ctx(ctx).Warn().Err(err).
				Stringer("tx_hash", l.TxHash).
				Uint("log_index", l.Index).
				Msg("skipping undecodable log")
			continue
		}
		events = append(events, ev)
	}
	return events
}

func metaOf(l gethtypes.Log) types.EventMeta {
	return types.EventMeta{
		Contract:    l.Address,
		BlockNumber: l.BlockNumber,
		TxHash:      l.TxHash,
		LogIndex:    l.Index,
	}
}

func checkTopics(l gethtypes.Log, event types.EventTypes, want int) error {
	if len(l.Topics) != want {
		return fmt.Errorf("%s log has %d topics, expected %d", event, len(l.Topics), want)
	}
	if l.Topics[0] != stakingABI.Events[event.String()].ID {
		return fmt.Errorf("log is not a %s event", event)
	}
	return nil
}

func decodeDepositLog(l gethtypes.Log) (types.DepositEvent, error) {
	if err := checkTopics(l, types.EventNewDeposit, 2); err != nil {
		return types.DepositEvent{}, err
	}

	var data struct {
		Plan    uint8
		Percent *big.Int
		Amount  *big.Int
		Profit  *big.Int
		Start   *big.Int
		Finish  *big.Int
	}
	if err := stakingABI.UnpackIntoInterface(&data, types.EventNewDeposit.String(), l.Data); err != nil {
		return types.DepositEvent{}, fmt.Errorf("failed to unpack NewDeposit data: %w", err)
	}

	return types.DepositEvent{
		EventMeta: metaOf(l),
		User:      common.BytesToAddress(l.Topics[1].Bytes()),
		Plan:      data.Plan,
		Percent:   data.Percent,
		Amount:    data.Amount,
		Profit:    data.Profit,
		Start:     data.Start,
		Finish:    data.Finish,
	}, nil
}

func decodeWithdrawLog(l gethtypes.Log) (types.WithdrawEvent, error) {
	if err := checkTopics(l, types.EventWithdrawn, 2); err != nil {
		return types.WithdrawEvent{}, err
	}

	var data struct {
		Amount *big.Int
	}
	if err := stakingABI.UnpackIntoInterface(&data, types.EventWithdrawn.String(), l.Data); err != nil {
		return types.WithdrawEvent{}, fmt.Errorf("failed to unpack Withdrawn data: %w", err)
	}

	return types.WithdrawEvent{
		EventMeta: metaOf(l),
		User:      common.BytesToAddress(l.Topics[1].Bytes()),
		Amount:    data.Amount,
	}, nil
}

func decodeRefBonusLog(l gethtypes.Log) (types.RefBonusEvent, error) {
	if err := checkTopics(l, types.EventRefBonus, 4); err != nil {
		return types.RefBonusEvent{}, err
	}

	var data struct {
		Amount *big.Int
	}
	if err := stakingABI.UnpackIntoInterface(&data, types.EventRefBonus.String(), l.Data); err != nil {
		return types.RefBonusEvent{}, fmt.Errorf("failed to unpack RefBonus data: %w", err)
	}

	return types.RefBonusEvent{
		EventMeta: metaOf(l),
		Referrer:  common.BytesToAddress(l.Topics[1].Bytes()),
		Referral:  common.BytesToAddress(l.Topics[2].Bytes()),
		Level:     new(big.Int).SetBytes(l.Topics[3].Bytes()),
		Amount:    data.Amount,
	}, nil
}
