package chainclient

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/polinfinity/staking-sync/internal/observability/metrics"
	"github.com/polinfinity/staking-sync/internal/types"
)

type chainReaderWithMetrics struct {
	reader ChainReader
}

func NewChainReaderWithMetrics(reader ChainReader) ChainReader {
	return &chainReaderWithMetrics{reader: reader}
}

func (c *chainReaderWithMetrics) LatestBlock(ctx context.Context) (uint64, error) {
	height, err := runChainClientMethodWithMetrics("LatestBlock", func() (uint64, error) {
		return c.reader.LatestBlock(ctx)
	})
	if err == nil {
		metrics.RecordChainTipHeight(height)
	}
	return height, err
}

func (c *chainReaderWithMetrics) TotalStaked(ctx context.Context) (*big.Int, error) {
	return runChainClientMethodWithMetrics("TotalStaked", func() (*big.Int, error) {
		return c.reader.TotalStaked(ctx)
	})
}

func (c *chainReaderWithMetrics) TotalUsers(ctx context.Context) (*big.Int, error) {
	return runChainClientMethodWithMetrics("TotalUsers", func() (*big.Int, error) {
		return c.reader.TotalUsers(ctx)
	})
}

func (c *chainReaderWithMetrics) TotalRefBonus(ctx context.Context) (*big.Int, error) {
	return runChainClientMethodWithMetrics("TotalRefBonus", func() (*big.Int, error) {
		return c.reader.TotalRefBonus(ctx)
	})
}

func (c *chainReaderWithMetrics) UserAvailable(ctx context.Context, user common.Address) (*big.Int, error) {
	return runChainClientMethodWithMetrics("UserAvailable", func() (*big.Int, error) {
		return c.reader.UserAvailable(ctx, user)
	})
}

func (c *chainReaderWithMetrics) UserTotalDeposits(ctx context.Context, user common.Address) (*big.Int, error) {
	return runChainClientMethodWithMetrics("UserTotalDeposits", func() (*big.Int, error) {
		return c.reader.UserTotalDeposits(ctx, user)
	})
}

func (c *chainReaderWithMetrics) UserTotalWithdrawn(ctx context.Context, user common.Address) (*big.Int, error) {
	return runChainClientMethodWithMetrics("UserTotalWithdrawn", func() (*big.Int, error) {
		return c.reader.UserTotalWithdrawn(ctx, user)
	})
}

func (c *chainReaderWithMetrics) UserReferralBonuses(
	ctx context.Context, user common.Address,
) ([types.ReferralLevels]*big.Int, error) {
	return runChainClientMethodWithMetrics("UserReferralBonuses", func() ([types.ReferralLevels]*big.Int, error) {
		return c.reader.UserReferralBonuses(ctx, user)
	})
}

func (c *chainReaderWithMetrics) Balance(ctx context.Context, account common.Address) (*big.Int, error) {
	return runChainClientMethodWithMetrics("Balance", func() (*big.Int, error) {
		return c.reader.Balance(ctx, account)
	})
}

func (c *chainReaderWithMetrics) Withdrawals(ctx context.Context, lookback uint64) ([]types.WithdrawEvent, error) {
	return runChainClientMethodWithMetrics("Withdrawals", func() ([]types.WithdrawEvent, error) {
		return c.reader.Withdrawals(ctx, lookback)
	})
}

func (c *chainReaderWithMetrics) Deposits(
	ctx context.Context, user common.Address, lookback uint64,
) ([]types.DepositEvent, error) {
	return runChainClientMethodWithMetrics("Deposits", func() ([]types.DepositEvent, error) {
		return c.reader.Deposits(ctx, user, lookback)
	})
}

func (c *chainReaderWithMetrics) RefBonuses(
	ctx context.Context, referrer *common.Address, lookback uint64,
) ([]types.RefBonusEvent, error) {
	return runChainClientMethodWithMetrics("RefBonuses", func() ([]types.RefBonusEvent, error) {
		return c.reader.RefBonuses(ctx, referrer, lookback)
	})
}

func (c *chainReaderWithMetrics) SubscribeDeposits(ctx context.Context, sink func(types.DepositEvent)) error {
	// long lived, latency is meaningless here
	return c.reader.SubscribeDeposits(ctx, func(ev types.DepositEvent) {
		metrics.IncLiveDepositEvents()
		sink(ev)
	})
}

func runChainClientMethodWithMetrics[T any](method string, f func() (T, error)) (T, error) {
	startTime := time.Now()
	v, err := f()
	duration := time.Since(startTime)

	metrics.RecordChainClientLatency(duration, method, err != nil)
	return v, err
}

type writerWithMetrics struct {
	writer Writer
}

func NewWriterWithMetrics(writer Writer) Writer {
	return &writerWithMetrics{writer: writer}
}

func (w *writerWithMetrics) From() common.Address {
	return w.writer.From()
}

func (w *writerWithMetrics) Invest(ctx context.Context, referrer common.Address, value *big.Int) (*types.TxReceipt, error) {
	receipt, err := w.writer.Invest(ctx, referrer, value)
	metrics.RecordTransaction("Invest", err != nil)
	return receipt, err
}

func (w *writerWithMetrics) Withdraw(ctx context.Context) (*types.TxReceipt, error) {
	receipt, err := w.writer.Withdraw(ctx)
	metrics.RecordTransaction("Withdraw", err != nil)
	return receipt, err
}
