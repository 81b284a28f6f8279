package chainclient

//go:generate mockery --name=ChainReader --output=../../../tests/mocks --outpkg=mocks --filename=chain_reader.go
//go:generate mockery --name=Writer --output=../../../tests/mocks --outpkg=mocks --filename=writer.go

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/polinfinity/staking-sync/internal/types"
)

// ChainReader is the read boundary to the staking contract. Every method is a
// stateless query; failures are reported as *types.QueryError and an empty
// scan is a valid result.
type ChainReader interface {
	LatestBlock(ctx context.Context) (uint64, error)

	TotalStaked(ctx context.Context) (*big.Int, error)
	TotalUsers(ctx context.Context) (*big.Int, error)
	TotalRefBonus(ctx context.Context) (*big.Int, error)

	UserAvailable(ctx context.Context, user common.Address) (*big.Int, error)
	UserTotalDeposits(ctx context.Context, user common.Address) (*big.Int, error)
	UserTotalWithdrawn(ctx context.Context, user common.Address) (*big.Int, error)
	UserReferralBonuses(ctx context.Context, user common.Address) ([types.ReferralLevels]*big.Int, error)
	Balance(ctx context.Context, account common.Address) (*big.Int, error)

	// Withdrawals scans Withdrawn logs of every user over the last lookback blocks.
	Withdrawals(ctx context.Context, lookback uint64) ([]types.WithdrawEvent, error)
	// Deposits scans NewDeposit logs of one user over the last lookback blocks.
	Deposits(ctx context.Context, user common.Address, lookback uint64) ([]types.DepositEvent, error)
	// RefBonuses scans RefBonus logs; a nil referrer matches every referrer.
	RefBonuses(ctx context.Context, referrer *common.Address, lookback uint64) ([]types.RefBonusEvent, error)

	// SubscribeDeposits delivers live NewDeposit logs to sink until ctx is done
	// or the subscription fails. It returns ErrNoWebsocket when no push
	// endpoint is configured.
	SubscribeDeposits(ctx context.Context, sink func(types.DepositEvent)) error
}

// Writer is the write boundary: estimate, submit and await the receipt of a
// contract call. Nothing is retried.
type Writer interface {
	From() common.Address
	Invest(ctx context.Context, referrer common.Address, value *big.Int) (*types.TxReceipt, error)
	Withdraw(ctx context.Context) (*types.TxReceipt, error)
}
