package mocks

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/polinfinity/staking-sync/internal/types"
	"github.com/stretchr/testify/mock"
)

// ChainReader is a mock type for the chainclient.ChainReader type
type ChainReader struct {
	mock.Mock
}

func (_m *ChainReader) LatestBlock(ctx context.Context) (uint64, error) {
	ret := _m.Called(ctx)

	if rf, ok := ret.Get(0).(func(context.Context) (uint64, error)); ok {
		return rf(ctx)
	}
	return ret.Get(0).(uint64), ret.Error(1)
}

func (_m *ChainReader) TotalStaked(ctx context.Context) (*big.Int, error) {
	return _m.bigIntCall(ctx, _m.Called(ctx))
}

func (_m *ChainReader) TotalUsers(ctx context.Context) (*big.Int, error) {
	return _m.bigIntCall(ctx, _m.Called(ctx))
}

func (_m *ChainReader) TotalRefBonus(ctx context.Context) (*big.Int, error) {
	return _m.bigIntCall(ctx, _m.Called(ctx))
}

func (_m *ChainReader) UserAvailable(ctx context.Context, user common.Address) (*big.Int, error) {
	return _m.bigIntCall(ctx, _m.Called(ctx, user))
}

func (_m *ChainReader) UserTotalDeposits(ctx context.Context, user common.Address) (*big.Int, error) {
	return _m.bigIntCall(ctx, _m.Called(ctx, user))
}

func (_m *ChainReader) UserTotalWithdrawn(ctx context.Context, user common.Address) (*big.Int, error) {
	return _m.bigIntCall(ctx, _m.Called(ctx, user))
}

func (_m *ChainReader) Balance(ctx context.Context, user common.Address) (*big.Int, error) {
	return _m.bigIntCall(ctx, _m.Called(ctx, user))
}

func (_m *ChainReader) UserReferralBonuses(ctx context.Context, user common.Address) ([types.ReferralLevels]*big.Int, error) {
	ret := _m.Called(ctx, user)

	var r0 [types.ReferralLevels]*big.Int
	if rf, ok := ret.Get(0).(func(context.Context, common.Address) [types.ReferralLevels]*big.Int); ok {
		r0 = rf(ctx, user)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).([types.ReferralLevels]*big.Int)
	}
	return r0, ret.Error(1)
}

func (_m *ChainReader) Withdrawals(ctx context.Context, lookback uint64) ([]types.WithdrawEvent, error) {
	ret := _m.Called(ctx, lookback)

	var r0 []types.WithdrawEvent
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]types.WithdrawEvent)
	}
	return r0, ret.Error(1)
}

func (_m *ChainReader) Deposits(ctx context.Context, user common.Address, lookback uint64) ([]types.DepositEvent, error) {
	ret := _m.Called(ctx, user, lookback)

	var r0 []types.DepositEvent
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]types.DepositEvent)
	}
	return r0, ret.Error(1)
}

func (_m *ChainReader) RefBonuses(ctx context.Context, referrer *common.Address, lookback uint64) ([]types.RefBonusEvent, error) {
	ret := _m.Called(ctx, referrer, lookback)

	var r0 []types.RefBonusEvent
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]types.RefBonusEvent)
	}
	return r0, ret.Error(1)
}

func (_m *ChainReader) SubscribeDeposits(ctx context.Context, sink func(types.DepositEvent)) error {
	ret := _m.Called(ctx, sink)

	if rf, ok := ret.Get(0).(func(context.Context, func(types.DepositEvent)) error); ok {
		return rf(ctx, sink)
	}
	return ret.Error(0)
}

// bigIntCall unpacks the (*big.Int, error) pair of a recorded call. A
// function return value is invoked with ctx.
func (_m *ChainReader) bigIntCall(ctx context.Context, ret mock.Arguments) (*big.Int, error) {
	if rf, ok := ret.Get(0).(func(context.Context) (*big.Int, error)); ok {
		return rf(ctx)
	}

	var r0 *big.Int
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*big.Int)
	}
	return r0, ret.Error(1)
}

// NewChainReader creates a new instance of ChainReader. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewChainReader(t interface {
	mock.TestingT
	Cleanup(func())
}) *ChainReader {
	m := &ChainReader{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
