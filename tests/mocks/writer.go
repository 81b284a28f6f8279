package mocks

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/polinfinity/staking-sync/internal/types"
	"github.com/stretchr/testify/mock"
)

// Writer is a mock type for the chainclient.Writer type
type Writer struct {
	mock.Mock
}

func (_m *Writer) From() common.Address {
	ret := _m.Called()
	return ret.Get(0).(common.Address)
}

func (_m *Writer) Invest(ctx context.Context, referrer common.Address, value *big.Int) (*types.TxReceipt, error) {
	ret := _m.Called(ctx, referrer, value)

	var r0 *types.TxReceipt
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*types.TxReceipt)
	}
	return r0, ret.Error(1)
}

func (_m *Writer) Withdraw(ctx context.Context) (*types.TxReceipt, error) {
	ret := _m.Called(ctx)

	var r0 *types.TxReceipt
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*types.TxReceipt)
	}
	return r0, ret.Error(1)
}

// NewWriter creates a new instance of Writer. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewWriter(t interface {
	mock.TestingT
	Cleanup(func())
}) *Writer {
	m := &Writer{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
