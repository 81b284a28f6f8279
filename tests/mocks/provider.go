package mocks

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/polinfinity/staking-sync/internal/clients/chainclient"
	"github.com/polinfinity/staking-sync/internal/clients/walletclient"
	"github.com/stretchr/testify/mock"
)

// Provider is a mock type for the walletclient.Provider type
type Provider struct {
	mock.Mock
}

func (_m *Provider) RequestAccounts(ctx context.Context) ([]common.Address, error) {
	ret := _m.Called(ctx)

	var r0 []common.Address
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]common.Address)
	}
	return r0, ret.Error(1)
}

func (_m *Provider) Accounts() []common.Address {
	ret := _m.Called()

	var r0 []common.Address
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]common.Address)
	}
	return r0
}

func (_m *Provider) ChainID() uint64 {
	ret := _m.Called()
	return ret.Get(0).(uint64)
}

func (_m *Provider) SwitchNetwork(ctx context.Context, chainID uint64) error {
	ret := _m.Called(ctx, chainID)
	return ret.Error(0)
}

func (_m *Provider) Bind(account common.Address) (chainclient.Writer, error) {
	ret := _m.Called(account)

	var r0 chainclient.Writer
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(chainclient.Writer)
	}
	return r0, ret.Error(1)
}

func (_m *Provider) Events() <-chan walletclient.Event {
	ret := _m.Called()

	var r0 <-chan walletclient.Event
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(<-chan walletclient.Event)
	}
	return r0
}

// NewProvider creates a new instance of Provider. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewProvider(t interface {
	mock.TestingT
	Cleanup(func())
}) *Provider {
	m := &Provider{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
