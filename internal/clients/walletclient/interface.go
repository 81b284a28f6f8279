package walletclient

//go:generate mockery --name=Provider --output=../../../tests/mocks --outpkg=mocks --filename=provider.go

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/polinfinity/staking-sync/internal/clients/chainclient"
)

type EventKind string

const (
	EventAccountsChanged EventKind = "accountsChanged"
	EventChainChanged    EventKind = "chainChanged"
)

// Event is a change notification emitted by the wallet
type Event struct {
	Kind     EventKind
	Accounts []common.Address
	ChainID  uint64
}

// Provider is the wallet boundary the sync service talks to
type Provider interface {
	// RequestAccounts asks the wallet to authorize its accounts. It fails with
	// types.ErrNetworkRejected when nothing is authorized.
	RequestAccounts(ctx context.Context) ([]common.Address, error)
	Accounts() []common.Address
	ChainID() uint64
	// SwitchNetwork moves the wallet to chainID. It fails with
	// types.ErrChainNotRegistered when the wallet does not know the chain.
	SwitchNetwork(ctx context.Context, chainID uint64) error
	// Bind returns the contract handle acting on behalf of account
	Bind(account common.Address) (chainclient.Writer, error)
	Events() <-chan Event
}
