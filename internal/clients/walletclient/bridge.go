package walletclient

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"slices"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/polinfinity/staking-sync/internal/clients/chainclient"
	"github.com/polinfinity/staking-sync/internal/config"
	"github.com/polinfinity/staking-sync/internal/types"
	"github.com/polinfinity/staking-sync/pkg"
)

const eventBufferSize = 16

// WriterFactory builds a signing contract handle for a private key
type WriterFactory func(key *ecdsa.PrivateKey) chainclient.Writer

// Bridge is a headless wallet. Accounts derive from an optional private key
// plus watch-only addresses, and can be changed at runtime.
type Bridge struct {
	mu          sync.RWMutex
	accounts    []common.Address
	chainID     uint64
	knownChains map[uint64]struct{}
	keys        map[common.Address]*ecdsa.PrivateKey

	newWriter WriterFactory
	events    chan Event
}

// NewBridge fails with types.ErrProviderUnavailable when no wallet is configured
func NewBridge(cfg *config.WalletConfig, chainID uint64, newWriter WriterFactory) (*Bridge, error) {
	if cfg == nil {
		return nil, types.ErrProviderUnavailable
	}

	b := &Bridge{
		chainID:     chainID,
		knownChains: map[uint64]struct{}{chainID: {}},
		keys:        make(map[common.Address]*ecdsa.PrivateKey),
		newWriter:   newWriter,
		events:      make(chan Event, eventBufferSize),
	}

	if cfg.PrivateKey != "" {
		key, err := crypto.HexToECDSA(cfg.PrivateKey)
		if err != nil {
			return nil, fmt.Errorf("invalid wallet private key: %w", err)
		}
		addr := crypto.PubkeyToAddress(key.PublicKey)
		b.keys[addr] = key
		b.accounts = append(b.accounts, addr)
	}
	for _, raw := range cfg.Accounts {
		addr, err := pkg.ParseEVMAddress(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid wallet account: %w", err)
		}
		if !slices.Contains(b.accounts, addr) {
			b.accounts = append(b.accounts, addr)
		}
	}

	return b, nil
}

func (b *Bridge) RequestAccounts(context.Context) ([]common.Address, error) {
	accounts := b.Accounts()
	if len(accounts) == 0 {
		return nil, fmt.Errorf("%w: no account authorized", types.ErrNetworkRejected)
	}
	return accounts, nil
}

func (b *Bridge) Accounts() []common.Address {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return slices.Clone(b.accounts)
}

func (b *Bridge) ChainID() uint64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.chainID
}

func (b *Bridge) SwitchNetwork(ctx context.Context, chainID uint64) error {
	b.mu.Lock()
	if _, ok := b.knownChains[chainID]; !ok {
		b.mu.Unlock()
		return fmt.Errorf("%w: chain %d", types.ErrChainNotRegistered, chainID)
	}
	changed := b.chainID != chainID
	b.chainID = chainID
	b.mu.Unlock()

	if changed {
		return b.emit(ctx, Event{Kind: EventChainChanged, ChainID: chainID})
	}
	return nil
}

// SetAccounts replaces the authorized accounts; an empty list means the user
// disconnected the wallet. The first account becomes the active one.
func (b *Bridge) SetAccounts(ctx context.Context, raw []string) error {
	accounts := make([]common.Address, 0, len(raw))
	for _, r := range raw {
		addr, err := pkg.ParseEVMAddress(r)
		if err != nil {
			return fmt.Errorf("invalid account %q: %w", r, err)
		}
		if !slices.Contains(accounts, addr) {
			accounts = append(accounts, addr)
		}
	}

	b.mu.Lock()
	b.accounts = accounts
	b.mu.Unlock()

	return b.emit(ctx, Event{Kind: EventAccountsChanged, Accounts: slices.Clone(accounts)})
}

// SetChain reports that the wallet moved to another network on its own. The
// network becomes known, so a later SwitchNetwork back to it succeeds.
func (b *Bridge) SetChain(ctx context.Context, chainID uint64) error {
	b.mu.Lock()
	b.chainID = chainID
	b.knownChains[chainID] = struct{}{}
	b.mu.Unlock()

	return b.emit(ctx, Event{Kind: EventChainChanged, ChainID: chainID})
}

func (b *Bridge) Bind(account common.Address) (chainclient.Writer, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !slices.Contains(b.accounts, account) {
		return nil, fmt.Errorf("%w: account %s is not authorized", types.ErrNetworkRejected, account.Hex())
	}
	if key, ok := b.keys[account]; ok && b.newWriter != nil {
		return b.newWriter(key), nil
	}
	return &watchOnlyWriter{from: account}, nil
}

func (b *Bridge) Events() <-chan Event {
	return b.events
}

func (b *Bridge) emit(ctx context.Context, ev Event) error {
	select {
	case b.events <- ev:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// watchOnlyWriter is bound to an account without a key and rejects writes
type watchOnlyWriter struct {
	from common.Address
}

func (w *watchOnlyWriter) From() common.Address {
	return w.from
}

func (w *watchOnlyWriter) Invest(context.Context, common.Address, *big.Int) (*types.TxReceipt, error) {
	return nil, types.ErrSignerUnavailable
}

func (w *watchOnlyWriter) Withdraw(context.Context) (*types.TxReceipt, error) {
	return nil, types.ErrSignerUnavailable
}
