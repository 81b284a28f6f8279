package session

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/polinfinity/staking-sync/internal/types"
)

var (
	// ErrConnectInProgress is returned when a connect is attempted while another
	// one is still waiting for the wallet.
	ErrConnectInProgress = errors.New("connect already in progress")
	// ErrAlreadyConnected is returned by BeginConnect while a session is live.
	ErrAlreadyConnected = errors.New("already connected")
)

// Identity is the connected account together with the contract handle bound
// to it. Both are set or neither is.
type Identity[H any] struct {
	Address common.Address
	Handle  H
	// Epoch identifies the connection this identity belongs to.
	Epoch uint64
}

// Session tracks the current identity and connection state. Every
// transition bumps the epoch, so work started under an older epoch can
// detect that it has been superseded.
type Session[H any] struct {
	mu       sync.RWMutex
	state    types.ConnectionState
	identity *Identity[H]
	epoch    uint64

	referrer *common.Address
}

func New[H any]() *Session[H] {
	return &Session[H]{state: types.StateDisconnected}
}

// BeginConnect moves to Connecting. It is rejected while another connect is
// already in progress and while connected, so a declined handshake can never
// drop a live identity.
func (s *Session[H]) BeginConnect() (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == types.StateConnected {
		return 0, ErrAlreadyConnected
	}
	if !slices.Contains(types.QualifiedStatesForConnect(), s.state) {
		return 0, fmt.Errorf("%w: state %s", ErrConnectInProgress, s.state)
	}
	s.state = types.StateConnecting
	s.epoch++
	return s.epoch, nil
}

// Connect installs address and handle. From Connected it is an account
// switch; from Disconnected it follows an account change pushed by the wallet.
func (s *Session[H]) Connect(address common.Address, handle H) Identity[H] {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.epoch++
	s.state = types.StateConnected
	s.identity = &Identity[H]{Address: address, Handle: handle, Epoch: s.epoch}
	return *s.identity
}

// AbortConnect returns to Disconnected when a handshake failed. It reports
// false when epoch has already been superseded.
func (s *Session[H]) AbortConnect(epoch uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.epoch != epoch || s.state != types.StateConnecting {
		return false
	}
	s.epoch++
	s.state = types.StateDisconnected
	s.identity = nil
	return true
}

// Disconnect clears the identity. It reports false if there was nothing to clear.
func (s *Session[H]) Disconnect() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !slices.Contains(types.QualifiedStatesForDisconnect(), s.state) {
		return false
	}
	s.epoch++
	s.state = types.StateDisconnected
	s.identity = nil
	return true
}

// Current returns the connected identity.
func (s *Session[H]) Current() (Identity[H], bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.identity == nil {
		var zero Identity[H]
		return zero, false
	}
	return *s.identity, true
}

func (s *Session[H]) State() types.ConnectionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Session[H]) Epoch() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.epoch
}

// IsCurrent reports whether epoch still designates the live connection.
func (s *Session[H]) IsCurrent(epoch uint64) bool {
	return s.Epoch() == epoch
}
