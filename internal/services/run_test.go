package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/polinfinity/staking-sync/internal/clients/chainclient"
	"github.com/polinfinity/staking-sync/internal/clients/walletclient"
	"github.com/polinfinity/staking-sync/internal/types"
	"github.com/polinfinity/staking-sync/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestRun(t *testing.T) {
	svc, reader, wallet := newTestService(t)
	referrer := testutil.RandomAddress()
	svc.cfg.Session.ReferralLink = "https://pol-infinity.example/app?ref=" + referrer.Hex()

	expectGlobal(reader, 1000)
	expectLeaderboard(reader, []types.RefBonusEvent{
		{Referrer: referrer, Amount: testutil.Wei(2)},
	}, nil).Once()
	reader.On("SubscribeDeposits", mock.Anything, mock.Anything).Return(chainclient.ErrNoWebsocket).Maybe()
	wallet.On("Accounts").Return(nil).Once()
	wallet.On("Events").Return((<-chan walletclient.Event)(make(chan walletclient.Event))).Once()

	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan error, 1)
	go func() { done <- svc.Run(ctx) }()

	require.Eventually(t, func() bool {
		snap := svc.Snapshot()
		return len(snap.Leaderboard) == 1 && snap.Global.RawStaked != nil
	}, time.Second, time.Millisecond)

	snap := svc.Snapshot()
	assert.Equal(t, referrer, snap.Referrer)
	assert.Equal(t, "1000", snap.Global.TotalStaked.String())
	assert.Equal(t, types.StateDisconnected, snap.State)
	assert.False(t, snap.NextCycleAt.IsZero())

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancellation")
	}
}

func TestWatchDeposits(t *testing.T) {
	svc, reader, _ := newTestService(t)
	expectGlobal(reader, 1000)

	ev := types.DepositEvent{
		EventMeta: types.EventMeta{TxHash: testutil.RandomHash()},
		User:      testutil.RandomAddress(),
		Amount:    testutil.Wei(25),
	}
	reader.On("SubscribeDeposits", mock.Anything, mock.Anything).
		Return(errors.New("connection reset")).Once()
	reader.On("SubscribeDeposits", mock.Anything, mock.Anything).
		Return(func(ctx context.Context, sink func(types.DepositEvent)) error {
			sink(ev)
			<-ctx.Done()
			return nil
		}).Once()

	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan struct{})
	go func() {
		svc.watchDeposits(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		snap := svc.Snapshot()
		return snap.LatestDeposit != nil && snap.Global.RawStaked != nil
	}, time.Second, time.Millisecond)

	snap := svc.Snapshot()
	assert.Equal(t, ev.User, snap.LatestDeposit.User)
	assert.Equal(t, ev.TxHash, snap.LatestDeposit.TxHash)
	assert.Equal(t, "25", snap.LatestDeposit.Amount.String())
	assert.Equal(t, "1000", snap.Global.TotalStaked.String(), "deposit triggers a global refresh")

	cancel()
	<-done
}

func TestWatchWallet(t *testing.T) {
	svc, reader, wallet := newTestService(t)
	addr := testutil.RandomAddress()
	expectGlobal(reader, 1000)
	expectUser(reader, addr, 100)
	connect(t, svc, wallet, addr)

	events := make(chan walletclient.Event)
	wallet.On("Events").Return((<-chan walletclient.Event)(events)).Once()

	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()
	go svc.watchWallet(ctx)

	events <- walletclient.Event{Kind: walletclient.EventAccountsChanged, Accounts: []common.Address{}}
	require.Eventually(t, func() bool {
		return svc.Snapshot().State == types.StateDisconnected
	}, time.Second, time.Millisecond)
	assert.Nil(t, svc.Snapshot().Identity)
}
