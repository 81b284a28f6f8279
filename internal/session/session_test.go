package session

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polinfinity/staking-sync/internal/types"
	"github.com/polinfinity/staking-sync/testutil"
)

const checksummedRef = "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"

type failingCache struct{}

func (failingCache) LoadReferrer(context.Context) (string, error) {
	return "", errors.New("cache down")
}

func (failingCache) SaveReferrer(context.Context, string) error {
	return errors.New("cache down")
}

func TestSession_Lifecycle(t *testing.T) {
	s := New[string]()
	assert.Equal(t, types.StateDisconnected, s.State())
	_, ok := s.Current()
	assert.False(t, ok)

	epoch, err := s.BeginConnect()
	require.NoError(t, err)
	assert.Equal(t, types.StateConnecting, s.State())

	_, err = s.BeginConnect()
	require.ErrorIs(t, err, ErrConnectInProgress, "second connect while connecting must be rejected")

	addr := testutil.RandomAddress()
	id := s.Connect(addr, "handle-1")
	assert.Greater(t, id.Epoch, epoch)
	assert.Equal(t, types.StateConnected, s.State())
	assert.True(t, s.IsCurrent(id.Epoch))

	current, ok := s.Current()
	require.True(t, ok)
	assert.Equal(t, addr, current.Address)
	assert.Equal(t, "handle-1", current.Handle)

	t.Run("account switch stays connected with a new epoch", func(t *testing.T) {
		other := testutil.RandomAddress()
		switched := s.Connect(other, "handle-2")
		assert.Equal(t, types.StateConnected, s.State())
		assert.False(t, s.IsCurrent(id.Epoch))
		assert.True(t, s.IsCurrent(switched.Epoch))
		id = switched
	})

	t.Run("disconnect clears identity and handle together", func(t *testing.T) {
		assert.True(t, s.Disconnect())
		assert.Equal(t, types.StateDisconnected, s.State())
		_, ok := s.Current()
		assert.False(t, ok)
		assert.False(t, s.IsCurrent(id.Epoch))
		assert.False(t, s.Disconnect(), "already disconnected")
	})

	t.Run("aborted connect returns to disconnected", func(t *testing.T) {
		epoch, err := s.BeginConnect()
		require.NoError(t, err)
		assert.True(t, s.AbortConnect(epoch))
		assert.Equal(t, types.StateDisconnected, s.State())
		assert.False(t, s.AbortConnect(epoch), "stale epoch")
	})

	t.Run("connect while connected keeps the live identity", func(t *testing.T) {
		live := s.Connect(testutil.RandomAddress(), "handle-3")
		_, err := s.BeginConnect()
		require.ErrorIs(t, err, ErrAlreadyConnected)
		assert.Equal(t, types.StateConnected, s.State())
		assert.True(t, s.IsCurrent(live.Epoch))
		current, ok := s.Current()
		require.True(t, ok)
		assert.Equal(t, live.Address, current.Address)
	})
}

func TestSession_ResolveReferrer(t *testing.T) {
	ctx := t.Context()

	t.Run("valid mixed case parameter is checksummed and persisted", func(t *testing.T) {
		cache := NewMemoryCache()
		s := New[struct{}]()

		got := s.ResolveReferrer(ctx, checksummedRef, cache)
		assert.Equal(t, checksummedRef, got.Hex())

		cached, err := cache.LoadReferrer(ctx)
		require.NoError(t, err)
		assert.Equal(t, checksummedRef, cached)
	})

	t.Run("lower case parameter is persisted checksummed", func(t *testing.T) {
		cache := NewMemoryCache()
		got := New[struct{}]().ResolveReferrer(ctx, strings.ToLower(checksummedRef), cache)
		assert.Equal(t, checksummedRef, got.Hex())
		cached, _ := cache.LoadReferrer(ctx)
		assert.Equal(t, checksummedRef, cached)
	})

	t.Run("invalid parameter and no cache falls back to default", func(t *testing.T) {
		cache := NewMemoryCache()
		got := New[struct{}]().ResolveReferrer(ctx, "0xnot-an-address", cache)
		assert.Equal(t, DefaultReferrer, got)

		cached, _ := cache.LoadReferrer(ctx)
		assert.Empty(t, cached, "invalid value must not be cached")
	})

	t.Run("invalid parameter falls back to cache", func(t *testing.T) {
		cache := NewMemoryCache()
		require.NoError(t, cache.SaveReferrer(ctx, checksummedRef))

		got := New[struct{}]().ResolveReferrer(ctx, "garbage", cache)
		assert.Equal(t, checksummedRef, got.Hex())
	})

	t.Run("malformed cache falls back to default", func(t *testing.T) {
		cache := NewMemoryCache()
		require.NoError(t, cache.SaveReferrer(ctx, "0x5AAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"))

		got := New[struct{}]().ResolveReferrer(ctx, "", cache)
		assert.Equal(t, DefaultReferrer, got)
	})

	t.Run("cache errors are not fatal", func(t *testing.T) {
		got := New[struct{}]().ResolveReferrer(ctx, "", failingCache{})
		assert.Equal(t, DefaultReferrer, got)

		got = New[struct{}]().ResolveReferrer(ctx, checksummedRef, failingCache{})
		assert.Equal(t, checksummedRef, got.Hex())
	})

	t.Run("resolution is final for the session", func(t *testing.T) {
		s := New[struct{}]()
		first := s.ResolveReferrer(ctx, checksummedRef, nil)
		second := s.ResolveReferrer(ctx, testutil.RandomAddress().Hex(), nil)
		assert.Equal(t, first, second)
		assert.Equal(t, first, s.Referrer())
	})
}

func TestParseReferralParam(t *testing.T) {
	tests := []struct {
		name string
		link string
		want string
	}{
		{name: "full link", link: "https://pol-infinity.example/app?ref=" + checksummedRef, want: checksummedRef},
		{name: "bare address", link: "  " + checksummedRef + " ", want: checksummedRef},
		{name: "link without ref", link: "https://pol-infinity.example/app?utm=x", want: ""},
		{name: "empty", link: "", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseReferralParam(tt.link))
		})
	}
}

func TestReferralLink(t *testing.T) {
	addr := testutil.RandomAddress()
	assert.Equal(t, "https://pol-infinity.example/app?ref="+addr.Hex(), ReferralLink("https://pol-infinity.example/app", addr))
}
