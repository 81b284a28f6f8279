package pkg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetenv(t *testing.T) {
	const (
		key          = "STAKING_SYNC_TEST_KEY"
		defaultValue = "default"
	)

	t.Run("unset key falls back", func(t *testing.T) {
		assert.Equal(t, defaultValue, Getenv(key, defaultValue))
	})
	t.Run("empty value wins over default", func(t *testing.T) {
		t.Setenv(key, "")
		assert.Empty(t, Getenv(key, defaultValue))
	})
	t.Run("set value", func(t *testing.T) {
		t.Setenv(key, "wss://polygon.example")
		assert.Equal(t, "wss://polygon.example", Getenv(key, defaultValue))
	})
}

func TestGetenvUint64(t *testing.T) {
	const key = "STAKING_SYNC_TEST_CHAIN_ID"

	t.Run("unset key falls back", func(t *testing.T) {
		v, err := GetenvUint64(key, 137)
		require.NoError(t, err)
		assert.Equal(t, uint64(137), v)
	})
	t.Run("parsed", func(t *testing.T) {
		t.Setenv(key, "80002")
		v, err := GetenvUint64(key, 137)
		require.NoError(t, err)
		assert.Equal(t, uint64(80002), v)
	})
	t.Run("malformed", func(t *testing.T) {
		t.Setenv(key, "polygon")
		_, err := GetenvUint64(key, 137)
		require.ErrorContains(t, err, key)
	})
}
