package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPollerConfig_Validate(t *testing.T) {
	t.Run("all required fields set", func(t *testing.T) {
		cfg := &PollerConfig{
			FullRefreshInterval: 30 * time.Second,
			LeaderboardInterval: 10 * time.Minute,
			GlobalInterval:      30 * time.Second,
			TickerInterval:      2 * time.Second,
		}
		err := cfg.Validate()
		require.NoError(t, err)
		assert.Equal(t, 10*time.Minute, cfg.LeaderboardInterval)
		assert.Equal(t, 2*time.Second, cfg.TickerInterval)
	})

	t.Run("leaderboard and ticker not set - should use defaults", func(t *testing.T) {
		cfg := &PollerConfig{
			FullRefreshInterval: 30 * time.Second,
			GlobalInterval:      30 * time.Second,
		}
		err := cfg.Validate()
		require.NoError(t, err)
		assert.Equal(t, 5*time.Minute, cfg.LeaderboardInterval)
		assert.Equal(t, time.Second, cfg.TickerInterval)
	})

	t.Run("full refresh interval not set - should error", func(t *testing.T) {
		cfg := &PollerConfig{
			GlobalInterval: 30 * time.Second,
		}
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "full-refresh-interval must be positive")
	})

	t.Run("global interval not set - should error", func(t *testing.T) {
		cfg := &PollerConfig{
			FullRefreshInterval: 30 * time.Second,
		}
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "global-interval must be positive")
	})

	t.Run("leaderboard faster than full refresh - should error", func(t *testing.T) {
		cfg := &PollerConfig{
			FullRefreshInterval: time.Minute,
			LeaderboardInterval: 10 * time.Second,
			GlobalInterval:      30 * time.Second,
		}
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "leaderboard-interval must not be shorter")
	})
}
