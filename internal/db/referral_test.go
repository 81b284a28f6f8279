//go:build integration

package db_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polinfinity/staking-sync/internal/db"
	"github.com/polinfinity/staking-sync/internal/db/model"
	"github.com/polinfinity/staking-sync/testutil"
)

func TestReferralCache(t *testing.T) {
	ctx := t.Context()

	t.Run("empty cache", func(t *testing.T) {
		referrer, err := testDB.LoadReferrer(ctx)
		require.NoError(t, err)
		assert.Empty(t, referrer)
	})

	t.Run("save then overwrite", func(t *testing.T) {
		first := testutil.RandomAddress().Hex()
		require.NoError(t, testDB.SaveReferrer(ctx, first))

		referrer, err := testDB.LoadReferrer(ctx)
		require.NoError(t, err)
		assert.Equal(t, first, referrer)

		second := testutil.RandomAddress().Hex()
		require.NoError(t, testDB.SaveReferrer(ctx, second))

		referrer, err = testDB.LoadReferrer(ctx)
		require.NoError(t, err)
		assert.Equal(t, second, referrer)
	})

	t.Run("through the metrics decorator", func(t *testing.T) {
		withMetrics := db.NewDbWithMetrics(testDB)
		third := testutil.RandomAddress().Hex()
		require.NoError(t, withMetrics.SaveReferrer(ctx, third))

		referrer, err := withMetrics.LoadReferrer(ctx)
		require.NoError(t, err)
		assert.Equal(t, third, referrer)
	})

	t.Run("setup is idempotent", func(t *testing.T) {
		require.NoError(t, model.Setup(ctx, testDbConfig))
	})
}
