package snapshot

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polinfinity/staking-sync/internal/types"
)

func TestStore_Update(t *testing.T) {
	s := NewStore()
	initial := s.Load()
	assert.Equal(t, types.StateDisconnected, initial.State)
	assert.Zero(t, initial.Version)

	t.Run("published snapshot replaces the previous one", func(t *testing.T) {
		next, ok := s.Update(func(next *types.Snapshot) bool {
			next.Global.TotalUsers = 7
			return true
		})
		require.True(t, ok)
		assert.Equal(t, uint64(1), next.Version)
		assert.Same(t, next, s.Load())
		// the previous snapshot object was not mutated
		assert.Zero(t, initial.Global.TotalUsers)
	})

	t.Run("rejected update publishes nothing", func(t *testing.T) {
		before := s.Load()
		got, ok := s.Update(func(next *types.Snapshot) bool {
			next.Global.TotalUsers = 99
			return false
		})
		assert.False(t, ok)
		assert.Same(t, before, got)
		assert.Same(t, before, s.Load())
	})

	t.Run("concurrent writers never lose versions", func(t *testing.T) {
		start := s.Load().Version
		var wg sync.WaitGroup
		for range 50 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				s.Update(func(next *types.Snapshot) bool { return true })
			}()
		}
		wg.Wait()
		assert.Equal(t, start+50, s.Load().Version)
	})
}

func TestStore_Subscribe(t *testing.T) {
	s := NewStore()
	ch, cancel := s.Subscribe()

	// the current snapshot is delivered right away
	first := <-ch
	assert.Zero(t, first.Version)

	for range 5 {
		s.Update(func(next *types.Snapshot) bool { return true })
	}

	// intermediate versions are coalesced
	latest := <-ch
	assert.Equal(t, uint64(5), latest.Version)

	cancel()
	cancel()
	_, open := <-ch
	assert.False(t, open)
}
