package snapshot

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/polinfinity/staking-sync/internal/observability/metrics"
	"github.com/polinfinity/staking-sync/internal/types"
)

// Store holds the single published snapshot. Readers load it lock-free;
// writers serialize through Update and replace it as a whole.
type Store struct {
	current atomic.Pointer[types.Snapshot]

	mu          sync.Mutex
	subscribers map[int]chan *types.Snapshot
	nextID      int
	now         func() time.Time
}

func NewStore() *Store {
	s := &Store{
		subscribers: make(map[int]chan *types.Snapshot),
		now:         time.Now,
	}
	s.current.Store(&types.Snapshot{State: types.StateDisconnected})
	return s
}

// Load returns the current snapshot. It must be treated as read-only.
func (s *Store) Load() *types.Snapshot {
	return s.current.Load()
}

// Update applies fn to a copy of the current snapshot. When fn returns false
// the copy is dropped and nothing is published. fn runs inside the writer
// critical section, so checks made there are atomic with the publish.
func (s *Store) Update(fn func(next *types.Snapshot) bool) (*types.Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.current.Load()
	next := prev.Clone()
	if !fn(next) {
		return prev, false
	}

	next.Version = prev.Version + 1
	next.UpdatedAt = s.now()
	s.current.Store(next)
	metrics.RecordSnapshotVersion(next.Version)

	for _, ch := range s.subscribers {
		offer(ch, next)
	}
	return next, true
}

// Subscribe returns a channel receiving published snapshots. Slow readers only
// ever see the latest snapshot; intermediate versions are coalesced away.
func (s *Store) Subscribe() (<-chan *types.Snapshot, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	ch := make(chan *types.Snapshot, 1)
	s.subscribers[id] = ch
	offer(ch, s.current.Load())

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subscribers, id)
			close(ch)
		})
	}
	return ch, cancel
}

// offer replaces any unread snapshot with snap. Must be called with s.mu held.
func offer(ch chan *types.Snapshot, snap *types.Snapshot) {
	select {
	case <-ch:
	default:
	}
	ch <- snap
}
