package services

import (
	"context"
	"errors"
	"math"
	"sync"

	"github.com/polinfinity/staking-sync/internal/observability/metrics"
	"github.com/polinfinity/staking-sync/internal/types"
	"github.com/rs/zerolog/log"
)

type cycleKind string

const (
	cycleGlobal      cycleKind = "global"
	cycleUser        cycleKind = "user"
	cycleLeaderboard cycleKind = "leaderboard"
	// full covers global and user reads published together
	cycleFull cycleKind = "full"
)

// anyEpoch marks cycles whose data does not depend on the connected identity
const anyEpoch = uint64(math.MaxUint64)

// cycleGuard hands out increasing sequence numbers per cycle kind. Only the
// most recently started cycle of a kind may publish.
type cycleGuard struct {
	mu     sync.Mutex
	latest map[cycleKind]uint64
}

func newCycleGuard() *cycleGuard {
	return &cycleGuard{latest: make(map[cycleKind]uint64)}
}

func (g *cycleGuard) next(kind cycleKind) uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.latest[kind]++
	return g.latest[kind]
}

func (g *cycleGuard) isLatest(kind cycleKind, seq uint64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.latest[kind] == seq
}

// publish applies fn to the next snapshot if cycle seq is still the latest of
// its kind and epoch still designates the live connection. The checks and the
// write happen in one critical section.
func (s *Service) publish(
	ctx context.Context, kind cycleKind, seq, epoch uint64, fn func(next *types.Snapshot),
) bool {
	_, applied := s.store.Update(func(next *types.Snapshot) bool {
		if !s.cycles.isLatest(kind, seq) {
			return false
		}
		if epoch != anyEpoch && !s.session.IsCurrent(epoch) {
			return false
		}
		fn(next)
		return true
	})

	metrics.RecordRefreshCycle(string(kind), applied)
	if !applied {
		log.Ctx(ctx).Debug().Msg("discarding superseded refresh cycle")
	}
	return applied
}

// queryFailed records a per-metric failure. The metric keeps its previous value.
func queryFailed(ctx context.Context, metric string, err error) {
	var qerr *types.QueryError
	if errors.As(err, &qerr) {
		metric = qerr.Metric
	}
	metrics.IncQueryFailures(metric)
	log.Ctx(ctx).Warn().Err(err).Str("metric", metric).Msg("query failed, keeping previous value")
}
