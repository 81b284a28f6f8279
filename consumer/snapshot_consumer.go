package consumer

import (
	"context"

	"github.com/polinfinity/staking-sync/internal/types"
)

// SnapshotConsumer forwards published snapshots to downstream systems
type SnapshotConsumer interface {
	SendSnapshot(ctx context.Context, snap *types.Snapshot) error
	Run(ctx context.Context, snapshots <-chan *types.Snapshot)
	Shutdown()
}
