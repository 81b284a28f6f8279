package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/polinfinity/staking-sync/consumer"
	"github.com/polinfinity/staking-sync/internal/config"
	"github.com/polinfinity/staking-sync/internal/observability/metrics"
	"github.com/polinfinity/staking-sync/internal/types"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"
)

const snapshotMessageType = "staking.snapshot"

var _ consumer.SnapshotConsumer = (*QueueManager)(nil)

type publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// QueueManager fans published snapshots out to a RabbitMQ exchange
type QueueManager struct {
	conn    *amqp.Connection
	channel publisher
	cfg     *config.QueueConfig

	lastVersion uint64
}

func NewQueueManager(cfg *config.QueueConfig) (*QueueManager, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	err = ch.ExchangeDeclare(cfg.Exchange, amqp.ExchangeFanout, true, false, false, false, nil)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange %s: %w", cfg.Exchange, err)
	}

	return &QueueManager{conn: conn, channel: ch, cfg: cfg}, nil
}

// SendSnapshot publishes snap unless a snapshot with the same or a newer
// version was already sent.
func (qm *QueueManager) SendSnapshot(ctx context.Context, snap *types.Snapshot) error {
	if snap.Version <= qm.lastVersion {
		return nil
	}

	body, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, qm.cfg.PublishTimeout)
	defer cancel()

	err = qm.channel.PublishWithContext(ctx, qm.cfg.Exchange, "", false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Transient,
		Type:         snapshotMessageType,
		MessageId:    strconv.FormatUint(snap.Version, 10),
		Timestamp:    snap.UpdatedAt,
		Body:         body,
	})
	if err != nil {
		metrics.RecordQueueSendError()
		return fmt.Errorf("failed to publish snapshot %d: %w", snap.Version, err)
	}

	qm.lastVersion = snap.Version
	return nil
}

// Run forwards snapshots until the channel closes or ctx is done. Failed
// sends are logged; the next snapshot supersedes them anyway.
func (qm *QueueManager) Run(ctx context.Context, snapshots <-chan *types.Snapshot) {
	log := log.Ctx(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case snap, ok := <-snapshots:
			if !ok {
				return
			}
			if err := qm.SendSnapshot(ctx, snap); err != nil {
				log.Error().Err(err).Msg("failed to send snapshot to queue")
			}
		}
	}
}

// Shutdown gracefully stops the interaction with the queue, ensuring all resources are properly released.
func (qm *QueueManager) Shutdown() {
	log.Info().Msg("Shutting down queue manager")
	if qm.channel != nil {
		if err := qm.channel.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close queue channel")
		}
	}
	if qm.conn != nil {
		if err := qm.conn.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close queue connection")
		}
	}
}
