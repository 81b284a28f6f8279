package db

import (
	"context"
	"time"

	"github.com/polinfinity/staking-sync/internal/observability/metrics"
	"github.com/polinfinity/staking-sync/internal/session"
)

var _ session.ReferralCache = (*DbWithMetrics)(nil)

// DbWithMetrics is the referral cache handed to the service. Every call is
// observed in the db latency histogram.
type DbWithMetrics struct {
	db DbInterface
}

func NewDbWithMetrics(db DbInterface) *DbWithMetrics {
	return &DbWithMetrics{db: db}
}

func (d *DbWithMetrics) Ping(ctx context.Context) error {
	_, err := observe("Ping", func() (struct{}, error) {
		return struct{}{}, d.db.Ping(ctx)
	})
	return err
}

func (d *DbWithMetrics) LoadReferrer(ctx context.Context) (string, error) {
	return observe("LoadReferrer", func() (string, error) {
		return d.db.LoadReferrer(ctx)
	})
}

func (d *DbWithMetrics) SaveReferrer(ctx context.Context, referrer string) error {
	_, err := observe("SaveReferrer", func() (struct{}, error) {
		return struct{}{}, d.db.SaveReferrer(ctx, referrer)
	})
	return err
}

func observe[T any](method string, f func() (T, error)) (T, error) {
	start := time.Now()
	result, err := f()
	metrics.RecordDbLatency(time.Since(start), method, err != nil)

	return result, err
}
