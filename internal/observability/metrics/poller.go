package metrics

import (
	"context"
	"errors"
	"time"
)

// Cancelled marks a poll cut short because its schedule was stopped
const Cancelled Outcome = "cancelled"

// RecordPollerDuration wraps a poll so every run is observed under schedule.
func RecordPollerDuration(schedule string, poll func(ctx context.Context) error) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		start := time.Now()
		err := poll(ctx)

		outcome := statusOf(err != nil)
		if errors.Is(err, context.Canceled) {
			outcome = Cancelled
		}
		pollerDurationHistogram.WithLabelValues(schedule, outcome.String()).Observe(time.Since(start).Seconds())

		return err
	}
}
