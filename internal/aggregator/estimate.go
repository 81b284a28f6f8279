package aggregator

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultDailyAccrualRate is the contract's advertised daily rate (5%).
var DefaultDailyAccrualRate = decimal.RequireFromString("0.05")

const estimatePrecision = 18

var secondsPerDay = decimal.NewFromInt(int64(24 * time.Hour / time.Second))

// EstimateAvailable extrapolates base, read at an authoritative refresh, by
// a continuous daily rate over elapsed:
//
//	base * (1 + dailyRate * elapsed / 24h)
//
// A non-positive base or elapsed returns base unchanged. The result is a
// display estimate only; the next full refresh overwrites it.
func EstimateAvailable(base decimal.Decimal, elapsed time.Duration, dailyRate decimal.Decimal) decimal.Decimal {
	if !base.IsPositive() || elapsed <= 0 {
		return base
	}

	elapsedSeconds := decimal.NewFromFloat(elapsed.Seconds())
	accrued := base.Mul(dailyRate).Mul(elapsedSeconds).DivRound(secondsPerDay, estimatePrecision)
	return base.Add(accrued)
}

// NextCycleStart returns the UTC midnight following now, when the contract's
// daily bonus cycle rolls over.
func NextCycleStart(now time.Time) time.Time {
	y, m, d := now.UTC().Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, time.UTC)
}
