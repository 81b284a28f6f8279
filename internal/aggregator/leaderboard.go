package aggregator

import (
	"math/big"
	"slices"

	"github.com/ethereum/go-ethereum/common"

	"github.com/polinfinity/staking-sync/internal/types"
)

// LeaderboardSize is the number of ranked referrers kept.
const LeaderboardSize = 10

// BuildLeaderboard sums bonus amounts per referrer, ranks them by total
// descending and keeps the top LeaderboardSize. Ties keep the order in which
// referrers first appear in events.
func BuildLeaderboard(events []types.RefBonusEvent) []types.LeaderboardEntry {
	totals := make(map[common.Address]*big.Int)
	order := make([]common.Address, 0)

	for _, e := range events {
		total, ok := totals[e.Referrer]
		if !ok {
			total = new(big.Int)
			totals[e.Referrer] = total
			order = append(order, e.Referrer)
		}
		total.Add(total, orZero(e.Amount))
	}

	slices.SortStableFunc(order, func(a, b common.Address) int {
		return totals[b].Cmp(totals[a])
	})

	if len(order) > LeaderboardSize {
		order = order[:LeaderboardSize]
	}

	entries := make([]types.LeaderboardEntry, 0, len(order))
	for i, referrer := range order {
		entries = append(entries, types.LeaderboardEntry{
			Rank:          i + 1,
			Referrer:      referrer,
			TotalBonus:    FromWei(totals[referrer]),
			RawTotalBonus: totals[referrer],
		})
	}
	return entries
}
