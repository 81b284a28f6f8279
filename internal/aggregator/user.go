package aggregator

import (
	"math/big"

	"github.com/polinfinity/staking-sync/internal/types"
)

// ReduceUserMetrics converts the identity's point queries into display units.
// No transform is applied to user-scoped figures.
func ReduceUserMetrics(
	available, deposits, withdrawn *big.Int,
	levelBonuses [types.ReferralLevels]*big.Int,
) types.UserMetrics {
	m := types.UserMetrics{
		Available:      FromWei(available),
		TotalDeposited: FromWei(deposits),
		TotalWithdrawn: FromWei(withdrawn),
	}
	for i, bonus := range levelBonuses {
		m.ReferralBonusByLevel[i] = FromWei(bonus)
	}
	return m
}
