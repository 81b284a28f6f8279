package aggregator

import (
	"math"
	"math/big"

	"github.com/polinfinity/staking-sync/internal/types"
)

// SumWithdrawals adds up the amounts of every withdrawal event.
func SumWithdrawals(withdrawals []types.WithdrawEvent) *big.Int {
	total := new(big.Int)
	for _, w := range withdrawals {
		total.Add(total, orZero(w.Amount))
	}
	return total
}

// ReduceGlobalTotals builds the contract-wide metrics from the raw point
// queries and the withdrawal window, applying policy to the display fields.
func ReduceGlobalTotals(
	staked, users, refBonus *big.Int,
	withdrawals []types.WithdrawEvent,
	policy DisplayPolicy,
) types.GlobalMetrics {
	rawWithdrawn := SumWithdrawals(withdrawals)
	rawUsers := toUint64(users)

	return types.GlobalMetrics{
		TotalStaked:    policy.ApplyStaked(FromWei(staked)),
		TotalUsers:     policy.ApplyUsers(rawUsers),
		TotalRefBonus:  FromWei(refBonus),
		TotalWithdrawn: policy.ApplyWithdrawn(FromWei(rawWithdrawn)),

		RawStaked:    new(big.Int).Set(orZero(staked)),
		RawUsers:     rawUsers,
		RawRefBonus:  new(big.Int).Set(orZero(refBonus)),
		RawWithdrawn: rawWithdrawn,

		DisplayPolicy: policy.Name,
		Synthetic:     policy.Synthetic(),
	}
}

// toUint64 saturates values that do not fit.
func toUint64(v *big.Int) uint64 {
	if v == nil || v.Sign() <= 0 {
		return 0
	}
	if !v.IsUint64() {
		return math.MaxUint64
	}
	return v.Uint64()
}
