package aggregator

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/polinfinity/staking-sync/internal/types"
)

// ReduceReferralGraph counts the distinct referrals of identity. Every
// referral joins the team set; level 0 referrals also join the direct set.
// Events credited to another referrer are ignored.
func ReduceReferralGraph(events []types.RefBonusEvent, identity common.Address) types.ReferralGraph {
	direct := make(map[common.Address]struct{})
	team := make(map[common.Address]struct{})

	for _, e := range events {
		if e.Referrer != identity {
			continue
		}
		// common.Address holds raw bytes, so keys are already case-insensitive
		team[e.Referral] = struct{}{}
		if e.Level != nil && e.Level.Sign() == 0 {
			direct[e.Referral] = struct{}{}
		}
	}

	return types.ReferralGraph{
		Direct: len(direct),
		Team:   len(team),
	}
}
