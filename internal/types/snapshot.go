package types

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// Snapshot is the published view of on-chain state. A published snapshot is
// never mutated; writers build a copy and replace it as a whole.
type Snapshot struct {
	Version   uint64          `json:"version"`
	UpdatedAt time.Time       `json:"updatedAt"`
	State     ConnectionState `json:"state"`

	Identity     *common.Address `json:"identity,omitempty"`
	Referrer     common.Address  `json:"referrer"`
	ReferralLink string          `json:"referralLink,omitempty"`

	Global      GlobalMetrics `json:"global"`
	NextCycleAt time.Time     `json:"nextCycleAt"`

	User              *UserMetrics        `json:"user,omitempty"`
	AvailableEstimate decimal.Decimal     `json:"availableEstimate"`
	AvailableAt       time.Time           `json:"availableAt"`
	Referrals         ReferralGraph       `json:"referrals"`
	Transactions      []TransactionRecord `json:"transactions"`

	Leaderboard   []LeaderboardEntry `json:"leaderboard"`
	LatestDeposit *DepositNotice     `json:"latestDeposit,omitempty"`
}

// Clone returns a shallow copy. Slices and pointers are shared, which is safe
// because writers replace them instead of mutating in place.
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return &Snapshot{State: StateDisconnected}
	}
	next := *s
	return &next
}

// ClearUser drops every identity-scoped field.
func (s *Snapshot) ClearUser() {
	s.Identity = nil
	s.ReferralLink = ""
	s.User = nil
	s.AvailableEstimate = decimal.Zero
	s.AvailableAt = time.Time{}
	s.Referrals = ReferralGraph{}
	s.Transactions = nil
}
