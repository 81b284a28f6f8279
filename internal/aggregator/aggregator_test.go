package aggregator

import (
	"math"
	"math/big"
	"math/rand"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polinfinity/staking-sync/internal/types"
	"github.com/polinfinity/staking-sync/testutil"
)

func refBonus(referrer, referral common.Address, level int64, amount *big.Int) types.RefBonusEvent {
	return types.RefBonusEvent{
		Referrer: referrer,
		Referral: referral,
		Level:    big.NewInt(level),
		Amount:   amount,
	}
}

func TestReduceGlobalTotals(t *testing.T) {
	withdrawals := []types.WithdrawEvent{
		{Amount: testutil.Wei(4)},
		{Amount: testutil.Wei(6)},
	}

	t.Run("identity policy passes raw values through", func(t *testing.T) {
		m := ReduceGlobalTotals(testutil.Wei(100), big.NewInt(12), testutil.Wei(3), withdrawals, IdentityPolicy())

		assert.True(t, m.TotalStaked.Equal(decimal.NewFromInt(100)))
		assert.Equal(t, uint64(12), m.TotalUsers)
		assert.True(t, m.TotalRefBonus.Equal(decimal.NewFromInt(3)))
		assert.True(t, m.TotalWithdrawn.Equal(decimal.NewFromInt(10)))
		assert.Equal(t, 0, m.RawWithdrawn.Cmp(testutil.Wei(10)))
		assert.False(t, m.Synthetic)
		assert.Equal(t, PolicyIdentity, m.DisplayPolicy)
	})

	t.Run("promotional policy is reproduced and flagged", func(t *testing.T) {
		m := ReduceGlobalTotals(testutil.Wei(100), big.NewInt(12), testutil.Wei(3), withdrawals, PromotionalPolicy())

		// 1500 + 100*2
		assert.True(t, m.TotalStaked.Equal(decimal.NewFromInt(1700)), m.TotalStaked.String())
		// 50 + 12 + 12/5
		assert.Equal(t, uint64(64), m.TotalUsers)
		// 500 + 10*1.5
		assert.True(t, m.TotalWithdrawn.Equal(decimal.NewFromInt(515)), m.TotalWithdrawn.String())
		// raw figures are untouched
		assert.Equal(t, 0, m.RawStaked.Cmp(testutil.Wei(100)))
		assert.Equal(t, uint64(12), m.RawUsers)
		assert.True(t, m.Synthetic)
	})

	t.Run("nil inputs are zero", func(t *testing.T) {
		m := ReduceGlobalTotals(nil, nil, nil, nil, IdentityPolicy())
		assert.True(t, m.TotalStaked.IsZero())
		assert.Zero(t, m.TotalUsers)
		assert.Equal(t, 0, m.RawWithdrawn.Sign())
	})

	t.Run("display transform preserves ordering", func(t *testing.T) {
		for _, policy := range []DisplayPolicy{IdentityPolicy(), PromotionalPolicy()} {
			for range 100 {
				a, b := testutil.RandomWei(1_000_000), testutil.RandomWei(1_000_000)
				if a.Cmp(b) > 0 {
					a, b = b, a
				}
				ua, ub := uint64(rand.Int63n(1_000_000)), uint64(rand.Int63n(1_000_000))
				if ua > ub {
					ua, ub = ub, ua
				}

				lo := ReduceGlobalTotals(a, new(big.Int).SetUint64(ua), a, []types.WithdrawEvent{{Amount: a}}, policy)
				hi := ReduceGlobalTotals(b, new(big.Int).SetUint64(ub), b, []types.WithdrawEvent{{Amount: b}}, policy)

				assert.True(t, lo.TotalStaked.LessThanOrEqual(hi.TotalStaked))
				assert.True(t, lo.TotalWithdrawn.LessThanOrEqual(hi.TotalWithdrawn))
				assert.True(t, lo.TotalRefBonus.LessThanOrEqual(hi.TotalRefBonus))
				assert.LessOrEqual(t, lo.TotalUsers, hi.TotalUsers)
			}
		}
	})
}

func TestReduceUserMetrics(t *testing.T) {
	levels := [types.ReferralLevels]*big.Int{testutil.Wei(1), testutil.Wei(2), nil, testutil.Wei(4)}
	m := ReduceUserMetrics(testutil.Wei(7), testutil.Wei(50), nil, levels)

	assert.True(t, m.Available.Equal(decimal.NewFromInt(7)))
	assert.True(t, m.TotalDeposited.Equal(decimal.NewFromInt(50)))
	assert.True(t, m.TotalWithdrawn.IsZero())
	assert.True(t, m.ReferralBonusByLevel[1].Equal(decimal.NewFromInt(2)))
	assert.True(t, m.ReferralBonusByLevel[2].IsZero())
	assert.True(t, m.ReferralBonusByLevel[3].Equal(decimal.NewFromInt(4)))
}

func TestReduceReferralGraph(t *testing.T) {
	me := testutil.RandomAddress()
	alice, bob, carol := testutil.RandomAddress(), testutil.RandomAddress(), testutil.RandomAddress()

	events := []types.RefBonusEvent{
		refBonus(me, alice, 0, testutil.Wei(1)),
		refBonus(me, alice, 0, testutil.Wei(1)),
		refBonus(me, bob, 1, testutil.Wei(1)),
		refBonus(me, carol, 2, testutil.Wei(1)),
		refBonus(me, carol, 0, testutil.Wei(1)),
		// credited to someone else
		refBonus(testutil.RandomAddress(), testutil.RandomAddress(), 0, testutil.Wei(1)),
	}

	graph := ReduceReferralGraph(events, me)
	assert.Equal(t, 2, graph.Direct)
	assert.Equal(t, 3, graph.Team)

	t.Run("idempotent under re-application", func(t *testing.T) {
		doubled := append(append([]types.RefBonusEvent{}, events...), events...)
		assert.Equal(t, graph, ReduceReferralGraph(doubled, me))
	})

	t.Run("direct is a subset of team", func(t *testing.T) {
		for range 50 {
			var random []types.RefBonusEvent
			pool := []common.Address{alice, bob, carol, testutil.RandomAddress()}
			for range rand.Intn(30) {
				random = append(random, refBonus(me, pool[rand.Intn(len(pool))], int64(rand.Intn(4)), testutil.Wei(1)))
			}
			g := ReduceReferralGraph(random, me)
			assert.GreaterOrEqual(t, g.Team, g.Direct)
			assert.LessOrEqual(t, g.Team, len(pool))
		}
	})

	t.Run("no events", func(t *testing.T) {
		assert.Equal(t, types.ReferralGraph{}, ReduceReferralGraph(nil, me))
	})
}

func TestBuildLeaderboard(t *testing.T) {
	t.Run("sums, ranks and truncates", func(t *testing.T) {
		var events []types.RefBonusEvent
		referrers := make([]common.Address, 15)
		for i := range referrers {
			referrers[i] = testutil.RandomAddress()
			// referrer i earns i+1 tokens split over two events
			events = append(events,
				refBonus(referrers[i], testutil.RandomAddress(), 0, testutil.Wei(int64(i))),
				refBonus(referrers[i], testutil.RandomAddress(), 1, testutil.Wei(1)),
			)
		}

		board := BuildLeaderboard(events)
		require.Len(t, board, LeaderboardSize)
		assert.Equal(t, referrers[14], board[0].Referrer)
		assert.True(t, board[0].TotalBonus.Equal(decimal.NewFromInt(15)))
		assert.Equal(t, 1, board[0].Rank)
		assert.Equal(t, referrers[5], board[9].Referrer)
		assert.Equal(t, 10, board[9].Rank)
		for i := 1; i < len(board); i++ {
			assert.GreaterOrEqual(t, board[i-1].RawTotalBonus.Cmp(board[i].RawTotalBonus), 0)
		}
	})

	t.Run("ties keep first appearance order", func(t *testing.T) {
		a, b, c := testutil.RandomAddress(), testutil.RandomAddress(), testutil.RandomAddress()
		board := BuildLeaderboard([]types.RefBonusEvent{
			refBonus(b, a, 0, testutil.Wei(5)),
			refBonus(a, b, 0, testutil.Wei(5)),
			refBonus(c, a, 0, testutil.Wei(9)),
		})
		require.Len(t, board, 3)
		assert.Equal(t, []common.Address{c, b, a}, []common.Address{board[0].Referrer, board[1].Referrer, board[2].Referrer})
	})

	t.Run("amounts beyond uint64 are summed exactly", func(t *testing.T) {
		huge, ok := new(big.Int).SetString("340282366920938463463374607431768211456", 10) // 2^128
		require.True(t, ok)
		who := testutil.RandomAddress()
		board := BuildLeaderboard([]types.RefBonusEvent{
			refBonus(who, who, 0, huge),
			refBonus(who, who, 0, huge),
		})
		require.Len(t, board, 1)
		assert.Equal(t, 0, board[0].RawTotalBonus.Cmp(new(big.Int).Lsh(huge, 1)))
	})

	t.Run("per-referrer sums are order independent", func(t *testing.T) {
		var events []types.RefBonusEvent
		pool := []common.Address{testutil.RandomAddress(), testutil.RandomAddress(), testutil.RandomAddress(), testutil.RandomAddress()}
		for range 40 {
			events = append(events, refBonus(pool[rand.Intn(len(pool))], testutil.RandomAddress(), 0, testutil.RandomWei(1000)))
		}

		sums := func(board []types.LeaderboardEntry) map[common.Address]string {
			out := make(map[common.Address]string)
			for _, e := range board {
				out[e.Referrer] = e.RawTotalBonus.String()
			}
			return out
		}

		want := sums(BuildLeaderboard(events))
		for range 20 {
			shuffled := append([]types.RefBonusEvent{}, events...)
			rand.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
			assert.Equal(t, want, sums(BuildLeaderboard(shuffled)))
		}
	})

	t.Run("empty", func(t *testing.T) {
		assert.Empty(t, BuildLeaderboard(nil))
	})
}

func TestBuildTransactionHistory(t *testing.T) {
	hashes := []common.Hash{testutil.RandomHash(), testutil.RandomHash(), testutil.RandomHash()}
	events := []types.DepositEvent{
		{EventMeta: types.EventMeta{TxHash: hashes[0]}, Amount: testutil.Wei(10), Start: big.NewInt(1_700_000_000)},
		{EventMeta: types.EventMeta{TxHash: hashes[1]}, Amount: testutil.Wei(20), Start: big.NewInt(1_700_000_900)},
		{EventMeta: types.EventMeta{TxHash: hashes[2]}, Amount: testutil.Wei(30), Start: big.NewInt(1_700_000_500)},
	}

	records := BuildTransactionHistory(events, "polygonscan.com")
	require.Len(t, records, 3)
	assert.Equal(t, []common.Hash{hashes[1], hashes[2], hashes[0]},
		[]common.Hash{records[0].TxHash, records[1].TxHash, records[2].TxHash})
	assert.True(t, records[0].Amount.Equal(decimal.NewFromInt(20)))
	assert.Equal(t, time.Unix(1_700_000_900, 0).UTC(), records[0].Timestamp)
	assert.Equal(t, "https://polygonscan.com/tx/"+hashes[1].Hex(), records[0].ExplorerURL)

	assert.Empty(t, BuildTransactionHistory(nil, "polygonscan.com"))
}

func TestEstimateAvailable(t *testing.T) {
	rate := DefaultDailyAccrualRate

	t.Run("one full day", func(t *testing.T) {
		base := decimal.RequireFromString("123.456")
		got := EstimateAvailable(base, 24*time.Hour, rate)
		want := base.Mul(decimal.NewFromInt(1).Add(rate))
		assert.True(t, got.Sub(want).Abs().LessThan(decimal.New(1, -9)), "got %s want %s", got, want)
	})

	t.Run("one second", func(t *testing.T) {
		base := decimal.NewFromInt(86400)
		got := EstimateAvailable(base, time.Second, rate)
		assert.True(t, got.Equal(decimal.RequireFromString("86400.05")), got.String())
	})

	t.Run("zero base and zero elapsed are unchanged", func(t *testing.T) {
		assert.True(t, EstimateAvailable(decimal.Zero, time.Hour, rate).IsZero())
		assert.True(t, EstimateAvailable(decimal.NewFromInt(5), 0, rate).Equal(decimal.NewFromInt(5)))
	})
}

func TestNextCycleStart(t *testing.T) {
	cases := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{
			name: "mid day",
			now:  time.Date(2025, 3, 1, 12, 30, 0, 0, time.UTC),
			want: time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "exactly midnight rolls to the next day",
			now:  time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
			want: time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "month end",
			now:  time.Date(2024, 2, 29, 23, 59, 59, 0, time.UTC),
			want: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "local zone is read as utc",
			now:  time.Date(2025, 3, 1, 22, 0, 0, 0, time.FixedZone("UTC-5", -5*3600)),
			want: time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC),
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, NextCycleStart(tc.now))
		})
	}
}

func TestApplyUsers(t *testing.T) {
	t.Run("offset and bonus", func(t *testing.T) {
		p := PromotionalPolicy()
		assert.Equal(t, uint64(50+100+20), p.ApplyUsers(100))
	})
	t.Run("saturates instead of wrapping", func(t *testing.T) {
		p := DisplayPolicy{UsersOffset: 50, UsersBonusDivisor: 5}
		assert.Equal(t, uint64(math.MaxUint64), p.ApplyUsers(math.MaxUint64))
		assert.Equal(t, uint64(math.MaxUint64), p.ApplyUsers(math.MaxUint64-10))
	})
	t.Run("bonus alone overflows", func(t *testing.T) {
		p := DisplayPolicy{UsersBonusDivisor: 1}
		assert.Equal(t, uint64(math.MaxUint64), p.ApplyUsers(math.MaxUint64/2+1))
	})
}

func TestUnits(t *testing.T) {
	d := decimal.RequireFromString("12.5")
	assert.Equal(t, "12500000000000000000", ToWei(d).String())
	assert.True(t, FromWei(ToWei(d)).Equal(d))
	assert.True(t, FromWei(nil).IsZero())
}

func TestPolicyByName(t *testing.T) {
	p, err := PolicyByName("")
	require.NoError(t, err)
	assert.False(t, p.Synthetic())

	p, err = PolicyByName(PolicyPromotional)
	require.NoError(t, err)
	assert.True(t, p.Synthetic())

	_, err = PolicyByName("nope")
	require.Error(t, err)
}
