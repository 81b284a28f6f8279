package aggregator

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

const (
	PolicyIdentity    = "identity"
	PolicyPromotional = "promotional"
	PolicyCustom      = "custom"
)

// DisplayPolicy is the presentation transform applied to global totals:
//
//	staked    = StakedOffset + raw * StakedMultiplier
//	withdrawn = WithdrawnOffset + raw * WithdrawnMultiplier
//	users     = UsersOffset + n + n / UsersBonusDivisor (integer division, 0 disables)
//
// Any policy other than identity produces synthetic figures; raw values are
// always published alongside.
type DisplayPolicy struct {
	Name                string
	StakedOffset        decimal.Decimal
	StakedMultiplier    decimal.Decimal
	WithdrawnOffset     decimal.Decimal
	WithdrawnMultiplier decimal.Decimal
	UsersOffset         uint64
	UsersBonusDivisor   uint64
}

func IdentityPolicy() DisplayPolicy {
	return DisplayPolicy{
		Name:                PolicyIdentity,
		StakedMultiplier:    decimal.NewFromInt(1),
		WithdrawnMultiplier: decimal.NewFromInt(1),
	}
}

// PromotionalPolicy reproduces the dashboard's historical inflated totals.
// Output is synthetic and must not be presented as on-chain data.
func PromotionalPolicy() DisplayPolicy {
	return DisplayPolicy{
		Name:                PolicyPromotional,
		StakedOffset:        decimal.NewFromInt(1500),
		StakedMultiplier:    decimal.NewFromInt(2),
		WithdrawnOffset:     decimal.NewFromInt(500),
		WithdrawnMultiplier: decimal.RequireFromString("1.5"),
		UsersOffset:         50,
		UsersBonusDivisor:   5,
	}
}

// PolicyByName resolves the built-in presets.
func PolicyByName(name string) (DisplayPolicy, error) {
	switch name {
	case PolicyIdentity, "":
		return IdentityPolicy(), nil
	case PolicyPromotional:
		return PromotionalPolicy(), nil
	default:
		return DisplayPolicy{}, fmt.Errorf("unknown display policy %q", name)
	}
}

// Synthetic reports whether the policy alters any figure.
func (p DisplayPolicy) Synthetic() bool {
	one := decimal.NewFromInt(1)
	return !p.StakedOffset.IsZero() ||
		!p.StakedMultiplier.Equal(one) ||
		!p.WithdrawnOffset.IsZero() ||
		!p.WithdrawnMultiplier.Equal(one) ||
		p.UsersOffset != 0 ||
		p.UsersBonusDivisor != 0
}

func (p DisplayPolicy) ApplyStaked(v decimal.Decimal) decimal.Decimal {
	return p.StakedOffset.Add(v.Mul(p.StakedMultiplier))
}

func (p DisplayPolicy) ApplyWithdrawn(v decimal.Decimal) decimal.Decimal {
	return p.WithdrawnOffset.Add(v.Mul(p.WithdrawnMultiplier))
}

// ApplyUsers saturates at math.MaxUint64 instead of wrapping.
func (p DisplayPolicy) ApplyUsers(n uint64) uint64 {
	users := saturatingAdd(p.UsersOffset, n)
	if p.UsersBonusDivisor > 0 {
		users = saturatingAdd(users, n/p.UsersBonusDivisor)
	}
	return users
}

func saturatingAdd(a, b uint64) uint64 {
	if b > math.MaxUint64-a {
		return math.MaxUint64
	}
	return a + b
}
