package aggregator

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// NativeDecimals is the number of decimals of the native token (POL, wei based).
const NativeDecimals = 18

// FromWei converts a raw on-chain amount into display units. nil is zero.
func FromWei(v *big.Int) decimal.Decimal {
	if v == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(v, -NativeDecimals)
}

// ToWei converts a display amount into its raw on-chain value, truncating
// anything beyond 18 decimals.
func ToWei(d decimal.Decimal) *big.Int {
	return d.Shift(NativeDecimals).Truncate(0).BigInt()
}

// orZero never returns nil so reducers can treat missing values as zero.
func orZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v
}
