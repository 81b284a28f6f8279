package types

import (
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// ReferralLevels is the number of referral bonus levels tracked by the contract
const ReferralLevels = 4

// GlobalMetrics are contract-wide totals. Display fields pass through the
// configured display policy, Raw fields are exactly what the chain returned.
type GlobalMetrics struct {
	TotalStaked    decimal.Decimal `json:"totalStaked"`
	TotalUsers     uint64          `json:"totalUsers"`
	TotalRefBonus  decimal.Decimal `json:"totalRefBonus"`
	TotalWithdrawn decimal.Decimal `json:"totalWithdrawn"`

	RawStaked    *big.Int `json:"rawStaked"`
	RawUsers     uint64   `json:"rawUsers"`
	RawRefBonus  *big.Int `json:"rawRefBonus"`
	RawWithdrawn *big.Int `json:"rawWithdrawn"`

	// DisplayPolicy names the transform applied to the display fields.
	DisplayPolicy string `json:"displayPolicy"`
	// Synthetic is set whenever display fields differ from raw figures by policy.
	Synthetic bool `json:"synthetic"`
}

// UserMetrics are scoped to the connected identity.
type UserMetrics struct {
	Available            decimal.Decimal                 `json:"available"`
	TotalDeposited       decimal.Decimal                 `json:"totalDeposited"`
	TotalWithdrawn       decimal.Decimal                 `json:"totalWithdrawn"`
	ReferralBonusByLevel [ReferralLevels]decimal.Decimal `json:"referralBonusByLevel"`
	WalletBalance        decimal.Decimal                 `json:"walletBalance"`
}

type ReferralGraph struct {
	Direct int `json:"direct"`
	Team   int `json:"team"`
}

type LeaderboardEntry struct {
	Rank          int             `json:"rank"`
	Referrer      common.Address  `json:"referrer"`
	TotalBonus    decimal.Decimal `json:"totalBonus"`
	RawTotalBonus *big.Int        `json:"rawTotalBonus"`
}

type TransactionRecord struct {
	Amount      decimal.Decimal `json:"amount"`
	RawAmount   *big.Int        `json:"rawAmount"`
	Timestamp   time.Time       `json:"timestamp"`
	TxHash      common.Hash     `json:"txHash"`
	ExplorerURL string          `json:"explorerUrl"`
}

// ExplorerTxURL renders the block explorer link of a transaction.
func ExplorerTxURL(explorerHost string, hash common.Hash) string {
	return fmt.Sprintf("https://%s/tx/%s", explorerHost, hash.Hex())
}

// DepositNotice is the latest deposit observed on the live event feed.
type DepositNotice struct {
	User       common.Address  `json:"user"`
	Amount     decimal.Decimal `json:"amount"`
	TxHash     common.Hash     `json:"txHash"`
	ObservedAt time.Time       `json:"observedAt"`
}

// TxReceipt is the outcome of a confirmed contract write.
type TxReceipt struct {
	TxHash      common.Hash `json:"txHash"`
	BlockNumber uint64      `json:"blockNumber"`
	GasLimit    uint64      `json:"gasLimit"`
	GasUsed     uint64      `json:"gasUsed"`
}
