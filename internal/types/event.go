package types

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

type EventTypes string

func (e EventTypes) String() string {
	return string(e)
}

const (
	EventNewDeposit EventTypes = "NewDeposit"
	EventWithdrawn  EventTypes = "Withdrawn"
	EventRefBonus   EventTypes = "RefBonus"
)

// EventMeta identifies where a log was emitted.
type EventMeta struct {
	Contract    common.Address `json:"contract"`
	BlockNumber uint64         `json:"blockNumber"`
	TxHash      common.Hash    `json:"txHash"`
	LogIndex    uint           `json:"logIndex"`
}

// DepositEvent mirrors NewDeposit(address indexed user, uint8 plan, uint256 percent,
// uint256 amount, uint256 profit, uint256 start, uint256 finish).
type DepositEvent struct {
	EventMeta
	User    common.Address `json:"user"`
	Plan    uint8          `json:"plan"`
	Percent *big.Int       `json:"percent"`
	Amount  *big.Int       `json:"amount"`
	Profit  *big.Int       `json:"profit"`
	Start   *big.Int       `json:"start"`
	Finish  *big.Int       `json:"finish"`
}

// WithdrawEvent mirrors Withdrawn(address indexed user, uint256 amount).
type WithdrawEvent struct {
	EventMeta
	User   common.Address `json:"user"`
	Amount *big.Int       `json:"amount"`
}

// RefBonusEvent mirrors RefBonus(address indexed referrer, address indexed referral,
// uint256 indexed level, uint256 amount).
type RefBonusEvent struct {
	EventMeta
	Referrer common.Address `json:"referrer"`
	Referral common.Address `json:"referral"`
	Level    *big.Int       `json:"level"`
	Amount   *big.Int       `json:"amount"`
}
