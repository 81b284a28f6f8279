package chainclient

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

const (
	methodInvest                    = "invest"
	methodWithdraw                  = "withdraw"
	methodTotalStaked               = "totalStaked"
	methodTotalUsers                = "totalUsers"
	methodTotalRefBonus             = "totalRefBonus"
	methodGetUserAvailable          = "getUserAvailable"
	methodGetUserTotalDeposits      = "getUserTotalDeposits"
	methodGetUserTotalWithdrawn     = "getUserTotalWithdrawn"
	methodGetUserReferralTotalBonus = "getUserReferralTotalBonus"
)

// StakingContractABI covers the subset of the staking contract used by the service
const StakingContractABI = `[
	{"type":"function","name":"invest","stateMutability":"payable","inputs":[{"name":"referrer","type":"address"}],"outputs":[]},
	{"type":"function","name":"withdraw","stateMutability":"nonpayable","inputs":[],"outputs":[]},
	{"type":"function","name":"totalStaked","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"totalUsers","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"totalRefBonus","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"getUserAvailable","stateMutability":"view","inputs":[{"name":"userAddress","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"getUserTotalDeposits","stateMutability":"view","inputs":[{"name":"userAddress","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"getUserTotalWithdrawn","stateMutability":"view","inputs":[{"name":"userAddress","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"getUserReferralTotalBonus","stateMutability":"view","inputs":[{"name":"userAddress","type":"address"}],"outputs":[{"name":"","type":"uint256[4]"}]},
	{"type":"event","name":"NewDeposit","anonymous":false,"inputs":[
		{"name":"user","type":"address","indexed":true},
		{"name":"plan","type":"uint8","indexed":false},
		{"name":"percent","type":"uint256","indexed":false},
		{"name":"amount","type":"uint256","indexed":false},
		{"name":"profit","type":"uint256","indexed":false},
		{"name":"start","type":"uint256","indexed":false},
		{"name":"finish","type":"uint256","indexed":false}]},
	{"type":"event","name":"Withdrawn","anonymous":false,"inputs":[
		{"name":"user","type":"address","indexed":true},
		{"name":"amount","type":"uint256","indexed":false}]},
	{"type":"event","name":"RefBonus","anonymous":false,"inputs":[
		{"name":"referrer","type":"address","indexed":true},
		{"name":"referral","type":"address","indexed":true},
		{"name":"level","type":"uint256","indexed":true},
		{"name":"amount","type":"uint256","indexed":false}]}
]`

var stakingABI = mustParseABI()

func mustParseABI() abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(StakingContractABI))
	if err != nil {
		panic("invalid staking contract ABI: " + err.Error())
	}
	return parsed
}
