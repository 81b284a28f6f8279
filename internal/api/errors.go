package api

import (
	"errors"
	"net/http"

	"github.com/polinfinity/staking-sync/internal/session"
	"github.com/polinfinity/staking-sync/internal/types"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

var errorStatuses = []struct {
	err    error
	status int
	code   string
}{
	{types.ErrInvalidAmount, http.StatusBadRequest, "INVALID_AMOUNT"},
	{types.ErrBelowMinimum, http.StatusBadRequest, "BELOW_MINIMUM"},
	{types.ErrNotConnected, http.StatusConflict, "NOT_CONNECTED"},
	{types.ErrNothingToWithdraw, http.StatusConflict, "NOTHING_TO_WITHDRAW"},
	{session.ErrConnectInProgress, http.StatusConflict, "CONNECT_IN_PROGRESS"},
	{types.ErrNetworkRejected, http.StatusForbidden, "REJECTED"},
	{types.ErrSignerUnavailable, http.StatusForbidden, "SIGNER_UNAVAILABLE"},
	// chain-not-registered is more specific than unsupported-chain and both can match
	{types.ErrChainNotRegistered, http.StatusUnprocessableEntity, "CHAIN_NOT_REGISTERED"},
	{types.ErrUnsupportedChain, http.StatusUnprocessableEntity, "UNSUPPORTED_CHAIN"},
	{types.ErrTransactionFailed, http.StatusUnprocessableEntity, "TRANSACTION_FAILED"},
	{types.ErrQueryFailed, http.StatusBadGateway, "QUERY_FAILED"},
	{types.ErrProviderUnavailable, http.StatusServiceUnavailable, "PROVIDER_UNAVAILABLE"},
}

// statusOf maps an error onto an HTTP status and a stable error code
func statusOf(err error) (int, string) {
	for _, e := range errorStatuses {
		if errors.Is(err, e.err) {
			return e.status, e.code
		}
	}
	return http.StatusInternalServerError, "INTERNAL"
}
