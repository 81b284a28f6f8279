package types

import (
	"errors"
	"fmt"
)

var (
	// ErrProviderUnavailable means no wallet provider was detected. Fatal at startup only.
	ErrProviderUnavailable = errors.New("wallet provider unavailable")
	// ErrNetworkRejected means the user declined a connection, a network switch or a transaction.
	ErrNetworkRejected = errors.New("request rejected by user")
	// ErrUnsupportedChain means the wallet is on a different network than the contract.
	ErrUnsupportedChain = errors.New("unsupported chain")
	// ErrChainNotRegistered means the wallet does not know the target chain and it has to be added first.
	ErrChainNotRegistered = errors.New("chain not registered in wallet")
	ErrQueryFailed        = errors.New("chain query failed")
	ErrTransactionFailed  = errors.New("transaction failed")
	ErrBelowMinimum       = errors.New("amount below minimum investment")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrNotConnected       = errors.New("wallet not connected")
	ErrNothingToWithdraw  = errors.New("no withdrawable balance")
	ErrSignerUnavailable  = errors.New("connected account cannot sign transactions")
)

// QueryError reports the failure of a single metric fetch.
type QueryError struct {
	Metric string
	Err    error
}

func NewQueryError(metric string, err error) *QueryError {
	return &QueryError{Metric: metric, Err: err}
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("query %s failed: %v", e.Metric, e.Err)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

func (e *QueryError) Is(target error) bool {
	return target == ErrQueryFailed
}

// TransactionError carries the reason a submission or confirmation failed.
type TransactionError struct {
	Reason string
	Err    error
}

func NewTransactionError(reason string, err error) *TransactionError {
	return &TransactionError{Reason: reason, Err: err}
}

func (e *TransactionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("transaction failed: %s: %v", e.Reason, e.Err)
	}
	return "transaction failed: " + e.Reason
}

func (e *TransactionError) Unwrap() error {
	return e.Err
}

func (e *TransactionError) Is(target error) bool {
	return target == ErrTransactionFailed
}
