package chainclient

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	gethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/polinfinity/staking-sync/internal/config"
	"github.com/polinfinity/staking-sync/internal/types"
	"github.com/rs/zerolog/log"
)

// TxBackend is what a keyed writer needs from the node
type TxBackend interface {
	bind.ContractBackend
	bind.DeployBackend
}

// KeyedWriter signs contract calls with a local private key
type KeyedWriter struct {
	backend  TxBackend
	contract *bind.BoundContract
	address  common.Address
	key      *ecdsa.PrivateKey
	from     common.Address
	chainID  *big.Int
	cfg      *config.TxConfig
}

func NewKeyedWriter(
	backend TxBackend, contract common.Address, key *ecdsa.PrivateKey, chainID uint64, cfg *config.TxConfig,
) *KeyedWriter {
	return &KeyedWriter{
		backend:  backend,
		contract: bind.NewBoundContract(contract, stakingABI, backend, backend, backend),
		address:  contract,
		key:      key,
		from:     crypto.PubkeyToAddress(key.PublicKey),
		chainID:  new(big.Int).SetUint64(chainID),
		cfg:      cfg,
	}
}

func (w *KeyedWriter) From() common.Address {
	return w.from
}

func (w *KeyedWriter) Invest(ctx context.Context, referrer common.Address, value *big.Int) (*types.TxReceipt, error) {
	return w.submit(ctx, methodInvest, value, referrer)
}

func (w *KeyedWriter) Withdraw(ctx context.Context) (*types.TxReceipt, error) {
	return w.submit(ctx, methodWithdraw, nil)
}

func (w *KeyedWriter) submit(ctx context.Context, method string, value *big.Int, args ...any) (*types.TxReceipt, error) {
	input, err := stakingABI.Pack(method, args...)
	if err != nil {
		return nil, types.NewTransactionError("invalid call", err)
	}

	estimate, err := w.backend.EstimateGas(ctx, ethereum.CallMsg{
		From:  w.from,
		To:    &w.address,
		Value: value,
		Data:  input,
	})
	if err != nil {
		return nil, types.NewTransactionError("gas estimation failed", err)
	}

	opts, err := bind.NewKeyedTransactorWithChainID(w.key, w.chainID)
	if err != nil {
		return nil, types.NewTransactionError("signer setup failed", err)
	}
	opts.Context = ctx
	opts.Value = value
	opts.GasLimit = ApplyGasMargin(estimate, w.cfg.GasMarginPercent)

	tx, err := w.contract.Transact(opts, method, args...)
	if err != nil {
		return nil, types.NewTransactionError("submission failed", err)
	}
	log.Ctx(ctx).Info().
		Str("method", method).
		Stringer("tx_hash", tx.Hash()).
		Uint64("gas_limit", opts.GasLimit).
		Msg("transaction submitted")

	waitCtx, cancel := context.WithTimeout(ctx, w.cfg.ConfirmationTimeout)
	defer cancel()
	receipt, err := bind.WaitMined(waitCtx, w.backend, tx)
	if err != nil {
		return nil, types.NewTransactionError("confirmation failed", err)
	}
	if receipt.Status != gethtypes.ReceiptStatusSuccessful {
		return nil, types.NewTransactionError(fmt.Sprintf("reverted in block %s", receipt.BlockNumber), nil)
	}

	var block uint64
	if receipt.BlockNumber != nil {
		block = receipt.BlockNumber.Uint64()
	}
	return &types.TxReceipt{
		TxHash:      tx.Hash(),
		BlockNumber: block,
		GasLimit:    opts.GasLimit,
		GasUsed:     receipt.GasUsed,
	}, nil
}

// ApplyGasMargin raises a gas estimate by marginPercent, rounding down
func ApplyGasMargin(estimate, marginPercent uint64) uint64 {
	limit := new(big.Int).SetUint64(estimate)
	limit.Mul(limit, new(big.Int).SetUint64(100+marginPercent))
	limit.Div(limit, big.NewInt(100))
	if !limit.IsUint64() {
		return estimate
	}
	return limit.Uint64()
}
