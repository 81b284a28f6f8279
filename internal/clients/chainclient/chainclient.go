package chainclient

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/avast/retry-go/v4"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	gethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/polinfinity/staking-sync/internal/config"
	"github.com/polinfinity/staking-sync/internal/types"
	"github.com/rs/zerolog/log"
)

// ErrNoWebsocket is returned by SubscribeDeposits when no push endpoint is configured
var ErrNoWebsocket = errors.New("websocket endpoint not configured")

// readBackend is the subset of ethclient.Client used for reads
type readBackend interface {
	ethereum.ContractCaller
	ethereum.LogFilterer
	BlockNumber(ctx context.Context) (uint64, error)
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
}

type ChainClient struct {
	rpc      readBackend
	ws       ethereum.LogFilterer
	contract common.Address
	cfg      *config.ChainConfig

	rpcClient *ethclient.Client
	wsClient  *ethclient.Client
}

// NewChainClient dials the configured endpoints and checks that the node
// serves the expected chain. A websocket endpoint that cannot be reached is
// logged and skipped, leaving the reader in polling-only mode.
func NewChainClient(ctx context.Context, cfg *config.ChainConfig) (*ChainClient, error) {
	dialCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	rpcClient, err := ethclient.DialContext(dialCtx, cfg.RPCAddr)
	if err != nil {
		return nil, fmt.Errorf("failed to dial rpc endpoint: %w", err)
	}

	chainID, err := rpcClient.ChainID(dialCtx)
	if err != nil {
		rpcClient.Close()
		return nil, fmt.Errorf("failed to get chain id: %w", err)
	}
	if chainID.Uint64() != cfg.ChainID {
		rpcClient.Close()
		return nil, fmt.Errorf("%w: node serves chain %s, expected %d", types.ErrUnsupportedChain, chainID, cfg.ChainID)
	}

	c := newChainClient(rpcClient, nil, cfg)
	c.rpcClient = rpcClient

	if cfg.WSAddr != "" {
		wsClient, err := ethclient.DialContext(dialCtx, cfg.WSAddr)
		if err != nil {
			log.Ctx(ctx).Warn().Err(err).Str("ws_addr", cfg.WSAddr).
				Msg("failed to dial websocket endpoint, live deposits disabled")
		} else {
			c.ws = wsClient
			c.wsClient = wsClient
		}
	}

	return c, nil
}

func newChainClient(rpc readBackend, ws ethereum.LogFilterer, cfg *config.ChainConfig) *ChainClient {
	return &ChainClient{
		rpc:      rpc,
		ws:       ws,
		contract: common.HexToAddress(cfg.ContractAddress),
		cfg:      cfg,
	}
}

// TxBackend exposes the rpc connection for contract writes
func (c *ChainClient) TxBackend() TxBackend {
	return c.rpcClient
}

func (c *ChainClient) Contract() common.Address {
	return c.contract
}

func (c *ChainClient) Close() {
	if c.wsClient != nil {
		c.wsClient.Close()
	}
	if c.rpcClient != nil {
		c.rpcClient.Close()
	}
}

func (c *ChainClient) LatestBlock(ctx context.Context) (uint64, error) {
	height, err := c.blockNumber(ctx)
	if err != nil {
		return 0, types.NewQueryError("latestBlock", err)
	}
	return height, nil
}

func (c *ChainClient) TotalStaked(ctx context.Context) (*big.Int, error) {
	return c.callBigInt(ctx, methodTotalStaked)
}

func (c *ChainClient) TotalUsers(ctx context.Context) (*big.Int, error) {
	return c.callBigInt(ctx, methodTotalUsers)
}

func (c *ChainClient) TotalRefBonus(ctx context.Context) (*big.Int, error) {
	return c.callBigInt(ctx, methodTotalRefBonus)
}

func (c *ChainClient) UserAvailable(ctx context.Context, user common.Address) (*big.Int, error) {
	return c.callBigInt(ctx, methodGetUserAvailable, user)
}

func (c *ChainClient) UserTotalDeposits(ctx context.Context, user common.Address) (*big.Int, error) {
	return c.callBigInt(ctx, methodGetUserTotalDeposits, user)
}

func (c *ChainClient) UserTotalWithdrawn(ctx context.Context, user common.Address) (*big.Int, error) {
	return c.callBigInt(ctx, methodGetUserTotalWithdrawn, user)
}

func (c *ChainClient) UserReferralBonuses(
	ctx context.Context, user common.Address,
) ([types.ReferralLevels]*big.Int, error) {
	var bonuses [types.ReferralLevels]*big.Int
	for i := range bonuses {
		bonuses[i] = new(big.Int)
	}

	values, err := c.call(ctx, methodGetUserReferralTotalBonus, user)
	if err != nil {
		return bonuses, err
	}
	if len(values) == 0 {
		return bonuses, nil
	}

	levels, ok := values[0].([types.ReferralLevels]*big.Int)
	if !ok {
		return bonuses, types.NewQueryError(methodGetUserReferralTotalBonus,
			fmt.Errorf("unexpected output type %T", values[0]))
	}
	for i, v := range levels {
		if v != nil {
			bonuses[i] = v
		}
	}
	return bonuses, nil
}

func (c *ChainClient) Balance(ctx context.Context, account common.Address) (*big.Int, error) {
	balance, err := callWithRetry(ctx, func() (*big.Int, error) {
		callCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
		return c.rpc.BalanceAt(callCtx, account, nil)
	}, c.cfg)
	if err != nil {
		return nil, types.NewQueryError("balance", err)
	}
	if balance == nil {
		return new(big.Int), nil
	}
	return balance, nil
}

func (c *ChainClient) Withdrawals(ctx context.Context, lookback uint64) ([]types.WithdrawEvent, error) {
	topics := [][]common.Hash{{stakingABI.Events[types.EventWithdrawn.String()].ID}}
	logs, err := c.scan(ctx, "withdrawals", lookback, topics)
	if err != nil {
		return nil, err
	}
	return decodeAll(ctx, logs, decodeWithdrawLog), nil
}

func (c *ChainClient) Deposits(
	ctx context.Context, user common.Address, lookback uint64,
) ([]types.DepositEvent, error) {
	topics := [][]common.Hash{
		{stakingABI.Events[types.EventNewDeposit.String()].ID},
		{addressTopic(user)},
	}
	logs, err := c.scan(ctx, "deposits", lookback, topics)
	if err != nil {
		return nil, err
	}
	return decodeAll(ctx, logs, decodeDepositLog), nil
}

func (c *ChainClient) RefBonuses(
	ctx context.Context, referrer *common.Address, lookback uint64,
) ([]types.RefBonusEvent, error) {
	topics := [][]common.Hash{{stakingABI.Events[types.EventRefBonus.String()].ID}}
	if referrer != nil {
		topics = append(topics, []common.Hash{addressTopic(*referrer)})
	}
	logs, err := c.scan(ctx, "refBonuses", lookback, topics)
	if err != nil {
		return nil, err
	}
	return decodeAll(ctx, logs, decodeRefBonusLog), nil
}

func (c *ChainClient) SubscribeDeposits(ctx context.Context, sink func(types.DepositEvent)) error {
	if c.ws == nil {
		return ErrNoWebsocket
	}

	query := ethereum.FilterQuery{
		Addresses: []common.Address{c.contract},
		Topics:    [][]common.Hash{{stakingABI.Events[types.EventNewDeposit.String()].ID}},
	}
	logs := make(chan gethtypes.Log, 16)
	sub, err := c.ws.SubscribeFilterLogs(ctx, query, logs)
	if err != nil {
		return fmt.Errorf("failed to subscribe to deposit logs: %w", err)
	}
	defer sub.Unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-sub.Err():
			if err == nil {
				return errors.New("deposit subscription closed")
			}
			return fmt.Errorf("deposit subscription failed: %w", err)
		case l := <-logs:
			if l.Removed {
				continue
			}
			ev, err := decodeDepositLog(l)
			if err != nil {
				log.Ctx(ctx).Warn().Err(err).Stringer("tx_hash", l.TxHash).Msg("skipping undecodable deposit log")
				continue
			}
			sink(ev)
		}
	}
}

func (c *ChainClient) blockNumber(ctx context.Context) (uint64, error) {
	return callWithRetry(ctx, func() (uint64, error) {
		callCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
		return c.rpc.BlockNumber(callCtx)
	}, c.cfg)
}

// call packs and executes a view method. An empty result means the contract
// has nothing recorded and is returned as no values rather than an error.
func (c *ChainClient) call(ctx context.Context, method string, args ...any) ([]any, error) {
	input, err := stakingABI.Pack(method, args...)
	if err != nil {
		return nil, types.NewQueryError(method, err)
	}

	msg := ethereum.CallMsg{To: &c.contract, Data: input}
	output, err := callWithRetry(ctx, func() ([]byte, error) {
		callCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
		return c.rpc.CallContract(callCtx, msg, nil)
	}, c.cfg)
	if err != nil {
		return nil, types.NewQueryError(method, err)
	}
	if len(output) == 0 {
		return nil, nil
	}

	values, err := stakingABI.Unpack(method, output)
	if err != nil {
		return nil, types.NewQueryError(method, fmt.Errorf("failed to unpack output: %w", err))
	}
	return values, nil
}

func (c *ChainClient) callBigInt(ctx context.Context, method string, args ...any) (*big.Int, error) {
	values, err := c.call(ctx, method, args...)
	if err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return new(big.Int), nil
	}

	v, ok := values[0].(*big.Int)
	if !ok {
		return nil, types.NewQueryError(method, fmt.Errorf("unexpected output type %T", values[0]))
	}
	return v, nil
}

// scan fetches contract logs in [max(0, latest-lookback), latest]
func (c *ChainClient) scan(
	ctx context.Context, metric string, lookback uint64, topics [][]common.Hash,
) ([]gethtypes.Log, error) {
	latest, err := c.blockNumber(ctx)
	if err != nil {
		return nil, types.NewQueryError(metric, fmt.Errorf("failed to get latest block: %w", err))
	}

	query := ethereum.FilterQuery{
		FromBlock: new(big.Int).SetUint64(scanStart(latest, lookback)),
		ToBlock:   new(big.Int).SetUint64(latest),
		Addresses: []common.Address{c.contract},
		Topics:    topics,
	}
	logs, err := callWithRetry(ctx, func() ([]gethtypes.Log, error) {
		callCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
		return c.rpc.FilterLogs(callCtx, query)
	}, c.cfg)
	if err != nil {
		return nil, types.NewQueryError(metric, err)
	}
	return logs, nil
}

func scanStart(latest, lookback uint64) uint64 {
	if latest > lookback {
		return latest - lookback
	}
	return 0
}

func addressTopic(addr common.Address) common.Hash {
	return common.BytesToHash(addr.Bytes())
}

func callWithRetry[T any](
	ctx context.Context, call retry.RetryableFuncWithData[T], cfg *config.ChainConfig,
) (T, error) {
	return retry.DoWithData(call,
		retry.Context(ctx),
		retry.Attempts(cfg.MaxRetryTimes),
		retry.Delay(cfg.RetryInterval),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			log.Ctx(ctx).Debug().
				Uint("attempt", n+1).
				Uint("max_attempts", cfg.MaxRetryTimes).
				Err(err).
				Msg("failed to call the chain rpc")
		}))
}
