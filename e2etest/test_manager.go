//go:build e2e

package e2etest

import (
	"context"
	"math/big"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/polinfinity/staking-sync/e2etest/container"
	"github.com/polinfinity/staking-sync/internal/api"
	"github.com/polinfinity/staking-sync/internal/clients/walletclient"
	"github.com/polinfinity/staking-sync/internal/config"
	"github.com/polinfinity/staking-sync/internal/db"
	"github.com/polinfinity/staking-sync/internal/db/model"
	"github.com/polinfinity/staking-sync/internal/queue"
	"github.com/polinfinity/staking-sync/internal/services"
	"github.com/polinfinity/staking-sync/internal/snapshot"
	"github.com/polinfinity/staking-sync/internal/types"
	"github.com/polinfinity/staking-sync/tests/mocks"
	"github.com/polinfinity/staking-sync/testutil"
)

var (
	eventuallyWaitTimeOut = 40 * time.Second
	eventuallyPollTime    = 250 * time.Millisecond
)

const e2eChainID = uint64(137)

// TestManager runs the full sync stack against real MongoDB and RabbitMQ
// containers. The chain is scripted through a mock reader.
type TestManager struct {
	Config    *config.Config
	Reader    *mocks.ChainReader
	Wallet    *walletclient.Bridge
	Store     *snapshot.Store
	Service   *services.Service
	DbClient  *db.Database
	API       *httptest.Server
	Snapshots <-chan amqp.Delivery

	manager  *container.Manager
	cancel   context.CancelFunc
	done     chan error
	stopOnce sync.Once
}

// StartManager starts the containers and the service. The wallet starts with
// no accounts so the service stays disconnected until a test pushes some.
func StartManager(t *testing.T, referrer common.Address) *TestManager {
	ctx, cancel := context.WithCancel(context.Background())

	manager, err := container.NewManager(t)
	require.NoError(t, err)

	dbConfig, err := manager.RunMongo(ctx)
	require.NoError(t, err)
	rabbitURL, err := manager.RunRabbitMQ()
	require.NoError(t, err)

	exchange, err := testutil.RandomAlphaNum(8)
	require.NoError(t, err)

	cfg := DefaultStakingSyncConfig()
	cfg.Db = dbConfig
	cfg.Queue = &config.QueueConfig{URL: rabbitURL, Exchange: "snapshots-" + exchange, PublishTimeout: 5 * time.Second}
	cfg.Session.ReferralLink = cfg.Session.BaseURL + "?ref=" + referrer.Hex()
	require.NoError(t, cfg.Validate())

	require.NoError(t, model.Setup(ctx, cfg.Db))
	dbClient, err := db.New(ctx, *cfg.Db)
	require.NoError(t, err)

	reader := mocks.NewChainReader(t)
	scriptChain(reader)

	wallet, err := walletclient.NewBridge(cfg.Wallet, cfg.Chain.ChainID, nil)
	require.NoError(t, err)
	require.NoError(t, wallet.SetAccounts(ctx, nil))

	store := snapshot.NewStore()
	service, err := services.NewService(cfg, reader, wallet, db.NewDbWithMetrics(dbClient), store)
	require.NoError(t, err)

	qm, err := queue.NewQueueManager(cfg.Queue)
	require.NoError(t, err)
	deliveries := consumeSnapshots(t, cfg.Queue)

	snapshots, unsubscribe := store.Subscribe()
	go qm.Run(ctx, snapshots)

	done := make(chan error, 1)
	go func() { done <- service.Run(ctx) }()

	tm := &TestManager{
		Config:    cfg,
		Reader:    reader,
		Wallet:    wallet,
		Store:     store,
		Service:   service,
		DbClient:  dbClient,
		API:       httptest.NewServer(api.NewServer(&cfg.Server, service, wallet, store).Router()),
		Snapshots: deliveries,
		manager:   manager,
		cancel:    cancel,
		done:      done,
	}
	t.Cleanup(func() {
		tm.Stop(t)
		unsubscribe()
		qm.Shutdown()
		_ = dbClient.Close(context.Background())
	})

	return tm
}

// Stop cancels the service and waits for Run to return
func (tm *TestManager) Stop(t *testing.T) {
	tm.stopOnce.Do(func() {
		tm.API.Close()
		tm.cancel()
		select {
		case err := <-tm.done:
			require.NoError(t, err)
		case <-time.After(10 * time.Second):
			t.Fatal("service did not stop")
		}
	})
}

// scriptChain answers every read with fixed figures. The deposit feed blocks
// until the service stops.
func scriptChain(reader *mocks.ChainReader) {
	reader.On("TotalStaked", mock.Anything).Return(testutil.Wei(5000), nil).Maybe()
	reader.On("TotalUsers", mock.Anything).Return(big.NewInt(12), nil).Maybe()
	reader.On("TotalRefBonus", mock.Anything).Return(testutil.Wei(40), nil).Maybe()
	reader.On("Withdrawals", mock.Anything, mock.Anything).Return([]types.WithdrawEvent{
		{Amount: testutil.Wei(300)},
	}, nil).Maybe()
	reader.On("RefBonuses", mock.Anything, mock.Anything, mock.Anything).Return([]types.RefBonusEvent{}, nil).Maybe()

	reader.On("UserAvailable", mock.Anything, mock.Anything).Return(testutil.Wei(25), nil).Maybe()
	reader.On("UserTotalDeposits", mock.Anything, mock.Anything).Return(testutil.Wei(500), nil).Maybe()
	reader.On("UserTotalWithdrawn", mock.Anything, mock.Anything).Return(testutil.Wei(0), nil).Maybe()
	reader.On("UserReferralBonuses", mock.Anything, mock.Anything).Return([types.ReferralLevels]*big.Int{}, nil).Maybe()
	reader.On("Balance", mock.Anything, mock.Anything).Return(testutil.Wei(90), nil).Maybe()
	reader.On("Deposits", mock.Anything, mock.Anything, mock.Anything).Return([]types.DepositEvent{}, nil).Maybe()

	reader.On("SubscribeDeposits", mock.Anything, mock.Anything).Return(
		func(ctx context.Context, _ func(types.DepositEvent)) error {
			<-ctx.Done()
			return ctx.Err()
		},
	).Maybe()
}

// consumeSnapshots binds an exclusive queue to the snapshot exchange
func consumeSnapshots(t *testing.T, cfg *config.QueueConfig) <-chan amqp.Delivery {
	conn, err := amqp.Dial(cfg.URL)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	ch, err := conn.Channel()
	require.NoError(t, err)

	q, err := ch.QueueDeclare("", false, true, true, false, nil)
	require.NoError(t, err)
	require.NoError(t, ch.QueueBind(q.Name, "", cfg.Exchange, false, nil))

	deliveries, err := ch.Consume(q.Name, "", true, true, false, false, nil)
	require.NoError(t, err)
	return deliveries
}

func DefaultStakingSyncConfig() *config.Config {
	return &config.Config{
		Chain: config.ChainConfig{
			RPCAddr:         "http://127.0.0.1:8545",
			ChainID:         e2eChainID,
			ContractAddress: testutil.RandomAddress().Hex(),
			ExplorerHost:    "polygonscan.com",
			Timeout:         5 * time.Second,
			MaxRetryTimes:   3,
			RetryInterval:   100 * time.Millisecond,
			Lookback: config.LookbackConfig{
				Deposits:    10_000,
				RefBonus:    50_000,
				Leaderboard: 30_000,
				Withdrawals: 20_000,
			},
		},
		Poller: config.PollerConfig{
			FullRefreshInterval: time.Second,
			LeaderboardInterval: time.Minute,
			GlobalInterval:      time.Second,
			TickerInterval:      time.Second,
		},
		Session: config.SessionConfig{
			BaseURL: "https://pol-infinity.example/app",
		},
		Display: config.DisplayConfig{
			Policy:           config.DisplayPolicyIdentity,
			DailyAccrualRate: "0.05",
		},
		Tx: config.TxConfig{
			MinInvestment:       "10",
			GasMarginPercent:    20,
			ConfirmationTimeout: time.Minute,
		},
		Server: config.ServerConfig{
			Host: "127.0.0.1",
			Port: 8080,
		},
		Metrics: config.MetricsConfig{
			Host: "127.0.0.1",
			Port: 2112,
		},
		Wallet: &config.WalletConfig{
			Accounts: []string{testutil.RandomAddress().Hex()},
		},
	}
}
