package cli

import (
	"context"
	"crypto/ecdsa"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc"
	"github.com/spf13/cobra"

	"github.com/polinfinity/staking-sync/consumer"
	"github.com/polinfinity/staking-sync/internal/api"
	"github.com/polinfinity/staking-sync/internal/clients/chainclient"
	"github.com/polinfinity/staking-sync/internal/clients/walletclient"
	"github.com/polinfinity/staking-sync/internal/config"
	"github.com/polinfinity/staking-sync/internal/db"
	dbmodel "github.com/polinfinity/staking-sync/internal/db/model"
	"github.com/polinfinity/staking-sync/internal/observability/metrics"
	"github.com/polinfinity/staking-sync/internal/observability/tracing"
	"github.com/polinfinity/staking-sync/internal/queue"
	"github.com/polinfinity/staking-sync/internal/services"
	"github.com/polinfinity/staking-sync/internal/session"
	"github.com/polinfinity/staking-sync/internal/snapshot"
)

func StartServerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start-server",
		Short: "Starts the staking sync service and its API",
		Args:  cobra.ExactArgs(0),
		RunE:  startServer,
	}

	return cmd
}

func startServer(cmd *cobra.Command, _ []string) error {
	ctx := tracing.InjectTraceID(cmd.Context())
	log := log.Ctx(ctx)

	// load config
	cfgPath := GetConfigPath()
	cfg, err := config.New(cfgPath)
	if err != nil {
		log.Fatal().Err(err).Msg(fmt.Sprintf("error while loading config file: %s", cfgPath))
	}

	chainClient, err := chainclient.NewChainClient(ctx, &cfg.Chain)
	if err != nil {
		log.Fatal().Err(err).Msg("error while creating chain client")
	}
	defer chainClient.Close()
	reader := chainclient.NewChainReaderWithMetrics(chainClient)

	newWriter := func(key *ecdsa.PrivateKey) chainclient.Writer {
		return chainclient.NewKeyedWriter(chainClient.TxBackend(), chainClient.Contract(), key, cfg.Chain.ChainID, &cfg.Tx)
	}
	bridge, err := walletclient.NewBridge(cfg.Wallet, cfg.Chain.ChainID, newWriter)
	if err != nil {
		log.Fatal().Err(err).Msg("error while creating wallet provider")
	}

	cache, closeCache := referralCache(ctx, cfg)
	defer closeCache()

	store := snapshot.NewStore()
	service, err := services.NewService(cfg, reader, bridge, cache, store)
	if err != nil {
		log.Fatal().Err(err).Msg("error while creating service")
	}

	// initialize metrics with the metrics port from config
	metricsPort := cfg.Metrics.GetMetricsPort()
	metrics.Init(metricsPort)

	server := api.NewServer(&cfg.Server, service, bridge, store)

	var wg conc.WaitGroup
	if cfg.Queue != nil {
		var snapshotConsumer consumer.SnapshotConsumer
		snapshotConsumer, err = queue.NewQueueManager(cfg.Queue)
		if err != nil {
			log.Fatal().Err(err).Msg("error while creating queue manager")
		}
		defer snapshotConsumer.Shutdown()

		snapshots, unsubscribe := store.Subscribe()
		defer unsubscribe()
		wg.Go(func() { snapshotConsumer.Run(ctx, snapshots) })
	}
	wg.Go(func() {
		if err := server.Start(ctx); err != nil {
			log.Error().Err(err).Msg("api server stopped")
		}
	})

	err = service.Run(ctx)
	wg.Wait()
	return err
}

// referralCache returns the mongo backed cache when a db is configured and
// an in-memory one otherwise.
func referralCache(ctx context.Context, cfg *config.Config) (session.ReferralCache, func()) {
	if cfg.Db == nil {
		log.Ctx(ctx).Info().Msg("no db configured, referrer is kept in memory only")
		return session.NewMemoryCache(), func() {}
	}

	if err := dbmodel.Setup(ctx, cfg.Db); err != nil {
		log.Ctx(ctx).Fatal().Err(err).Msg("error while setting up db model")
	}
	dbClient, err := db.New(ctx, *cfg.Db)
	if err != nil {
		log.Ctx(ctx).Fatal().Err(err).Msg("error while creating db client")
	}
	if err := dbClient.Ping(ctx); err != nil {
		log.Ctx(ctx).Fatal().Err(err).Msg("error while pinging db")
	}

	return db.NewDbWithMetrics(dbClient), func() {
		if err := dbClient.Close(context.Background()); err != nil {
			log.Ctx(ctx).Warn().Err(err).Msg("failed to close db client")
		}
	}
}
