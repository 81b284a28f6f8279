package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/polinfinity/staking-sync/internal/aggregator"
	"github.com/polinfinity/staking-sync/internal/clients/chainclient"
	"github.com/polinfinity/staking-sync/internal/config"
	"github.com/polinfinity/staking-sync/internal/types"
	"github.com/polinfinity/staking-sync/pkg"
)

// Prints every NewDeposit event of the staking contract as it is mined.
// Needs a websocket endpoint:
//
//	POLYGON_WS_ADDR=wss://... go run ./test_scripts
func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	chainID, err := pkg.GetenvUint64("POLYGON_CHAIN_ID", 137)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid chain id")
	}

	cfg := &config.ChainConfig{
		RPCAddr:         pkg.Getenv("POLYGON_RPC_ADDR", "https://polygon-rpc.com"),
		WSAddr:          pkg.Getenv("POLYGON_WS_ADDR", ""),
		ChainID:         chainID,
		ContractAddress: pkg.Getenv("STAKING_CONTRACT", "0xcf0E9664b10f8483e883b7B99E27ef8f4Ff20682"),
		ExplorerHost:    "polygonscan.com",
		Timeout:         20 * time.Second,
		MaxRetryTimes:   3,
		RetryInterval:   time.Second,
		Lookback: config.LookbackConfig{
			Deposits:    1,
			RefBonus:    1,
			Leaderboard: 1,
			Withdrawals: 1,
		},
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid chain config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := chainclient.NewChainClient(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create chain client")
	}
	defer client.Close()

	log.Info().Str("contract", cfg.ContractAddress).Msg("watching deposits, press ctrl+c to stop")

	err = client.SubscribeDeposits(ctx, func(ev types.DepositEvent) {
		log.Info().
			Str("user", ev.User.Hex()).
			Stringer("amount", aggregator.FromWei(ev.Amount)).
			Uint8("plan", ev.Plan).
			Uint64("block", ev.BlockNumber).
			Str("tx", types.ExplorerTxURL(cfg.ExplorerHost, ev.TxHash)).
			Msg("deposit")
	})
	if err != nil && ctx.Err() == nil {
		log.Fatal().Err(err).Msg("deposit subscription failed")
	}
}
