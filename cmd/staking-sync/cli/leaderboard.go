package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/polinfinity/staking-sync/internal/aggregator"
	"github.com/polinfinity/staking-sync/internal/clients/chainclient"
	"github.com/polinfinity/staking-sync/internal/config"
)

// LeaderboardCmd prints the current top referrers and exits
// Usage: ./staking-sync leaderboard --config config.yml [--lookback 30000]
func LeaderboardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Print the referral leaderboard of the configured contract",
		Args:  cobra.ExactArgs(0),
		RunE:  leaderboard,
	}

	cmd.Flags().Uint64("lookback", 0, "Number of blocks to scan (defaults to chain.lookback.leaderboard)")

	return cmd
}

func leaderboard(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := config.New(GetConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	lookback, err := cmd.Flags().GetUint64("lookback")
	if err != nil {
		return err
	}
	if lookback == 0 {
		lookback = cfg.Chain.Lookback.Leaderboard
	}

	client, err := chainclient.NewChainClient(ctx, &cfg.Chain)
	if err != nil {
		return fmt.Errorf("failed to create chain client: %w", err)
	}
	defer client.Close()

	events, err := client.RefBonuses(ctx, nil, lookback)
	if err != nil {
		return err
	}
	entries := aggregator.BuildLeaderboard(events)
	log.Ctx(ctx).Info().
		Int("events", len(events)).
		Uint64("lookback", lookback).
		Msg("leaderboard built")

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(entries)
}
