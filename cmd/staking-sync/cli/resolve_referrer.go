package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/polinfinity/staking-sync/internal/clients/chainclient"
	"github.com/polinfinity/staking-sync/internal/config"
	"github.com/polinfinity/staking-sync/internal/session"
)

// ResolveReferrerCmd resolves a referral link the same way the service does
// at startup, persisting it when a db is configured.
// Usage: ./staking-sync resolve-referrer --config config.yml "https://host/app?ref=0x..."
func ResolveReferrerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve-referrer [link]",
		Short: "Resolve and persist the referrer of a referral link",
		Args:  cobra.MaximumNArgs(1),
		RunE:  resolveReferrer,
	}

	return cmd
}

func resolveReferrer(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := config.New(GetConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	link := cfg.Session.ReferralLink
	if len(args) == 1 {
		link = args[0]
	}

	cache, closeCache := referralCache(ctx, cfg)
	defer closeCache()

	s := session.New[chainclient.Writer]()
	referrer := s.ResolveReferrer(ctx, session.ParseReferralParam(link), cache)
	fmt.Fprintln(cmd.OutOrStdout(), referrer.Hex())
	return nil
}
