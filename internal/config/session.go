package config

import (
	"fmt"
	"net/url"
)

type SessionConfig struct {
	// BaseURL is the dashboard origin + path used to render referral links.
	BaseURL string `mapstructure:"base-url"`
	// ReferralLink is the inbound link (or bare address) the session was opened with.
	ReferralLink string `mapstructure:"referral-link"`
}

func (cfg *SessionConfig) Validate() error {
	if cfg.BaseURL == "" {
		return nil
	}

	u, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base-url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("base-url %q must be absolute", cfg.BaseURL)
	}

	return nil
}
