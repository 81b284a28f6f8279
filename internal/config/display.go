package config

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

const (
	DisplayPolicyIdentity    = "identity"
	DisplayPolicyPromotional = "promotional"
	DisplayPolicyCustom      = "custom"

	defaultDisplayPolicy    = DisplayPolicyIdentity
	defaultDailyAccrualRate = "0.05"
)

// DisplayConfig selects the presentation transform applied to global totals.
// Anything other than "identity" marks published totals as synthetic.
type DisplayConfig struct {
	Policy           string        `mapstructure:"policy"`
	DailyAccrualRate string        `mapstructure:"daily-accrual-rate"`
	Custom           *CustomPolicy `mapstructure:"custom"`
}

type CustomPolicy struct {
	StakedOffset        string `mapstructure:"staked-offset"`
	StakedMultiplier    string `mapstructure:"staked-multiplier"`
	WithdrawnOffset     string `mapstructure:"withdrawn-offset"`
	WithdrawnMultiplier string `mapstructure:"withdrawn-multiplier"`
	UsersOffset         uint64 `mapstructure:"users-offset"`
	UsersBonusDivisor   uint64 `mapstructure:"users-bonus-divisor"`
}

func (cfg *DisplayConfig) Validate() error {
	rate, err := decimal.NewFromString(cfg.DailyAccrualRate)
	if err != nil {
		return fmt.Errorf("invalid daily-accrual-rate: %w", err)
	}
	if rate.IsNegative() {
		return errors.New("daily-accrual-rate must not be negative")
	}

	switch cfg.Policy {
	case DisplayPolicyIdentity, DisplayPolicyPromotional:
		return nil
	case DisplayPolicyCustom:
		if cfg.Custom == nil {
			return errors.New("custom policy requires the custom section")
		}
		return cfg.Custom.Validate()
	default:
		return fmt.Errorf("unknown display policy %q", cfg.Policy)
	}
}

func (cfg *CustomPolicy) Validate() error {
	// every value must be non-negative so that the transform preserves ordering
	for name, raw := range map[string]string{
		"staked-offset":        cfg.StakedOffset,
		"staked-multiplier":    cfg.StakedMultiplier,
		"withdrawn-offset":     cfg.WithdrawnOffset,
		"withdrawn-multiplier": cfg.WithdrawnMultiplier,
	} {
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", name, err)
		}
		if d.IsNegative() {
			return fmt.Errorf("%s must not be negative", name)
		}
	}

	return nil
}
