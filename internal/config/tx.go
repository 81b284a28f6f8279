package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

const (
	defaultMinInvestment       = "10"
	defaultGasMarginPercent    = 20
	defaultConfirmationTimeout = 3 * time.Minute
)

type TxConfig struct {
	// MinInvestment is expressed in display units (POL).
	MinInvestment       string        `mapstructure:"min-investment"`
	GasMarginPercent    uint64        `mapstructure:"gas-margin-percent"`
	ConfirmationTimeout time.Duration `mapstructure:"confirmation-timeout"`
}

func (cfg *TxConfig) Validate() error {
	minimum, err := decimal.NewFromString(cfg.MinInvestment)
	if err != nil {
		return fmt.Errorf("invalid min-investment: %w", err)
	}
	if !minimum.IsPositive() {
		return errors.New("min-investment must be positive")
	}
	if cfg.ConfirmationTimeout <= 0 {
		return errors.New("confirmation-timeout must be positive")
	}

	return nil
}

// MinInvestmentAmount returns the parsed minimum. Validate must have succeeded.
func (cfg *TxConfig) MinInvestmentAmount() decimal.Decimal {
	return decimal.RequireFromString(cfg.MinInvestment)
}
