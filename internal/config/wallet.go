package config

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/polinfinity/staking-sync/pkg"
)

// WalletConfig configures the wallet bridge. With a private key the derived
// account can sign; Accounts lists extra watch-only addresses.
type WalletConfig struct {
	PrivateKey string   `mapstructure:"private-key"`
	Accounts   []string `mapstructure:"accounts"`
}

func (cfg *WalletConfig) Validate() error {
	if cfg.PrivateKey == "" && len(cfg.Accounts) == 0 {
		return errors.New("either private-key or accounts must be set")
	}
	if cfg.PrivateKey != "" {
		if _, err := crypto.HexToECDSA(cfg.PrivateKey); err != nil {
			return errors.New("private-key is not a valid secp256k1 hex key")
		}
	}
	for _, account := range cfg.Accounts {
		if err := pkg.ValidateEVMAddress(account); err != nil {
			return fmt.Errorf("invalid account: %w", err)
		}
	}

	return nil
}
