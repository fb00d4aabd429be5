// internal/config/config.go
package config

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
	"golang.org/x/crypto/bcrypt"
)

// Config holds all application-wide configuration.
type Config struct {
	Addr            string `env:"RUN_ADDRESS" env-default:":8080"`
	BankName        string `env:"BANK_NAME" env-default:"Bank of Drausin"`
	UserIDLength    int    `env:"USER_ID_LENGTH" env-default:"6"`
	AccountIDLength int    `env:"ACCOUNT_ID_LENGTH" env-default:"10"`
	PINDigestCost   int    `env:"PIN_DIGEST_COST" env-default:"10"`
}

// Load reads configuration from environment variables and validates it.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("couldn't read environment variables: %w", err)
	}

	if cfg.UserIDLength <= 0 || cfg.AccountIDLength <= 0 {
		return nil, fmt.Errorf("identifier lengths must be positive (user=%d, account=%d)",
			cfg.UserIDLength, cfg.AccountIDLength)
	}
	if cfg.PINDigestCost < bcrypt.MinCost || cfg.PINDigestCost > bcrypt.MaxCost {
		return nil, fmt.Errorf("PIN digest cost %d outside bcrypt range [%d, %d]",
			cfg.PINDigestCost, bcrypt.MinCost, bcrypt.MaxCost)
	}

	return cfg, nil
}
