package config

import (
	"fmt"
	"time"

	"golang-stock-ledger/pkg/config"

	"github.com/shopspring/decimal"
)

const (
	SellScopeAccount = "account"
	SellScopeGlobal  = "global"
)

// Ledger holds the trading rules of the ledger.
type Ledger struct {
	InitialBalance        string        `mapstructure:"initial_balance"`
	SellAvailabilityScope string        `mapstructure:"sell_availability_scope"`
	StockCacheTTL         time.Duration `mapstructure:"stock_cache_ttl"`
}

// Balance parses the configured initial balance.
func (l Ledger) Balance() (decimal.Decimal, error) {
	if l.InitialBalance == "" {
		return decimal.Zero, fmt.Errorf("ledger.initial_balance is required")
	}
	balance, err := decimal.NewFromString(l.InitialBalance)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid ledger.initial_balance: %w", err)
	}
	if balance.IsNegative() {
		return decimal.Zero, fmt.Errorf("ledger.initial_balance must not be negative")
	}
	return balance, nil
}

// Scope returns the sell availability scope, defaulting to the selling account.
func (l Ledger) Scope() (string, error) {
	switch l.SellAvailabilityScope {
	case "", SellScopeAccount:
		return SellScopeAccount, nil
	case SellScopeGlobal:
		return SellScopeGlobal, nil
	default:
		return "", fmt.Errorf("invalid ledger.sell_availability_scope %q", l.SellAvailabilityScope)
	}
}

// Benzinga holds the configuration of the quote provider.
type Benzinga struct {
	BaseURL             string        `mapstructure:"base_url"`
	Timeout             time.Duration `mapstructure:"timeout"`
	MaxRequestPerMinute int           `mapstructure:"max_request_per_minute"`
}

// Audit holds the configuration of the periodic ledger audit.
type Audit struct {
	Enabled  bool          `mapstructure:"enabled"`
	Schedule string        `mapstructure:"schedule"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// Config holds the full configuration for the ledger service.
type Config struct {
	App      config.App      `mapstructure:"app"`
	Logger   config.Logger   `mapstructure:"logger"`
	Database config.Database `mapstructure:"database"`
	Redis    config.Redis    `mapstructure:"redis"`
	API      config.API      `mapstructure:"api"`
	Ledger   Ledger          `mapstructure:"ledger"`
	Benzinga Benzinga        `mapstructure:"benzinga"`
	Audit    Audit           `mapstructure:"audit"`
}

// Load loads the ledger configuration from the given path.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := config.Load(path, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
