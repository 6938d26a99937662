package config

import (
	"time"

	"golang-stock-ledger/pkg/config"
)

// Notifier holds the stream consumer settings of the notification service.
type Notifier struct {
	Currency       string        `mapstructure:"currency"`
	BatchSize      int64         `mapstructure:"batch_size"`
	BlockTimeout   time.Duration `mapstructure:"block_timeout"`
	HandlerTimeout time.Duration `mapstructure:"handler_timeout"`
	RetryInterval  time.Duration `mapstructure:"retry_interval"`
	MaxIdle        time.Duration `mapstructure:"max_idle"`
	MaxRetry       int64         `mapstructure:"max_retry"`
}

// Telegram holds configuration for the Telegram notifier.
type Telegram struct {
	BotToken string `mapstructure:"bot_token"`
	ChatID   int64  `mapstructure:"chat_id"`
}

// Config holds the full configuration for the notification service.
type Config struct {
	App      config.App    `mapstructure:"app"`
	Logger   config.Logger `mapstructure:"logger"`
	Redis    config.Redis  `mapstructure:"redis"`
	Notifier Notifier      `mapstructure:"notifier"`
	Telegram Telegram      `mapstructure:"telegram"`
}

// Load loads the notification service configuration from the given path.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := config.Load(path, &cfg); err != nil {
		return nil, err
	}
	if cfg.Notifier.Currency == "" {
		cfg.Notifier.Currency = "USD"
	}
	if cfg.Notifier.BatchSize <= 0 {
		cfg.Notifier.BatchSize = 10
	}
	if cfg.Notifier.BlockTimeout <= 0 {
		cfg.Notifier.BlockTimeout = 2 * time.Second
	}
	if cfg.Notifier.HandlerTimeout <= 0 {
		cfg.Notifier.HandlerTimeout = 30 * time.Second
	}
	if cfg.Notifier.MaxRetry <= 0 {
		cfg.Notifier.MaxRetry = 3
	}
	return &cfg, nil
}
