package config

import (
	"time"

	"github.com/repcard/engine/internal/infra/chain/evm"
	redisclient "github.com/repcard/engine/internal/infra/redis"
	"github.com/repcard/engine/internal/infra/storage/postgres"
)

// AppConfig represents the top-level configuration.
type AppConfig struct {
	Server   ServerConfig       `yaml:"server"`
	Chain    ChainConfig        `yaml:"chain"`
	Wallet   WalletConfig       `yaml:"wallet"`
	Retry    RetryConfig        `yaml:"retry"`
	Redis    redisclient.Config `yaml:"redis"`
	Logging  LoggingConfig      `yaml:"logging"`
	Database postgres.Config    `yaml:"database"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// ChainConfig holds ledger settings: the adapter config plus the RPC
// endpoints to reach it through, in preference order.
type ChainConfig struct {
	Adapter   evm.Config       `yaml:"adapter"`
	Providers []ProviderConfig `yaml:"providers"`
}

// ProviderConfig holds settings for one RPC endpoint.
type ProviderConfig struct {
	Name    string        `yaml:"name"`
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`
}

// WalletConfig points at the signing agent.
type WalletConfig struct {
	AgentURL string        `yaml:"agent_url"`
	Account  string        `yaml:"account"`
	Timeout  time.Duration `yaml:"timeout"`
}

// RetryConfig holds the default submission retry policy.
type RetryConfig struct {
	MaxRetries      int           `yaml:"max_retries"`
	InitialDelay    time.Duration `yaml:"initial_delay"`
	MaxDelay        time.Duration `yaml:"max_delay"`
	BackoffMultiple float64       `yaml:"backoff_multiple"`
}
