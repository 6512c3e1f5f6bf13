// Package config provides types for handling configuration parameters.
package config

import (
	"flag"
	"time"

	"github.com/caarlos0/env/v6"
)

// DefaultAdminSecret is an insecure placeholder used when ADMIN_SECRET is not set.
const DefaultAdminSecret = "change_this"

// Config handles server-related constants and parameters.
type Config struct {
	ServerConfig  *ServerConfig
	StorageConfig *StorageConfig
	BotConfig     *BotConfig
	SecretConfig  *SecretConfig
	SweeperConfig *SweeperConfig
}

// ServerConfig defines default server-related constants and parameters and overwrites them with environment variables.
type ServerConfig struct {
	ServerAddress string `env:"RUN_ADDRESS"`
}

// StorageConfig retrieves file storage related parameters from environment.
type StorageConfig struct {
	FilePath string `env:"DATABASE_FILE"`
}

// BotConfig retrieves Telegram bot credentials, notifications are disabled when either value is absent.
type BotConfig struct {
	BotToken  string `env:"BOT_TOKEN"`
	ChannelID string `env:"CHANNEL_ID"`
}

// SecretConfig retrieves a secret key for admin endpoint authorization.
type SecretConfig struct {
	AdminSecret string `env:"ADMIN_SECRET" envDefault:"change_this"`
}

// SweeperConfig defines scheduling parameters for the stale withdrawal sweeper.
type SweeperConfig struct {
	SweepPeriod time.Duration `env:"SWEEP_PERIOD" envDefault:"1h"`
	StaleAfter  time.Duration `env:"STALE_AFTER" envDefault:"72h"`
}

// NewServerConfig sets up a server configuration.
func NewServerConfig() (*ServerConfig, error) {
	cfg := ServerConfig{}
	err := env.Parse(&cfg)
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// NewStorageConfig sets up a file storage configuration.
func NewStorageConfig() (*StorageConfig, error) {
	cfg := StorageConfig{}
	err := env.Parse(&cfg)
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// NewBotConfig sets up a Telegram bot configuration.
func NewBotConfig() (*BotConfig, error) {
	cfg := BotConfig{}
	err := env.Parse(&cfg)
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// NewSecretConfig sets up a secret configuration.
func NewSecretConfig() (*SecretConfig, error) {
	cfg := SecretConfig{}
	err := env.Parse(&cfg)
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// NewSweeperConfig sets up a sweeper scheduling configuration.
func NewSweeperConfig() (*SweeperConfig, error) {
	cfg := SweeperConfig{}
	err := env.Parse(&cfg)
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// NewConfiguration sets up a total configuration.
func NewConfiguration() (*Config, error) {
	serverCfg, err := NewServerConfig()
	if err != nil {
		return nil, err
	}
	storageCfg, err := NewStorageConfig()
	if err != nil {
		return nil, err
	}
	botCfg, err := NewBotConfig()
	if err != nil {
		return nil, err
	}
	secretCfg, err := NewSecretConfig()
	if err != nil {
		return nil, err
	}
	sweeperCfg, err := NewSweeperConfig()
	if err != nil {
		return nil, err
	}
	return &Config{
		ServerConfig:  serverCfg,
		StorageConfig: storageCfg,
		BotConfig:     botCfg,
		SecretConfig:  secretCfg,
		SweeperConfig: sweeperCfg,
	}, nil
}

// isFlagPassed checks whether the flag was set in CLI
func isFlagPassed(name string) bool {
	found := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

// ParseFlags parses command line arguments and stores them
func (c *Config) ParseFlags() {
	a := flag.String("a", ":3000", "Server address")
	f := flag.String("f", "db.json", "Database file path")
	s := flag.String("s", DefaultAdminSecret, "Admin secret")
	flag.Parse()
	// priority: flag -> env -> default flag
	// note that env parsing precedes flag parsing
	if isFlagPassed("a") || c.ServerConfig.ServerAddress == "" {
		c.ServerConfig.ServerAddress = *a
	}
	if isFlagPassed("f") || c.StorageConfig.FilePath == "" {
		c.StorageConfig.FilePath = *f
	}
	if isFlagPassed("s") || c.SecretConfig.AdminSecret == "" {
		c.SecretConfig.AdminSecret = *s
	}
}
