package config

import (
	"fmt"
	"strings"

	libconfig "chargeledger/libs/config"
)

// Config defines ledger service configuration.
type Config struct {
	HTTP struct {
		Port string `yaml:"port" env:"LEDGER_HTTP_PORT"`
	} `yaml:"http"`
	Auth struct {
		// Secret enables the bearer-token guard on mutating routes when set.
		Secret string `yaml:"secret" env:"LEDGER_AUTH_SECRET"`
	} `yaml:"auth"`
	Charging struct {
		SessionCap          int64 `yaml:"sessionCap" env:"LEDGER_SESSION_CAP"`
		LowBalanceThreshold int64 `yaml:"lowBalanceThreshold" env:"LEDGER_LOW_BALANCE_THRESHOLD"`
		DefaultUserBalance  int64 `yaml:"defaultUserBalance" env:"LEDGER_DEFAULT_USER_BALANCE"`
		DefaultStationRate  int64 `yaml:"defaultStationRate" env:"LEDGER_DEFAULT_STATION_RATE"`
	} `yaml:"charging"`
}

// Load reads configuration via the shared helper and applies defaults.
func Load() (*Config, error) {
	cfg := &Config{}
	cfg.HTTP.Port = "8080"
	cfg.Charging.SessionCap = 50
	cfg.Charging.LowBalanceThreshold = 100
	cfg.Charging.DefaultUserBalance = 1000
	cfg.Charging.DefaultStationRate = 10

	if err := libconfig.Load(cfg); err != nil {
		return nil, err
	}

	if cfg.Charging.SessionCap <= 0 {
		return nil, fmt.Errorf("config: session cap must be positive, got %d", cfg.Charging.SessionCap)
	}
	if cfg.Charging.DefaultStationRate <= 0 {
		return nil, fmt.Errorf("config: default station rate must be positive, got %d", cfg.Charging.DefaultStationRate)
	}
	return cfg, nil
}

// HTTPAddress returns :port style.
func (c *Config) HTTPAddress() string {
	port := strings.TrimSpace(c.HTTP.Port)
	if port == "" {
		port = "8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}
