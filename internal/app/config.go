package app

import (
	"fmt"

	corecmd "github.com/m3rciful/intakebot/core/cmd"
	coreconfig "github.com/m3rciful/intakebot/core/config"
	"github.com/m3rciful/intakebot/internal/ledger"
)

// Config is the full bot configuration: the shared core settings plus the
// order ledger backend.
type Config struct {
	coreconfig.Config `yaml:",inline"`

	Ledger ledger.Config `yaml:"ledger"`
}

// CoreConfig exposes the embedded core configuration.
func (c *Config) CoreConfig() *coreconfig.Config {
	return &c.Config
}

// LoadConfig reads path, overlays the environment and validates the result.
func LoadConfig(path string) (corecmd.ConfigCarrier, error) {
	cfg, err := loadConfig(path)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadConfig(path string) (*Config, error) {
	var cfg Config
	if err := coreconfig.Decode(path, &cfg); err != nil {
		return nil, err
	}
	if err := coreconfig.Normalize(&cfg.Config); err != nil {
		return nil, err
	}
	switch cfg.Ledger.Driver {
	case "", ledger.DriverFile, ledger.DriverSQLite, ledger.DriverPostgres:
	default:
		return nil, fmt.Errorf("invalid ledger.driver %q; allowed: file, sqlite, postgres", cfg.Ledger.Driver)
	}
	return &cfg, nil
}
