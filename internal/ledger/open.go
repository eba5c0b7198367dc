package ledger

import (
	"context"
	"fmt"

	"github.com/m3rciful/intakebot/core/database"
)

const (
	DriverFile     = "file"
	DriverSQLite   = database.DriverSQLite
	DriverPostgres = database.DriverPostgres
)

// Config selects and configures a backend.
type Config struct {
	// Driver is "file" (default), "sqlite" or "postgres".
	Driver string `yaml:"driver" envconfig:"LEDGER_DRIVER"`
	// Path is the orders.json file for "file" and the database file for "sqlite".
	Path     string          `yaml:"path" envconfig:"LEDGER_PATH"`
	Database database.Config `yaml:"database"`
}

// Open builds the configured backend, running migrations for SQL drivers.
func Open(ctx context.Context, cfg Config) (Ledger, error) {
	switch cfg.Driver {
	case "", DriverFile:
		path := cfg.Path
		if path == "" {
			path = "orders.json"
		}
		return NewFileLedger(path)
	case DriverSQLite, DriverPostgres:
		dbCfg := cfg.Database
		dbCfg.Driver = cfg.Driver
		if cfg.Driver == DriverSQLite {
			dbCfg.Path = cfg.Path
			if dbCfg.Path == "" {
				dbCfg.Path = "orders.db"
			}
		}
		db, err := database.Connect(dbCfg)
		if err != nil {
			return nil, err
		}
		if err := database.RunMigrations(dbCfg); err != nil {
			_ = db.Close()
			return nil, err
		}
		l, err := NewSQLLedger(ctx, db)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		return l, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
}
