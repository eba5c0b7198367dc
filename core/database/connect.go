package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/m3rciful/intakebot/core/logger"
)

// Connect opens and pings the database. SQLite gets a single connection so
// ledger writes never race for the file lock.
func Connect(cfg Config) (*sqlx.DB, error) {
	driver, dsn, err := cfg.open()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	start := time.Now()
	db, err := sqlx.ConnectContext(ctx, driver, dsn)
	attrs := []slog.Attr{
		slog.String("driver", driver),
		slog.String("db", cfg.target()),
		slog.Duration("duration", time.Since(start)),
	}
	if err != nil {
		logger.LogEvent(ctx, logger.DB, slog.LevelError, "db.connect", append(attrs, slog.Any("err", err))...)
		return nil, fmt.Errorf("db connect: %w", err)
	}

	pool := cfg.MaxConnections
	if driver == DriverSQLite {
		pool = 1
	}
	if pool > 0 {
		db.SetMaxOpenConns(pool)
		db.SetMaxIdleConns(pool)
	}
	logger.LogEvent(ctx, logger.DB, slog.LevelInfo, "db.connect", append(attrs, slog.Int("pool_open", pool))...)
	return db, nil
}

func (c Config) open() (string, string, error) {
	switch c.Driver {
	case DriverPostgres:
		return DriverPostgres, c.postgresDSN(), nil
	case DriverSQLite:
		if c.Path == "" {
			return "", "", fmt.Errorf("db connect: sqlite path is empty")
		}
		if err := os.MkdirAll(filepath.Dir(c.Path), 0o755); err != nil {
			return "", "", fmt.Errorf("create database directory: %w", err)
		}
		return DriverSQLite, c.sqliteDSN(), nil
	}
	return "", "", fmt.Errorf("db connect: unsupported driver %q", c.Driver)
}

func (c Config) target() string {
	if c.Driver == DriverSQLite {
		return c.Path
	}
	return c.Host + ":" + c.Port + "/" + c.Name
}

// WaitForPostgres pings dsn every two seconds until it answers or timeout passes.
func WaitForPostgres(dsn string, timeout time.Duration) error {
	db, err := sql.Open(DriverPostgres, dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	deadline := time.Now().Add(timeout)
	for {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		err = db.PingContext(ctx)
		cancel()
		if err == nil {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("timeout reached waiting for database: %w", err)
		}
		time.Sleep(2 * time.Second)
	}
}
