// Package db opens the database, applies migrations and seeds baseline data.
package db

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/diewo77/go-users/internal/config"
)

// Open connects to the configured database. Postgres connections are retried
// to leave the server time to start.
func Open(cfg config.DatabaseConfig, dev bool) (*gorm.DB, error) {
	gcfg := &gorm.Config{TranslateError: true}
	if !dev {
		gcfg.Logger = logger.Default.LogMode(logger.Warn)
	}

	switch strings.ToLower(cfg.Driver) {
	case "sqlite":
		slog.Info("connecting to database", "driver", "sqlite", "path", cfg.SQLitePath)
		d, err := gorm.Open(sqlite.Open(cfg.SQLitePath), gcfg)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		return d, nil
	case "postgres":
		slog.Info("connecting to database", "driver", "postgres",
			"host", cfg.Host, "port", cfg.Port, "dbname", cfg.DBName, "user", cfg.User)
		var d *gorm.DB
		var err error
		for attempt := 1; attempt <= 5; attempt++ {
			d, err = gorm.Open(postgres.Open(cfg.DSN()), gcfg)
			if err == nil {
				return d, nil
			}
			slog.Warn("database connection failed, retrying", "attempt", attempt, "err", err)
			time.Sleep(2 * time.Second)
		}
		return nil, fmt.Errorf("open postgres: %w", err)
	default:
		return nil, fmt.Errorf("unsupported driver %q", cfg.Driver)
	}
}
