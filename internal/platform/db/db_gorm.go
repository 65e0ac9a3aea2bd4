// Package db opens the relational store.
package db

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// retryInterval is the pause between connection attempts.
var retryInterval = 3 * time.Second

// Config holds the PostgreSQL connection settings.
type Config struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// Opener opens a gorm connection for a DSN.
type Opener func(dsn string) (*gorm.DB, error)

// BuildDSN renders cfg as a PostgreSQL key/value DSN.
func BuildDSN(cfg Config) string {
	sslmode := cfg.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, sslmode)
}

// ConnectWithRetry calls open until it succeeds or timeout elapses.
func ConnectWithRetry(dsn string, timeout time.Duration, open Opener) (*gorm.DB, error) {
	deadline := time.Now().Add(timeout)
	for {
		db, err := open(dsn)
		if err == nil {
			return db, nil
		}
		if time.Now().Add(retryInterval).After(deadline) {
			return nil, fmt.Errorf("db connect failed after %s: %w", timeout, err)
		}
		slog.Warn("DB connect failed, retrying", "error", err, "retry_in", retryInterval)
		time.Sleep(retryInterval)
	}
}

// PostgresOpener opens PostgreSQL through the pgx-backed gorm driver.
// TranslateError maps unique violations to gorm.ErrDuplicatedKey.
func PostgresOpener(dsn string) (*gorm.DB, error) {
	return gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
}

// OpenDB connects to PostgreSQL and, when migrate is set, migrates models.
func OpenDB(cfg Config, migrate bool, models ...any) (*gorm.DB, error) {
	db, err := ConnectWithRetry(BuildDSN(cfg), 60*time.Second, PostgresOpener)
	if err != nil {
		return nil, err
	}
	if migrate {
		if err := Migrate(db, models...); err != nil {
			return nil, err
		}
	}
	return db, nil
}

// Migrate creates or updates the tables of models.
func Migrate(db *gorm.DB, models ...any) error {
	if len(models) == 0 {
		return errors.New("db: nothing to migrate")
	}
	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}
	slog.Info("database migrated", "tables", len(models))
	return nil
}
