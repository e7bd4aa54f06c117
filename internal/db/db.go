package db

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"climate-api/internal/config"

	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"
)

// Open connects to the observations store read-only. The returned pool goes
// through a guarded connector, so any statement other than a query fails
// with ErrReadOnly.
func Open(ctx context.Context, cfg config.Config, logger *slog.Logger) (*sql.DB, error) {
	drv, err := registeredDriver(cfg.Driver)
	if err != nil {
		return nil, err
	}

	dsn, err := buildDSN(cfg)
	if err != nil {
		return nil, err
	}

	db := sql.OpenDB(NewGuardConnector(drv, dsn, logger, cfg.LogSQL))

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns >= 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	// Fail at startup rather than on the first request.
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}

	return db, nil
}

func Close(db *sql.DB) error {
	if db == nil {
		return nil
	}
	return db.Close()
}

// registeredDriver returns the driver registered under name by the blank imports above.
func registeredDriver(name string) (driver.Driver, error) {
	switch name {
	case "sqlite3", "sqlite":
	default:
		return nil, fmt.Errorf("unsupported db driver %q (allowed: sqlite3, sqlite)", name)
	}
	probe, err := sql.Open(name, "")
	if err != nil {
		return nil, fmt.Errorf("db driver %s: %w", name, err)
	}
	drv := probe.Driver()
	_ = probe.Close()
	return drv, nil
}

func buildDSN(cfg config.Config) (string, error) {
	if cfg.DSN != "" {
		return cfg.DSN, nil
	}

	path := cfg.Path
	if path == "" {
		return "", errors.New("db: empty SQLITE_PATH and no DB_DSN")
	}

	var params []string
	switch cfg.Driver {
	case "sqlite":
		params = []string{
			"mode=ro",
			"_pragma=query_only(1)",
			"_pragma=busy_timeout(5000)",
		}
	default:
		params = []string{
			"mode=ro",
			"_query_only=true",
			"_busy_timeout=5000",
		}
	}

	// Caller already supplied a URI; append our params instead of wrapping it again.
	if strings.HasPrefix(path, "file:") {
		sep := "?"
		if strings.Contains(path, "?") {
			sep = "&"
		}
		return path + sep + strings.Join(params, "&"), nil
	}

	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("store %s: %w", path, err)
	}

	return fmt.Sprintf("file:%s?%s", path, strings.Join(params, "&")), nil
}
