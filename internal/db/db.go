package db

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"climate-server/internal/config"

	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"
)

func Open(cfg config.Config) (*sql.DB, error) {
	dsn, err := buildDSN(cfg)
	if err != nil {
		return nil, err
	}

	var db *sql.DB
	if cfg.SQLiteLogStatements && cfg.SQLiteDriver == config.DriverMattn {
		connector, err := NewLoggingConnector(dsn, slog.Default().With("component", "sql"))
		if err != nil {
			return nil, fmt.Errorf("db logging connector: %w", err)
		}
		db = sql.OpenDB(connector)
	} else {
		db, err = sql.Open(cfg.SQLiteDriver, dsn)
		if err != nil {
			return nil, fmt.Errorf("db open: %w", err)
		}
	}

	if cfg.SQLiteMaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.SQLiteMaxOpenConns)
	}
	if cfg.SQLiteMaxIdleConns >= 0 {
		db.SetMaxIdleConns(cfg.SQLiteMaxIdleConns)
	}
	if cfg.SQLiteConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.SQLiteConnMaxLifetime)
	}

	// Validate connectivity early
	if err := db.Ping(); err != nil {
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

func buildDSN(cfg config.Config) (string, error) {
	if cfg.SQLiteDSN != "" {
		return cfg.SQLiteDSN, nil
	}

	path := cfg.SQLitePath
	if cfg.SQLiteReadOnly {
		// The dataset must already exist; never create an empty file.
		file, _, _ := strings.Cut(strings.TrimPrefix(path, "file:"), "?")
		if _, err := os.Stat(file); err != nil {
			return "", fmt.Errorf("sqlite dataset %s: %w", path, err)
		}
	} else {
		dir := filepath.Dir(path)
		if dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return "", fmt.Errorf("mkdir %s: %w", dir, err)
			}
		}
	}

	params := dsnParams(cfg)

	if strings.HasPrefix(path, "file:") {
		sep := "?"
		if strings.Contains(path, "?") {
			sep = "&"
		}
		return path + sep + strings.Join(params, "&"), nil
	}

	return fmt.Sprintf("file:%s?%s", path, strings.Join(params, "&")), nil
}

// dsnParams returns connection parameters in the syntax of the configured
// driver. The journal stays in rollback mode so the file can later be opened
// with mode=ro.
func dsnParams(cfg config.Config) []string {
	var params []string
	switch cfg.SQLiteDriver {
	case config.DriverModernc:
		params = []string{"_pragma=busy_timeout(5000)"}
		if !cfg.SQLiteReadOnly {
			params = append(params, "_pragma=foreign_keys(1)")
		}
	default:
		params = []string{"_busy_timeout=5000"}
		if !cfg.SQLiteReadOnly {
			params = append(params, "_foreign_keys=on")
		}
	}
	if cfg.SQLiteReadOnly {
		params = append(params, "mode=ro")
	}
	return params
}
