package db

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/DeiroLy/Safe-Tools/models"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Options selects the store. Postgres is the production engine; SQLite serves
// single-site installs and tests.
type Options struct {
	Driver     string
	DSN        string // postgres
	SQLitePath string // sqlite
	LogLevel   logger.LogLevel
}

// SQLiteDSN opens path with immediate transactions so concurrent writers
// queue on the database lock instead of failing mid-transaction.
func SQLiteDSN(path string) string {
	return "file:" + path + "?_busy_timeout=10000&_txlock=immediate&_foreign_keys=1&_journal_mode=WAL"
}

func Open(opts Options) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch opts.Driver {
	case "", DriverPostgres:
		if opts.DSN == "" {
			return nil, fmt.Errorf("open: empty postgres dsn")
		}
		dialector = postgres.Open(opts.DSN)
	case DriverSQLite:
		if opts.SQLitePath == "" {
			return nil, fmt.Errorf("open: empty sqlite path")
		}
		if err := os.MkdirAll(filepath.Dir(opts.SQLitePath), 0o755); err != nil {
			return nil, fmt.Errorf("open: create db dir: %w", err)
		}
		dialector = sqlite.Open(SQLiteDSN(opts.SQLitePath))
	default:
		return nil, fmt.Errorf("open: unknown driver %q", opts.Driver)
	}

	level := opts.LogLevel
	if level == 0 {
		level = logger.Warn
	}
	conn, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
		Logger:         logger.Default.LogMode(level),
	})
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	if err := Migrate(conn); err != nil {
		return nil, fmt.Errorf("open: migrate: %w", err)
	}
	return conn, nil
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&models.User{}, &models.Tool{}, &models.Mode{}, &models.LogEntry{})
}
