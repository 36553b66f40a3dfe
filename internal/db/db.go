package db

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
)

// Config captures the connection parameters for the supplier store.
// Path is used by the SQLite driver, the remaining fields by MySQL.
type Config struct {
	Driver   string
	Path     string
	User     string
	Password string
	Host     string
	Port     string
	Database string
	Params   string
}

// FromEnv populates a Config using sensible defaults that can be overridden via environment variables.
func FromEnv() Config {
	cfg := Config{
		Driver:   getEnv("SUPPLIER_DB_DRIVER", DriverSQLite),
		Path:     getEnv("SUPPLIER_DB_PATH", "supplier.db"),
		User:     getEnv("MYSQL_USER", "supplier"),
		Password: getEnv("MYSQL_PASSWORD", "supplier"),
		Host:     getEnv("MYSQL_HOST", "127.0.0.1"),
		Port:     getEnv("MYSQL_PORT", "3306"),
		Database: getEnv("MYSQL_DATABASE", "supplier"),
		Params:   getEnv("MYSQL_PARAMS", "charset=utf8mb4&parseTime=True&loc=Local"),
	}
	return cfg
}

// Open returns a read-write gorm DB for the configured driver.
func Open(cfg Config) (*gorm.DB, error) {
	return open(cfg, false)
}

// OpenReadOnly returns a gorm DB that refuses writes where the driver allows it.
// MySQL has no per-connection read-only DSN flag, so it gets a regular connection.
func OpenReadOnly(cfg Config) (*gorm.DB, error) {
	return open(cfg, true)
}

// Close releases the connection pool behind gdb.
func Close(gdb *gorm.DB) error {
	sqlDB, err := gdb.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func open(cfg Config, readOnly bool) (*gorm.DB, error) {
	dialector, err := dialectorFor(cfg, readOnly)
	if err != nil {
		return nil, err
	}

	gormCfg := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}

	gdb, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, err
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, err
	}

	sqlDB.SetConnMaxLifetime(5 * time.Minute)
	if cfg.Driver == DriverMySQL {
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(5)
	} else {
		// a single writer keeps SQLite from returning SQLITE_BUSY during bulk inserts
		sqlDB.SetMaxOpenConns(1)
	}

	return gdb, nil
}

func dialectorFor(cfg Config, readOnly bool) (gorm.Dialector, error) {
	switch strings.ToLower(cfg.Driver) {
	case "", DriverSQLite:
		if cfg.Path == "" {
			return nil, fmt.Errorf("sqlite path is empty")
		}
		return sqlite.Open(SQLiteDSN(cfg.Path, readOnly)), nil
	case DriverMySQL:
		return mysql.Open(MySQLDSN(cfg)), nil
	default:
		return nil, fmt.Errorf("unsupported driver %q (must be %q or %q)", cfg.Driver, DriverSQLite, DriverMySQL)
	}
}

// SQLiteDSN builds the data source name for a SQLite file.
func SQLiteDSN(path string, readOnly bool) string {
	if !readOnly {
		return path
	}
	return fmt.Sprintf("file:%s?mode=ro", path)
}

// MySQLDSN builds the go-sql-driver DSN for cfg.
func MySQLDSN(cfg Config) string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?%s",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.Database,
		cfg.Params,
	)
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
