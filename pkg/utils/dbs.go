package utils

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// DefaultSQLiteDSN is used when the sqlite driver is selected without a DSN
const DefaultSQLiteDSN = "file::memory:"

// InitDatabase opens driver/dsn, falling back to the DB_DRIVER and DSN
// environment variables. SQL warnings and slow queries go to logWrite.
func InitDatabase(logWrite io.Writer, driver, dsn string) (*gorm.DB, error) {
	if driver == "" {
		driver = GetEnv("DB_DRIVER")
	}
	if dsn == "" {
		dsn = GetEnv("DSN")
	}
	if logWrite == nil {
		logWrite = os.Stdout
	}

	dialector, err := openDialector(driver, dsn)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.New(log.New(logWrite, "\r\n", log.LstdFlags), gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
		SkipDefaultTransaction:                   true,
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", driver, err)
	}

	if driver == "mysql" {
		// older servers reject the collation clause
		if err := db.Exec("SET NAMES utf8mb4 COLLATE utf8mb4_unicode_ci").Error; err != nil {
			db.Exec("SET NAMES utf8mb4")
		}
	}

	if err := ConfigureConnectionPool(db, driver); err != nil {
		return nil, err
	}
	return db, nil
}

func openDialector(driver, dsn string) (gorm.Dialector, error) {
	switch strings.ToLower(driver) {
	case "mysql":
		return mysql.Open(dsn), nil
	case "pg", "postgres":
		return postgres.Open(dsn), nil
	case "", "sqlite", "sqlite3":
		if dsn == "" {
			dsn = DefaultSQLiteDSN
		}
		return sqlite.Open(dsn), nil
	}
	return nil, fmt.Errorf("unsupported database driver %q", driver)
}

// ConfigureConnectionPool sizes the underlying sql.DB pool. sqlite is pinned
// to one connection so an in-memory database is shared by every query.
func ConfigureConnectionPool(db *gorm.DB, driver string) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("get sql.DB: %w", err)
	}
	switch strings.ToLower(driver) {
	case "mysql", "pg", "postgres":
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(100)
		sqlDB.SetConnMaxLifetime(time.Hour)
		sqlDB.SetConnMaxIdleTime(30 * time.Minute)
	default:
		sqlDB.SetMaxOpenConns(1)
	}
	return nil
}

// MakeMigrates auto-migrates every model in order
func MakeMigrates(db *gorm.DB, models []any) error {
	for _, m := range models {
		if err := db.AutoMigrate(m); err != nil {
			return fmt.Errorf("migrate %T: %w", m, err)
		}
	}
	return nil
}
