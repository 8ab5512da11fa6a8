package database

import (
	"errors"
	"log"
	"strings"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Opts struct {
	Driver             string
	DSN                string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeMin int
	LogLevel           string
	// Writer receives GORM's own log lines; nil keeps GORM's default stdout logger.
	Writer *log.Logger
}

var ErrUnsupportedDriver = errors.New("database: unsupported driver")

func NewGorm(o Opts) (*gorm.DB, error) {
	var dial gorm.Dialector
	switch o.Driver {
	case "postgres", "postgresql":
		dial = postgres.Open(o.DSN)
	case "mysql":
		dial = mysql.Open(o.DSN)
	case "sqlite", "sqlite3":
		dial = sqlite.Open(o.DSN)
	default:
		return nil, ErrUnsupportedDriver
	}

	lvl := logger.Warn
	switch o.LogLevel {
	case "silent":
		lvl = logger.Silent
	case "error":
		lvl = logger.Error
	case "info":
		lvl = logger.Info
	}
	gl := logger.Default.LogMode(lvl)
	if o.Writer != nil {
		gl = logger.New(o.Writer, logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  lvl,
			IgnoreRecordNotFoundError: true,
		})
	}

	db, err := gorm.Open(dial, &gorm.Config{
		Logger:         gl,
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if o.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(o.MaxOpenConns)
	}
	if o.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(o.MaxIdleConns)
	}
	if o.ConnMaxLifetimeMin > 0 {
		sqlDB.SetConnMaxLifetime(time.Duration(o.ConnMaxLifetimeMin) * time.Minute)
	}
	return db.Session(&gorm.Session{
		PrepareStmt:            true,
		SkipDefaultTransaction: true,
	}), nil
}

// MaskDSN hides the password of a URL or go-sql-driver style DSN for logging.
func MaskDSN(dsn string) string {
	at := strings.LastIndex(dsn, "@")
	if at <= 0 {
		return dsn
	}
	head := dsn[:at]
	start := strings.Index(head, "://")
	if start >= 0 {
		start += 3
	} else {
		start = 0
	}
	colon := strings.Index(head[start:], ":")
	if colon < 0 {
		return dsn
	}
	return head[:start+colon+1] + "****" + dsn[at:]
}
