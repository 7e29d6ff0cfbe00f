package platform

import (
	"fmt"
	"os"
	"path/filepath"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	DB *gorm.DB
)

// InitDB opens the row store. mysql is used in production, sqlite for local runs and tests.
func InitDB(cfg *Config) (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch cfg.SQLDriver {
	case "mysql":
		dsn := cfg.SQLDSN
		if cfg.SQLHost != "" {
			dsn = fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
				cfg.SQLUser, cfg.SQLPassword, cfg.SQLHost, cfg.SQLPort, cfg.SQLDBName)
		}
		dialector = mysql.Open(dsn)
	case "sqlite", "":
		dsn := cfg.SQLDSN
		if dsn == "" || dsn == "memory" {
			dsn = "file::memory:?cache=shared"
		} else if dir := filepath.Dir(dsn); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create database directory %s: %w", dir, err)
			}
		}
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported SQL_DRIVER %q", cfg.SQLDriver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	DB = db
	return db, nil
}
