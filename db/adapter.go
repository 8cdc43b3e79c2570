package db

import (
	"fmt"

	"github.com/kasuganosora/osupanel/config"
	dbmysql "github.com/kasuganosora/osupanel/db/mysql"
	dbsqlite "github.com/kasuganosora/osupanel/db/sqlite"
	"gorm.io/gorm"
)

const (
	ModeSQLite = "sqlite"
	ModeMySQL  = "mysql"
)

// Open returns a pooled *gorm.DB for the configured database mode.
// MySQL is the shared game store; SQLite is for local development and tests.
func Open(cfg config.DatabaseConfig) (*gorm.DB, error) {
	switch cfg.Mode {
	case ModeSQLite:
		return dbsqlite.Open(cfg.SQLitePath)
	case ModeMySQL:
		return dbmysql.Open(cfg.MySQLDSN, cfg.MySQLMaxOpen, cfg.MySQLMaxIdle, cfg.MySQLMaxLife)
	default:
		return nil, fmt.Errorf("db: unknown mode %q", cfg.Mode)
	}
}
