package database

import (
	"fmt"
	"log/slog"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const DefaultSqlitePath = "pdf-insight.db"

// Open connects to postgres for postgres:// urls and to sqlite otherwise,
// then brings the schema up to date.
func Open(databaseURL string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch {
	case strings.HasPrefix(databaseURL, "postgres://"), strings.HasPrefix(databaseURL, "postgresql://"):
		dialector = postgres.Open(databaseURL)
	case databaseURL == "":
		dialector = sqlite.Open(DefaultSqlitePath)
	default:
		dialector = sqlite.Open(strings.TrimPrefix(databaseURL, "sqlite://"))
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)})
	if err != nil {
		return nil, fmt.Errorf("error opening database connection: %w", err)
	}

	if err := GetMigrator(db).Migrate(); err != nil {
		return nil, fmt.Errorf("error migrating database: %w", err)
	}

	slog.Info("database ready", "dialect", db.Dialector.Name())
	return db, nil
}
