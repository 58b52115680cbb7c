package repository

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/legajo/docsync/internal/entity"
)

// Open connects to the SQLite database at path and migrates the schema.
// The busy timeout keeps concurrent sync and HTTP reads from tripping on
// SQLITE_BUSY.
func Open(path string, busyTimeout time.Duration, log *slog.Logger) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s?_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)",
		path, busyTimeout.Milliseconds())

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", path, err)
	}

	if err := db.AutoMigrate(
		&entity.Document{},
		&entity.Version{},
		&entity.Author{},
		&entity.AnalyzedContent{},
		&entity.SpellingError{},
		&entity.CalendarEvent{},
	); err != nil {
		return nil, fmt.Errorf("migrate schema: %w", err)
	}

	log.Info("database ready", slog.String("path", path))
	return db, nil
}
