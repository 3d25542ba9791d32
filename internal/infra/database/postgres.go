package database

import (
	"log/slog"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/totegamma/orderdemo/internal/infra/database/models"
)

// NewGormLogger routes gorm warnings and errors through base so they
// carry the request attributes of the query context.
func NewGormLogger(base *slog.Logger) logger.Interface {
	return logger.NewSlogLogger(
		base.With(slog.String("module", "gorm")),
		logger.Config{
			SlowThreshold:             300 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		},
	)
}

func NewPostgres(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         NewGormLogger(slog.Default()),
	})
	return db, err
}

func MigratePostgres(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
	)
}
