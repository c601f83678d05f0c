package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cinetrack/internal/config"
	"cinetrack/internal/logging"
	"cinetrack/internal/microservices/http-api/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SchemaVersion is the newest numbered migration this binary knows about.
const SchemaVersion = 3

// Migration is one forward step applied after the baseline AutoMigrate.
type Migration struct {
	Version     int
	Description string
	Up          func(tx *gorm.DB) error
}

// Migrations are applied in order, once each, inside a transaction.
var Migrations = []Migration{
	{
		Version:     1,
		Description: "baseline schema",
		Up:          func(tx *gorm.DB) error { return nil },
	},
	{
		Version:     2,
		Description: "backfill rewatch watch time from item runtime",
		Up: func(tx *gorm.DB) error {
			return tx.Exec(`
				UPDATE rewatch_entries r
				SET watch_time_minutes = w.runtime
				FROM watched_items w
				WHERE r.watch_time_minutes = 0
				  AND w.user_id = r.user_id
				  AND w.id = r.item_id
				  AND w.media_type = r.media_type`).Error
		},
	},
	{
		Version:     3,
		Description: "feed index on activities",
		Up: func(tx *gorm.DB) error {
			return tx.Exec(`CREATE INDEX IF NOT EXISTS idx_activities_user_created
				ON activities (user_id, created_at DESC)`).Error
		},
	},
}

// AllModels lists every table owned by cinetrack.
func AllModels() []any {
	return []any{
		&models.User{},
		&models.RefreshToken{},
		&models.WatchedItem{},
		&models.PlannedItem{},
		&models.WatchingItem{},
		&models.RewatchEntry{},
		&models.TvShowProgress{},
		&models.TvShowSnapshot{},
		&models.YearlyStats{},
		&models.UserCollection{},
		&models.CollectionItem{},
		&models.Friendship{},
		&models.FriendRequest{},
		&models.Activity{},
		&models.Recommendation{},
		&models.Notification{},
		&models.SchemaMigration{},
	}
}

// ConnectDB opens the Postgres pool, verifies it and brings the schema up to date.
func ConnectDB(cfg *config.Config) (*gorm.DB, error) {
	logLevel := logger.Warn
	if cfg.IsDevelopment() {
		logLevel = logger.Info
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		// close the pool if ping fails to avoid resource leak
		sqlDB.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := Migrate(db); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	logging.Info().Int("schema_version", SchemaVersion).Msg("connected to the database")
	return db, nil
}

// Migrate runs AutoMigrate for every model and then any pending numbered migrations.
func Migrate(db *gorm.DB) error {
	for _, model := range AllModels() {
		if err := db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate %T: %w", model, err)
		}
	}

	for _, m := range Migrations {
		var applied models.SchemaMigration
		err := db.First(&applied, "version = ?", m.Version).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("check migration %d: %w", m.Version, err)
		}

		err = db.Transaction(func(tx *gorm.DB) error {
			if err := m.Up(tx); err != nil {
				return err
			}
			return tx.Create(&models.SchemaMigration{Version: m.Version}).Error
		})
		if err != nil {
			return fmt.Errorf("apply migration %d (%s): %w", m.Version, m.Description, err)
		}
		logging.Info().Int("version", m.Version).Str("description", m.Description).Msg("migration applied")
	}
	return nil
}

// Close releases the underlying pool.
func Close(db *gorm.DB) {
	if db == nil {
		return
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
}
