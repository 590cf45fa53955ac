package config

import (
	"fmt"
	"log"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"debo-engineering/job-portal/internal/models"
)

func InitDatabase(cfg *Config) (*gorm.DB, error) {
	logLevel := logger.Silent
	if cfg.IsDevelopment() {
		logLevel = logger.Info
	}

	db, err := OpenDatabase(cfg.Database.Driver, dialectorSource(cfg), logLevel)
	if err != nil {
		return nil, err
	}

	log.Printf("✅ Database connected successfully (%s)\n", cfg.Database.Driver)

	if err := Migrate(db); err != nil {
		return nil, err
	}

	log.Println("✅ Database migration completed")

	return db, nil
}

func OpenDatabase(driver, source string, logLevel logger.LogLevel) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "postgres":
		dialector = postgres.Open(source)
	case "sqlite":
		dialector = sqlite.Open(source)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return db, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Job{},
		&models.Application{},
		&models.ApplicationStatusEvent{},
		&models.InternProgression{},
		&models.Setting{},
		&models.AuditLog{},
		&models.EmailTemplate{},
	); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	return nil
}

func dialectorSource(cfg *Config) string {
	if cfg.Database.Driver == "sqlite" {
		// Foreign keys are off by default in sqlite.
		return cfg.Database.SQLitePath + "?_foreign_keys=on"
	}
	return cfg.GetDatabaseDSN()
}
