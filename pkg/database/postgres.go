package database

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Config holds the PostgreSQL connection settings.
// DSN wins over the individual fields when set.
type Config struct {
	DSN      string
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	TimeZone string
}

func (c Config) dsn() string {
	if c.DSN != "" {
		return c.DSN
	}
	tz := c.TimeZone
	if tz == "" {
		tz = "UTC"
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=%s",
		c.Host, c.User, c.Password, c.Name, c.Port, tz,
	)
}

// ConnectDB opens a pooled GORM connection and routes GORM's logger through log.
func ConnectDB(cfg Config, log zerolog.Logger) (*gorm.DB, error) {
	gormLogger := logger.New(
		&log,
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  cfg.dsn(),
		PreferSimpleProtocol: true, // Disables implicit prepared statements for pooled transaction mode
	}), &gorm.Config{
		Logger:      gormLogger,
		PrepareStmt: false,
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("database handle: %w", err)
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	log.Info().Msg("Database connection established")
	return db, nil
}
