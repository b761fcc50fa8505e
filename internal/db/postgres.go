/**
 * @description
 * PostgreSQL connection manager using GORM.
 * Normalizes the configured connection string, opens the pool, and runs
 * schema migration for the tracking tables.
 *
 * @dependencies
 * - gorm.io/gorm: ORM library
 * - gorm.io/driver/postgres: Postgres driver
 */

package db

import (
	"time"

	"github.com/pricetrack/backend/internal/config"
	"github.com/pricetrack/backend/internal/logger"
	"github.com/pricetrack/backend/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// ConnectPostgres initializes the PostgreSQL connection
func ConnectPostgres(cfg *config.Config) (*gorm.DB, error) {
	dsn, err := NormalizePostgresURL(cfg.DB.URL)
	if err != nil {
		return nil, err
	}

	// Configure GORM logger based on environment
	gormLogLevel := gormLogger.Error
	if cfg.Server.Env == "development" {
		gormLogLevel = gormLogger.Info
	} else if cfg.Server.Env == "staging" {
		gormLogLevel = gormLogger.Warn
	}

	gdb, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true, // disable prepared statements to avoid stmtcache collisions in serverless envs
	}), &gorm.Config{
		Logger:         gormLogger.Default.LogMode(gormLogLevel),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	// Get generic database object to set connection pool params
	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, err
	}

	// Set conservative connection pool settings for managed Postgres (e.g. Supabase)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	if err := gdb.AutoMigrate(&models.Product{}, &models.PriceObservation{}); err != nil {
		return nil, err
	}

	logger.Info("✅ Connected to PostgreSQL")
	return gdb, nil
}
