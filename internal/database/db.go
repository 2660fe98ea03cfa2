package database

import (
	"context"
	"fmt"

	"receipts/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewConnection initializes a new connection pool using GORM and migrates the schema
func NewConnection(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate creates tables and the case-insensitive login index.
// Shared with the sqlite-backed tests.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.User{},
		&model.Receipt{},
		&model.ReceiptItem{},
	); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}

	if err := db.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_users_login_lower ON users (LOWER(login))").Error; err != nil {
		return fmt.Errorf("create login index: %w", err)
	}
	return nil
}

// Ping runs SELECT 1 against the pool
func Ping(ctx context.Context, db *gorm.DB) error {
	var one int
	return db.WithContext(ctx).Raw("SELECT 1").Scan(&one).Error
}
