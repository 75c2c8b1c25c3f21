package database

import (
	"errors"
	"fmt"
	"time"

	"strength-tracker/internal/models"
	"strength-tracker/internal/store"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func Initialize(databaseURL string) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(databaseURL), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MySQL database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := Migrate(db); err != nil {
		return nil, err
	}

	logrus.Info("database initialized")
	return db, nil
}

// Migrate creates/updates the snapshot log and user table.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.MarketSnapshot{}, &models.User{}); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	return nil
}

// SeedAdmin ensures exactly one admin account exists. When adminPassword is
// non-empty the stored hash is refreshed, so rotating ADMIN_PASSWORD takes
// effect on restart.
func SeedAdmin(db *gorm.DB, adminPassword string) error {
	var admin models.User
	err := db.Where("username = ?", models.AdminUsername).First(&admin).Error

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		if adminPassword == "" {
			return errors.New("ADMIN_PASSWORD must be set to create the admin account")
		}
		hash, err := store.HashSecret(adminPassword)
		if err != nil {
			return err
		}
		admin = models.User{
			Username:     models.AdminUsername,
			PasswordHash: hash,
			Role:         models.RoleAdmin,
		}
		admin.SetPermissions([]string{"live", "excel", "terminal", "history"})
		if err := db.Create(&admin).Error; err != nil {
			return fmt.Errorf("seed admin user: %w", err)
		}
		logrus.Info("admin user created")
		return nil

	case err != nil:
		return fmt.Errorf("load admin user: %w", err)

	default:
		if adminPassword == "" {
			return nil
		}
		hash, err := store.HashSecret(adminPassword)
		if err != nil {
			return err
		}
		if err := db.Model(&admin).Update("password_hash", hash).Error; err != nil {
			return fmt.Errorf("refresh admin password: %w", err)
		}
		logrus.Info("admin password refreshed")
		return nil
	}
}
