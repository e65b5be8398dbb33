package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"hotel-ops-backend/config"
	"hotel-ops-backend/internal/logging"
	"hotel-ops-backend/internal/model"
)

// AdminUsername is the account created by Seed.
const AdminUsername = "admin"

// Dialector picks the gorm driver for the configured database.
func Dialector(cfg *config.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case "postgres", "":
		return postgres.Open(cfg.DSN), nil
	case "mysql":
		return mysql.Open(cfg.DSN), nil
	case "sqlite":
		return sqlite.Open(cfg.DSN), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// Init initializes the database connection, runs migrations and optionally seeds
// the roles and the admin account.
func Init(ctx context.Context, cfg *config.DatabaseConfig, log *logrus.Logger) (*gorm.DB, error) {
	dialector, err := Dialector(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: logging.Gorm(log)})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetimeMinutes) * time.Minute)

	log.Info("Running database migrations...")
	if err := Migrate(db); err != nil {
		return nil, err
	}

	if cfg.Seed {
		log.Info("Seeding roles and admin account...")
		if err := Seed(ctx, db, cfg.AdminPassword); err != nil {
			return nil, err
		}
	}

	log.Info("Database initialization complete.")
	return db, nil
}

// Migrate creates or updates every table.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.User{},
		&model.Role{},
		&model.UserRole{},
		&model.Room{},
		&model.Booking{},
		&model.Payment{},
	); err != nil {
		return fmt.Errorf("automigrate failed: %w", err)
	}
	return nil
}

// Seed inserts the Admin and User roles and an admin account holding the Admin role.
// Existing rows are left untouched, so Seed can run on every start.
func Seed(ctx context.Context, db *gorm.DB, adminPassword string) error {
	if adminPassword == "" {
		return errors.New("seed: admin password is required")
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()
		roles := []model.Role{
			{Name: model.RoleAdmin, CreatedAt: now, UpdatedAt: now},
			{Name: model.RoleUser, CreatedAt: now, UpdatedAt: now},
		}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&roles).Error; err != nil {
			return fmt.Errorf("seed roles: %w", err)
		}

		var admin model.Role
		if err := tx.Where("name = ?", model.RoleAdmin).First(&admin).Error; err != nil {
			return fmt.Errorf("seed: load admin role: %w", err)
		}

		var user model.User
		err := tx.Where("username = ?", AdminUsername).First(&user).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
			if err != nil {
				return fmt.Errorf("seed: hash admin password: %w", err)
			}
			user = model.User{
				Username:  AdminUsername,
				Email:     "admin@localhost",
				Password:  string(hash),
				Status:    model.UserStatusActive,
				CreatedAt: now,
				UpdatedAt: now,
			}
			if err := tx.Create(&user).Error; err != nil {
				return fmt.Errorf("seed admin user: %w", err)
			}
		case err != nil:
			return fmt.Errorf("seed: load admin user: %w", err)
		}

		link := model.UserRole{UserID: user.ID, RoleID: admin.ID, CreatedAt: now}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&link).Error; err != nil {
			return fmt.Errorf("seed admin role: %w", err)
		}
		return nil
	})
}
