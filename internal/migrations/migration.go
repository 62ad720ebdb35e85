package migrations

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"washnet/internal/models"
	"washnet/internal/repository"
	"washnet/internal/services"

	"gorm.io/gorm"
)

// DefaultData describes the account created on an empty database.
type DefaultData struct {
	AdminName     string
	AdminEmail    string
	AdminPassword string
	BcryptCost    int
}

// AutoMigrate creates or updates every table.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Invitation{},
		&models.Order{},
		&models.OrderItem{},
		&models.OrderStatusLog{},
	)
}

// RunMigrations runs all database migrations and creates default data
func RunMigrations(ctx context.Context, db *gorm.DB, defaults DefaultData) error {
	slog.Info("running database migrations")

	if err := AutoMigrate(db); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	if err := createDefaultData(ctx, db, defaults); err != nil {
		slog.Warn("failed to create default data", "error", err)
	}

	slog.Info("database migrations completed")
	return nil
}

// createDefaultData creates the admin user and a first invitation code when
// the admin does not exist yet. Both are written in one transaction so a
// failed start leaves nothing half seeded.
func createDefaultData(ctx context.Context, db *gorm.DB, defaults DefaultData) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		userService := services.NewUserService(repository.NewUserRepository(tx), nil, 0, defaults.BcryptCost)

		existingUser, err := userService.GetUserByEmail(ctx, defaults.AdminEmail)
		if err == nil && existingUser != nil {
			slog.Info("admin user already exists", "email", existingUser.Email)
			return nil
		}
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		admin := &models.User{
			Name:  defaults.AdminName,
			Email: defaults.AdminEmail,
			Role:  string(models.Admin),
		}
		if err := userService.CreateUser(ctx, admin, defaults.AdminPassword); err != nil {
			return fmt.Errorf("failed to create admin user: %w", err)
		}

		invitation, err := userService.CreateInvitation(ctx, admin, "", 0)
		if err != nil {
			return fmt.Errorf("failed to create initial invitation: %w", err)
		}

		slog.Info("admin user created", "email", admin.Email)
		slog.Info("initial invitation code created", "code", invitation.Code)
		return nil
	})
}
