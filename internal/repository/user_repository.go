package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"washnet/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	CreateWithInvitation(ctx context.Context, user *models.User, code string, now time.Time) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	CreateInvitation(ctx context.Context, invitation *models.Invitation) error
	GetInvitation(ctx context.Context, code string) (*models.Invitation, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// CreateWithInvitation redeems the invitation and creates the user in one
// transaction, so a code can never be spent twice.
func (r *userRepository) CreateWithInvitation(ctx context.Context, user *models.User, code string, now time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var invitation models.Invitation
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("code = ?", code).
			First(&invitation).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.ErrInvitationUnusable
		}
		if err != nil {
			return err
		}

		if !invitation.Usable(now) {
			return models.ErrInvitationUnusable
		}
		if invitation.Email != "" && !strings.EqualFold(invitation.Email, user.Email) {
			return models.ErrInvitationUnusable
		}

		user.Role = invitation.Role
		if err := tx.Create(user).Error; err != nil {
			return err
		}

		return tx.Model(&invitation).Updates(map[string]interface{}{
			"used_at": now,
			"used_by": user.ID,
		}).Error
	})
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).First(&user, id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("LOWER(email) = LOWER(?)", email).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

func (r *userRepository) CreateInvitation(ctx context.Context, invitation *models.Invitation) error {
	return r.db.WithContext(ctx).Create(invitation).Error
}

func (r *userRepository) GetInvitation(ctx context.Context, code string) (*models.Invitation, error) {
	var invitation models.Invitation
	err := r.db.WithContext(ctx).Where("code = ?", code).First(&invitation).Error
	if err != nil {
		return nil, err
	}
	return &invitation, nil
}
