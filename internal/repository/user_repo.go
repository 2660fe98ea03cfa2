package repository

import (
	"context"

	"receipts/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserRepository defines the interface for data access of User entities
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	// GetByLogin matches the login case-insensitively
	GetByLogin(ctx context.Context, login string) (*model.User, error)
	SetRefreshToken(ctx context.Context, id uuid.UUID, token *string) error
	// ReplaceRefreshToken swaps old for next only while old is still the stored token.
	// It returns ErrNotFound when old is stale.
	ReplaceRefreshToken(ctx context.Context, id uuid.UUID, old, next string) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a new instance of UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	return translate(conn(ctx, r.db).Create(user).Error)
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var user model.User
	if err := conn(ctx, r.db).First(&user, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *userRepository) GetByLogin(ctx context.Context, login string) (*model.User, error) {
	var user model.User
	if err := conn(ctx, r.db).First(&user, "LOWER(login) = LOWER(?)", login).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

// SetRefreshToken overwrites the single live refresh token; nil clears it
func (r *userRepository) SetRefreshToken(ctx context.Context, id uuid.UUID, token *string) error {
	res := conn(ctx, r.db).Model(&model.User{}).Where("id = ?", id).Update("refresh_token", token)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *userRepository) ReplaceRefreshToken(ctx context.Context, id uuid.UUID, old, next string) error {
	res := conn(ctx, r.db).Model(&model.User{}).
		Where("id = ? AND refresh_token = ?", id, old).
		Update("refresh_token", next)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
