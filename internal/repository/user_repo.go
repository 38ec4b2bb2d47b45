package repository

import (
	"context"

	"appointment-backend/internal/database"
	"appointment-backend/internal/models"

	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepo(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByID retrieves a user by ID
func (r *UserRepository) FindByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := database.Conn(ctx, r.db).First(&user, id).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

// FindUserByUsername finds a user by username
func (r *UserRepository) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := database.Conn(ctx, r.db).Where("username = ?", username).First(&user).Error
	if err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

// CreateUser creates a new user
func (r *UserRepository) CreateUser(ctx context.Context, user *models.User) error {
	return translate(database.Conn(ctx, r.db).Create(user).Error)
}

// UpdateProfile writes the non-empty profile fields onto the user
func (r *UserRepository) UpdateProfile(ctx context.Context, id uint, profile models.UserProfile) error {
	conn := database.Conn(ctx, r.db)

	var user models.User
	if err := conn.Select("id").First(&user, id).Error; err != nil {
		return translate(err)
	}
	if profile == (models.UserProfile{}) {
		return nil
	}

	// struct Updates skips zero-value fields
	err := conn.Model(&user).Updates(models.User{
		Name:     profile.Name,
		Username: profile.Username,
		Email:    profile.Email,
		Phone:    profile.Phone,
	}).Error
	return translate(err)
}

// Delete removes the user together with its refresh tokens
func (r *UserRepository) Delete(ctx context.Context, id uint) error {
	conn := database.Conn(ctx, r.db)
	if err := conn.Where("user_id = ?", id).Delete(&models.RefreshToken{}).Error; err != nil {
		return err
	}
	result := conn.Delete(&models.User{}, id)
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// CreateRefreshToken creates a new refresh token
func (r *UserRepository) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	return database.Conn(ctx, r.db).Create(token).Error
}

// FindRefreshTokenByHash finds an unrevoked refresh token by its hash
func (r *UserRepository) FindRefreshTokenByHash(ctx context.Context, hash string) (*models.RefreshToken, error) {
	var token models.RefreshToken
	err := database.Conn(ctx, r.db).
		Where("token_hash = ? AND revoked = ?", hash, false).
		Preload("User").
		First(&token).Error
	if err != nil {
		return nil, translate(err)
	}
	return &token, nil
}

// RevokeRefreshTokenByHash marks a refresh token as revoked by its hash
func (r *UserRepository) RevokeRefreshTokenByHash(ctx context.Context, hash string) error {
	return database.Conn(ctx, r.db).Model(&models.RefreshToken{}).
		Where("token_hash = ?", hash).
		Update("revoked", true).Error
}
