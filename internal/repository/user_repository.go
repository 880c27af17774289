package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"esecretary/internal/model"
)

// UserRepository defines user persistence operations.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	UpdateLastLogin(ctx context.Context, id uuid.UUID) error
	LinkGoogleIdentity(ctx context.Context, id uuid.UUID, googleID, picture string) error
	StoreOAuthTokens(ctx context.Context, id uuid.UUID, accessToken, refreshToken string, expiresAt *time.Time) error
	ClearOAuthTokens(ctx context.Context, id uuid.UUID) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository builds a GORM-backed repository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByEmail performs a case-insensitive lookup.
func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("LOWER(email) = LOWER(?)", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) UpdateLastLogin(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", id).
		Update("last_login", time.Now()).Error
}

// LinkGoogleIdentity associates a Google subject with an existing user
// without overwriting a previous linkage, marks the email verified (Google
// verifies emails) and records the login.
func (r *userRepository) LinkGoogleIdentity(ctx context.Context, id uuid.UUID, googleID, picture string) error {
	updates := map[string]interface{}{
		"google_id":      gorm.Expr("COALESCE(google_id, ?)", googleID),
		"email_verified": true,
		"last_login":     time.Now(),
	}
	if picture != "" {
		updates["profile_picture"] = gorm.Expr("COALESCE(NULLIF(?, ''), profile_picture)", picture)
	}
	return r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// StoreOAuthTokens always overwrites the access token and expiry; the
// refresh token is only overwritten when a new non-empty value is supplied,
// since Google does not always reissue one.
func (r *userRepository) StoreOAuthTokens(ctx context.Context, id uuid.UUID, accessToken, refreshToken string, expiresAt *time.Time) error {
	updates := map[string]interface{}{
		"google_access_token": accessToken,
		"token_expires_at":    expiresAt,
	}
	if refreshToken != "" {
		updates["google_refresh_token"] = refreshToken
	}
	return r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *userRepository) ClearOAuthTokens(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"google_access_token":  "",
			"google_refresh_token": "",
			"token_expires_at":     nil,
		}).Error
}
